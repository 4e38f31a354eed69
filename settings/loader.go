// Package settings is responsible for parsing yaml-based configuration.
package settings

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/docker/docker/pkg/namesgenerator"
	"github.com/pkg/errors"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems"
	"go-home.io/x/macs/systems/config"
	"go-home.io/x/macs/systems/logger"
	"go-home.io/x/macs/systems/secret"
	"go-home.io/x/macs/utils"
	"gopkg.in/yaml.v2"
)

const (
	// Logger system.
	logSystem = "settings"
	// How often buffered log output is flushed.
	loggerFlushInterval = 10 * time.Second
)

const (
	// Describes config record for http server.
	configServer = "server"
	// Describes config record for platform connection.
	configPlatform = "platform"
	// Describes config record for headless surface.
	configRuntime = "runtime"
	// Describes config record for the card.
	configCard = "card"
)

// StartUpOptions defines arguments allowed by the system.
type StartUpOptions struct {
	Config   string `short:"c" long:"config" description:"Config file or folder. Defaults to ./configs."`
	Secrets  string `short:"s" long:"secrets" description:"Secrets file. Defaults to _secrets.yaml next to configs."`
	LogLevel string `short:"l" long:"log-level" description:"Log level: debug, info, warn or error."`
	Debug    string `short:"d" long:"debug" description:"Debug namespaces: none, all or comma separated patterns."`
}

// Defines loaded provider record.
type rawProvider struct {
	System   string
	Provider string
	Config   []byte
}

// Contains data required for settings parsing.
type constructSettings struct {
	Options *StartUpOptions
	Logger  common.ILoggerProvider
	Secrets common.ISecretProvider
	Files   [][]byte
	Out     io.Writer
}

// Load system configuration.
func Load(options *StartUpOptions) providers.ISettingsProvider {
	bootLogger := logger.NewLoggerProvider(&logger.ConstructLogger{Level: options.LogLevel})

	location := options.Config
	if "" == location {
		location = utils.GetDefaultConfigsDir()
	}

	configProvider := config.NewConfigProvider(&config.ConstructConfig{
		Location: location,
		Logger:   bootLogger,
	})

	dataChan := configProvider.Load()
	if nil == dataChan {
		bootLogger.Fatal("Didn't get any configuration", errors.New("config provider returned nothing"),
			common.LogSystemToken, logSystem)
		return nil
	}

	files := make([][]byte, 0)
	for fileData := range dataChan {
		files = append(files, fileData)
	}

	secrets := secret.NewSecretProvider(&secret.ConstructSecret{
		Location: secretsLocation(options, location),
		Logger:   bootLogger,
	})

	return newSettings(&constructSettings{
		Options: options,
		Logger:  bootLogger,
		Secrets: secrets,
		Files:   files,
	})
}

// Secrets file is either set explicitly or lives next to configs.
func secretsLocation(options *StartUpOptions, location string) string {
	if "" != options.Secrets {
		return options.Secrets
	}

	dir := location
	if fi, err := os.Stat(location); err == nil && !fi.IsDir() {
		dir = filepath.Dir(location)
	}

	return filepath.Join(dir, secret.DefaultFileName)
}

// Parses loaded files.
func newSettings(ctor *constructSettings) *settingsProvider {
	settings := &settingsProvider{
		options:  ctor.Options,
		logger:   ctor.Logger,
		out:      ctor.Out,
		server:   &providers.ServerSettings{},
		platform: &providers.PlatformSettings{},
		runtime:  &providers.RuntimeSettings{},
		card:     providers.NewCardConfig(),
	}

	if nil == settings.options {
		settings.options = &StartUpOptions{}
	}

	defaults.Set(settings.server)   // nolint: errcheck
	defaults.Set(settings.platform) // nolint: errcheck
	defaults.Set(settings.runtime)  // nolint: errcheck

	settings.validator = utils.NewValidator(settings.logger)
	templateProvider := newTemplateProvider(&constructTemplate{
		Logger:  settings.logger,
		Secrets: ctor.Secrets,
	})

	allProviders := make([]*rawProvider, 0)
	for _, fileData := range ctor.Files {
		allProviders = append(allProviders, settings.loadFile(fileData, templateProvider)...)
	}

	allProviders = settings.loadMacsDefinitions(allProviders)
	settings.loadName()
	allProviders = settings.loadLoggerProvider(allProviders)

	for _, v := range allProviders {
		settings.parseProvider(v)
	}

	settings.validate()
	return settings
}

// Validates whether all necessary settings are present.
func (s *settingsProvider) validate() {
	s.cron = utils.NewCron()
	s.cron.AddInterval(loggerFlushInterval, s.logger.Flush)

	selection := s.options.Debug
	if "" == selection {
		selection = s.card.DebugMode
	}

	s.tracer = logger.NewDebugTracer(&logger.ConstructDebugTracer{
		Logger:    s.logger,
		Selection: selection,
	})

	if "" == s.platform.Token {
		s.logger.Warn("Platform token is not configured", common.LogSystemToken, logSystem)
	}
}

// Processes single yaml file.
func (s *settingsProvider) loadFile(fileData []byte, templateProvider ITemplateProvider) []*rawProvider {
	fileData, err := templateProvider.Process(fileData)
	if err != nil {
		s.logger.Error("Failed to process config file", err, common.LogSystemToken, logSystem)
		return nil
	}

	provs := make([]*rawProvider, 0)
	decoder := yaml.NewDecoder(bytes.NewReader(fileData))
	for {
		var value map[string]interface{}
		err := decoder.Decode(&value)
		if err == io.EOF {
			break
		}

		if err != nil {
			s.logger.Error("Failed to parse config file", err, common.LogSystemToken, logSystem)
			break
		}

		componentType := ""
		componentProvider := ""

		if cs, ok := value["system"].(string); ok {
			componentType = strings.ToLower(cs)
		}

		if ct, ok := value["provider"].(string); ok {
			componentProvider = strings.ToLower(ct)
		}

		if componentType == "" || componentProvider == "" {
			s.logger.Warn("Failed to parse a record in the config file: system or provider is not defined",
				common.LogSystemToken, logSystem)
			continue
		}

		byteData, err := yaml.Marshal(value)
		if err != nil {
			s.logger.Error("Failed to parse config file", err, common.LogSystemToken, componentType,
				common.LogProviderToken, componentProvider)
			continue
		}

		provs = append(provs, &rawProvider{
			Provider: componentProvider,
			System:   componentType,
			Config:   byteData,
		})
	}

	return provs
}

// Loads server, platform, runtime and card records.
func (s *settingsProvider) loadMacsDefinitions(provs []*rawProvider) []*rawProvider {
	providersLeft := make([]*rawProvider, 0)

	for _, v := range provs {
		if v.System != systems.SysMacs.String() {
			providersLeft = append(providersLeft, v)
			continue
		}

		switch v.Provider {
		case configServer:
			s.loadSection(v, s.server)
		case configPlatform:
			s.loadSection(v, s.platform)
		case configRuntime:
			s.loadSection(v, s.runtime)
		case configCard:
			s.loadSection(v, s.card)
		default:
			s.logger.Warn("Unknown config record", common.LogProviderToken, v.Provider,
				common.LogSystemToken, v.System)
		}
	}

	return providersLeft
}

// Unmarshals record on top of current values.
// Malformed record resets whole section to defaults, invalid fields are reset one by one.
func (s *settingsProvider) loadSection(provider *rawProvider, target interface{}) {
	fallback := reflect.New(reflect.TypeOf(target).Elem()).Interface()
	defaults.Set(fallback) // nolint: errcheck

	if err := yaml.Unmarshal(provider.Config, target); err != nil {
		s.logger.Error("Failed to parse config record, using defaults", err,
			common.LogProviderToken, provider.Provider, common.LogSystemToken, provider.System)
		reflect.ValueOf(target).Elem().Set(reflect.ValueOf(fallback).Elem())
		return
	}

	reset := s.validator.Sanitize(target, fallback)
	if len(reset) > 0 {
		s.logger.Warn("Config record has invalid fields", common.LogProviderToken, provider.Provider,
			common.LogFieldToken, strings.Join(reset, ","))
	}
}

// Generates instance name if it's not configured.
func (s *settingsProvider) loadName() {
	if "" == s.server.Name {
		s.server.Name = namesgenerator.GetRandomName(0)
		s.logger.Warn("Generating random name since it's not configured",
			common.LogNameToken, s.server.Name, common.LogSystemToken, logSystem)
	}

	s.nodeID = strings.ToLower(s.server.Name)
}

// Loads logger configuration.
func (s *settingsProvider) loadLoggerProvider(provs []*rawProvider) []*rawProvider {
	providersLeft := make([]*rawProvider, 0)
	var rawConfig []byte
	for _, v := range provs {
		if v.System != systems.SysLogger.String() {
			providersLeft = append(providersLeft, v)
			continue
		}

		if "console" != v.Provider {
			s.logger.Warn("Unknown logger provider, using console", common.LogProviderToken, v.Provider)
		}

		rawConfig = v.Config
	}

	s.logger = logger.NewLoggerProvider(&logger.ConstructLogger{
		RawConfig: rawConfig,
		Level:     s.options.LogLevel,
		NodeID:    s.nodeID,
		Out:       s.out,
	})

	s.validator.SetLogger(logger.NewSystemLogger(s.logger, "validator"))
	return providersLeft
}

// Processes single provider config.
func (s *settingsProvider) parseProvider(provider *rawProvider) {
	s.logger.Debug("Processing config", common.LogProviderToken, provider.Provider,
		common.LogSystemToken, provider.System)

	sys, err := systems.SystemTypeString(provider.System)
	if err != nil {
		s.logger.Warn("Unknown provider's system", common.LogProviderToken, provider.Provider,
			common.LogSystemToken, provider.System)
		return
	}

	switch sys {
	case systems.SysConfig, systems.SysSecret:
		s.logger.Warn("Location is set by startup options, ignoring record",
			common.LogProviderToken, provider.Provider, common.LogSystemToken, provider.System)
	}
}
