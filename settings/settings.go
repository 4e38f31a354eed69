package settings

import (
	"io"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
)

// System settings.
type settingsProvider struct {
	options   *StartUpOptions
	logger    common.ILoggerProvider
	tracer    common.IDebugTracer
	nodeID    string
	cron      providers.ICronProvider
	validator providers.IValidatorProvider
	out       io.Writer

	server   *providers.ServerSettings
	platform *providers.PlatformSettings
	runtime  *providers.RuntimeSettings
	card     *providers.CardConfig
}

// SystemLogger returns default system logger.
func (s *settingsProvider) SystemLogger() common.ILoggerProvider {
	return s.logger
}

// Tracer returns debug channel.
func (s *settingsProvider) Tracer() common.IDebugTracer {
	return s.tracer
}

// NodeID returns current instance node ID.
func (s *settingsProvider) NodeID() string {
	return s.nodeID
}

// Cron returns system's cron provider.
func (s *settingsProvider) Cron() providers.ICronProvider {
	return s.cron
}

// Validator returns yaml validator provider.
func (s *settingsProvider) Validator() providers.IValidatorProvider {
	return s.validator
}

// ServerSettings returns http server settings.
func (s *settingsProvider) ServerSettings() *providers.ServerSettings {
	return s.server
}

// PlatformSettings returns platform connection settings.
func (s *settingsProvider) PlatformSettings() *providers.PlatformSettings {
	return s.platform
}

// RuntimeSettings returns headless surface settings.
func (s *settingsProvider) RuntimeSettings() *providers.RuntimeSettings {
	return s.runtime
}

// CardConfig returns loaded card config.
func (s *settingsProvider) CardConfig() *providers.CardConfig {
	return s.card
}
