// Package config contains yaml configuration files loader.
package config

import (
	"path/filepath"
	"strings"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/systems"
	"go-home.io/x/macs/systems/logger"
	"go-home.io/x/macs/utils"
)

// IConfigProvider provides capabilities for loading system configuration.
type IConfigProvider interface {
	Load() chan []byte
}

// ConstructConfig contains data required for a new config provider.
// Location is either a single file or a folder.
type ConstructConfig struct {
	Location string
	Logger   common.ILoggerProvider
}

// NewConfigProvider constructs a new file system config provider.
func NewConfigProvider(ctor *ConstructConfig) IConfigProvider {
	cfg := &fsConfig{
		location: ctor.Location,
		logger:   logger.NewSystemLogger(ctor.Logger, systems.SysConfig.String()),
	}

	if "" == cfg.location {
		cfg.location = utils.GetDefaultConfigsDir()
		cfg.logger.Info("Using default location", common.LogFileToken, cfg.location)
	}

	return cfg
}

// IsValidConfigFileName validates whether file should be loaded.
// Files starting with underscore are skipped.
func IsValidConfigFileName(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "_") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".yaml" || ext == ".yml"
}
