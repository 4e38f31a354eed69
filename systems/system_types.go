// Package systems holds names of the config record systems.
package systems

import (
	"strings"

	"github.com/pkg/errors"
)

// SystemType describes config record system.
type SystemType string

const (
	// SysMacs describes server, platform, runtime and card records.
	SysMacs SystemType = "macs"
	// SysLogger describes logger system.
	SysLogger SystemType = "logger"
	// SysConfig describes config provider system.
	SysConfig SystemType = "config"
	// SysSecret describes secret store system.
	SysSecret SystemType = "secret"
)

var systemTypes = []SystemType{SysMacs, SysLogger, SysConfig, SysSecret}

// String returns system name.
func (s SystemType) String() string {
	return string(s)
}

// SystemTypeString parses system name.
func SystemTypeString(s string) (SystemType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range systemTypes {
		if string(v) == s {
			return v, nil
		}
	}

	return "", errors.Errorf("%s does not belong to SystemType values", s)
}
