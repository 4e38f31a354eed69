// Package secret contains file system secrets store.
package secret

import (
	"io/ioutil"
	"os"
	"sync"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/systems"
	"go-home.io/x/macs/systems/logger"
	"gopkg.in/yaml.v2"
)

// DefaultFileName is used when only config folder is known.
const DefaultFileName = "_secrets.yaml"

// ConstructSecret has data required for a new secrets provider.
type ConstructSecret struct {
	Location string
	Logger   common.ILoggerProvider
}

// File system secrets store.
// File is a flat yaml map and is read on first request.
type fsSecret struct {
	sync.Mutex
	location string
	logger   common.ILoggerProvider
	values   map[string]string
	loadErr  error
	loaded   bool
}

// NewSecretProvider constructs a new secrets store provider.
func NewSecretProvider(ctor *ConstructSecret) common.ISecretProvider {
	return &fsSecret{
		location: ctor.Location,
		logger:   logger.NewSystemLogger(ctor.Logger, systems.SysSecret.String()),
	}
}

// Get returns secret value or throws an error if it wasn't found.
func (s *fsSecret) Get(name string) (string, error) {
	s.Lock()
	defer s.Unlock()

	s.logger.Debug("Requesting secret", common.LogNameToken, name)
	if !s.loaded {
		s.load()
	}

	if nil != s.loadErr {
		return "", s.loadErr
	}

	value, ok := s.values[name]
	if !ok {
		err := &ErrSecretNotFound{Name: name}
		s.logger.Error("Can't find requested secret", err, common.LogNameToken, name)
		return "", err
	}

	return value, nil
}

// Reads secrets file.
func (s *fsSecret) load() {
	s.loaded = true
	s.values = make(map[string]string)

	data, err := ioutil.ReadFile(s.location)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Secrets file is not found", common.LogFileToken, s.location)
			return
		}

		s.loadErr = err
		s.logger.Error("Failed to read secrets file", err, common.LogFileToken, s.location)
		return
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		s.loadErr = &ErrCorruptedStore{File: s.location}
		s.logger.Error("Failed to parse secrets file", err, common.LogFileToken, s.location)
	}
}
