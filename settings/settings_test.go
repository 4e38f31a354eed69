package settings

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-home.io/x/macs/mocks"
)

const fullConfig = `
system: macs
provider: server
name: Kitchen
port: 9000
surfaceOrigin: http://ha.local:8123
---
system: macs
provider: platform
url: {{ env "MACS_TEST_PLATFORM_URL" }}
token: {{ sec "token" }}
---
system: macs
provider: runtime
holdMs: 1200
seed: 42
initialQuery: "?mood=thinking&battery=40"
---
system: macs
provider: card
max_turns: 4
temperature_sensor_enabled: true
temperature_sensor_entity: sensor.outside
auto_brightness_pause_animations: false
debug_mode: runtime*
---
system: logger
provider: console
level: debug
`

func load(t *testing.T, options *StartUpOptions, files ...string) (*settingsProvider, *bytes.Buffer) {
	out := &bytes.Buffer{}
	data := make([][]byte, 0, len(files))
	for _, v := range files {
		data = append(data, []byte(v))
	}

	s := newSettings(&constructSettings{
		Options: options,
		Logger:  mocks.FakeNewLogger(nil),
		Secrets: mocks.FakeNewSecretStore(map[string]string{"token": "abc"}),
		Files:   data,
		Out:     out,
	})

	require.NotNil(t, s)
	return s, out
}

// Tests complete config loading.
func TestLoadFull(t *testing.T) {
	require.NoError(t, os.Setenv("MACS_TEST_PLATFORM_URL", "ws://ha.local:8123/api/websocket"))
	defer os.Unsetenv("MACS_TEST_PLATFORM_URL") // nolint: errcheck

	s, out := load(t, nil, fullConfig)
	defer s.Cron().Stop()

	assert.Equal(t, "Kitchen", s.ServerSettings().Name)
	assert.Equal(t, "kitchen", s.NodeID())
	assert.Equal(t, 9000, s.ServerSettings().Port)
	assert.Equal(t, "http://ha.local:8123", s.ServerSettings().SurfaceOrigin)
	assert.Equal(t, 100, s.ServerSettings().FrameIntervalMs)

	assert.Equal(t, "ws://ha.local:8123/api/websocket", s.PlatformSettings().URL)
	assert.Equal(t, "abc", s.PlatformSettings().Token)
	assert.Equal(t, 5, s.PlatformSettings().ReconnectDelaySec)

	assert.Equal(t, 1200, s.RuntimeSettings().HoldMs)
	assert.Equal(t, int64(42), s.RuntimeSettings().Seed)
	q, err := s.RuntimeSettings().Query()
	require.NoError(t, err)
	assert.Equal(t, "thinking", q.Get("mood"))
	assert.Equal(t, "40", q.Get("battery"))

	c := s.CardConfig()
	assert.Equal(t, 4, c.MaxTurns)
	assert.True(t, c.TemperatureSensorEnabled)
	assert.Equal(t, "sensor.outside", c.TemperatureSensorEntity)
	assert.False(t, c.AutoBrightnessPauseAnimations)
	assert.Equal(t, float64(100), c.AutoBrightnessMax)

	assert.True(t, s.Tracer().Enabled("runtime:mood"))
	assert.False(t, s.Tracer().Enabled("bridge"))

	s.SystemLogger().Debug("debug line")
	assert.Contains(t, out.String(), "debug line")
	assert.Contains(t, out.String(), "node=kitchen")
}

// Tests invalid fields reset to defaults.
func TestLoadInvalidFields(t *testing.T) {
	s, _ := load(t, nil, `
system: macs
provider: server
name: hall
port: 70000
frameIntervalMs: 1
---
system: macs
provider: runtime
holdMs: 500
initialQuery: "mood=%zz"
---
system: macs
provider: card
max_turns: 100
auto_brightness_max: 150
wind_sensor_unit: furlong
wind_sensor_enabled: true
`)
	defer s.Cron().Stop()

	assert.Equal(t, 8000, s.ServerSettings().Port)
	assert.Equal(t, 100, s.ServerSettings().FrameIntervalMs)
	assert.Equal(t, 800, s.RuntimeSettings().HoldMs)
	_, err := s.RuntimeSettings().Query()
	assert.Error(t, err)
	assert.Equal(t, 2, s.CardConfig().MaxTurns)
	assert.Equal(t, float64(100), s.CardConfig().AutoBrightnessMax)
	assert.Equal(t, "", s.CardConfig().WindSensorUnit)
	assert.True(t, s.CardConfig().WindSensorEnabled)
}

// Tests malformed section falling back to defaults.
func TestLoadMalformedSection(t *testing.T) {
	s, _ := load(t, nil, `
system: macs
provider: card
max_turns: [1, 2]
temperature_sensor_enabled: true
`)
	defer s.Cron().Stop()

	assert.Equal(t, 2, s.CardConfig().MaxTurns)
	assert.False(t, s.CardConfig().TemperatureSensorEnabled)
}

// Tests defaults without any config.
func TestLoadEmpty(t *testing.T) {
	s, _ := load(t, &StartUpOptions{Debug: "all"}, "", "just: text", "{{ sec \"missing\" }}")
	defer s.Cron().Stop()

	assert.NotEmpty(t, s.ServerSettings().Name)
	assert.Equal(t, strings.ToLower(s.ServerSettings().Name), s.NodeID())
	assert.Equal(t, 8000, s.ServerSettings().Port)
	assert.Equal(t, "ws://localhost:8123/api/websocket", s.PlatformSettings().URL)
	assert.Equal(t, 800, s.RuntimeSettings().HoldMs)
	q, err := s.RuntimeSettings().Query()
	require.NoError(t, err)
	assert.Empty(t, q)
	assert.Equal(t, "none", s.CardConfig().DebugMode)
	assert.True(t, s.CardConfig().AutoBrightnessPauseAnimations)
	assert.True(t, s.Tracer().Enabled("anything"))
	assert.NotNil(t, s.Validator())
}

// Tests that startup log level wins over config.
func TestLoadLogLevel(t *testing.T) {
	s, out := load(t, &StartUpOptions{LogLevel: "error"}, `
system: logger
provider: console
level: debug
`)
	defer s.Cron().Stop()

	s.SystemLogger().Warn("warn line")
	s.SystemLogger().Error("error line", nil)
	assert.NotContains(t, out.String(), "warn line")
	assert.Contains(t, out.String(), "error line")
}

// Tests loading from file system.
func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "macs-settings")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint: errcheck

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "macs.yaml"), []byte(`
system: macs
provider: platform
token: {{ sec "token" }}
`), os.ModePerm))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "_secrets.yaml"), []byte("token: from-file"),
		os.ModePerm))

	s := Load(&StartUpOptions{Config: dir, LogLevel: "error"})
	defer s.Cron().Stop()
	assert.Equal(t, "from-file", s.PlatformSettings().Token)
}

// Tests secrets file location.
func TestSecretsLocation(t *testing.T) {
	dir, err := ioutil.TempDir("", "macs-secrets")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint: errcheck

	file := filepath.Join(dir, "macs.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(""), os.ModePerm))

	assert.Equal(t, "/etc/s.yaml", secretsLocation(&StartUpOptions{Secrets: "/etc/s.yaml"}, dir))
	assert.Equal(t, filepath.Join(dir, "_secrets.yaml"), secretsLocation(&StartUpOptions{}, dir))
	assert.Equal(t, filepath.Join(dir, "_secrets.yaml"), secretsLocation(&StartUpOptions{}, file))
}
