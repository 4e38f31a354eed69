package providers

import (
	"reflect"
	"strings"

	"github.com/creasty/defaults"
)

// CardConfig has user-authored card configuration.
// Keys are shared between yaml documents and surface messages.
type CardConfig struct {
	AssistPipelineEnabled   bool   `yaml:"assist_pipeline_enabled" json:"assist_pipeline_enabled"`
	AssistPipelineEntity    string `yaml:"assist_pipeline_entity" json:"assist_pipeline_entity"`
	AssistPipelineCustom    bool   `yaml:"assist_pipeline_custom" json:"assist_pipeline_custom"`
	AssistSatelliteEnabled  bool   `yaml:"assist_satellite_enabled" json:"assist_satellite_enabled"`
	AssistSatelliteEntity   string `yaml:"assist_satellite_entity" json:"assist_satellite_entity"`
	AssistSatelliteCustom   bool   `yaml:"assist_satellite_custom" json:"assist_satellite_custom"`
	MaxTurns                int    `yaml:"max_turns" json:"max_turns" validate:"gte=1,lte=50" default:"2"`
	AssistOutcomeDurationMs int    `yaml:"assist_outcome_duration_ms" json:"assist_outcome_duration_ms" validate:"gte=0,lte=60000" default:"1000"`

	TemperatureSensorEnabled bool     `yaml:"temperature_sensor_enabled" json:"temperature_sensor_enabled"`
	TemperatureSensorEntity  string   `yaml:"temperature_sensor_entity" json:"temperature_sensor_entity"`
	TemperatureSensorCustom  bool     `yaml:"temperature_sensor_custom" json:"temperature_sensor_custom"`
	TemperatureSensorUnit    string   `yaml:"temperature_sensor_unit" json:"temperature_sensor_unit" validate:"unit"`
	TemperatureSensorMin     *float64 `yaml:"temperature_sensor_min" json:"temperature_sensor_min"`
	TemperatureSensorMax     *float64 `yaml:"temperature_sensor_max" json:"temperature_sensor_max"`

	WindSensorEnabled bool     `yaml:"wind_sensor_enabled" json:"wind_sensor_enabled"`
	WindSensorEntity  string   `yaml:"wind_sensor_entity" json:"wind_sensor_entity"`
	WindSensorCustom  bool     `yaml:"wind_sensor_custom" json:"wind_sensor_custom"`
	WindSensorUnit    string   `yaml:"wind_sensor_unit" json:"wind_sensor_unit" validate:"unit"`
	WindSensorMin     *float64 `yaml:"wind_sensor_min" json:"wind_sensor_min"`
	WindSensorMax     *float64 `yaml:"wind_sensor_max" json:"wind_sensor_max"`

	PrecipitationSensorEnabled bool     `yaml:"precipitation_sensor_enabled" json:"precipitation_sensor_enabled"`
	PrecipitationSensorEntity  string   `yaml:"precipitation_sensor_entity" json:"precipitation_sensor_entity"`
	PrecipitationSensorCustom  bool     `yaml:"precipitation_sensor_custom" json:"precipitation_sensor_custom"`
	PrecipitationSensorUnit    string   `yaml:"precipitation_sensor_unit" json:"precipitation_sensor_unit" validate:"unit"`
	PrecipitationSensorMin     *float64 `yaml:"precipitation_sensor_min" json:"precipitation_sensor_min"`
	PrecipitationSensorMax     *float64 `yaml:"precipitation_sensor_max" json:"precipitation_sensor_max"`

	BatteryChargeSensorEnabled bool     `yaml:"battery_charge_sensor_enabled" json:"battery_charge_sensor_enabled"`
	BatteryChargeSensorEntity  string   `yaml:"battery_charge_sensor_entity" json:"battery_charge_sensor_entity"`
	BatteryChargeSensorCustom  bool     `yaml:"battery_charge_sensor_custom" json:"battery_charge_sensor_custom"`
	BatteryChargeSensorUnit    string   `yaml:"battery_charge_sensor_unit" json:"battery_charge_sensor_unit" validate:"unit" default:"%"`
	BatteryChargeSensorMin     *float64 `yaml:"battery_charge_sensor_min" json:"battery_charge_sensor_min"`
	BatteryChargeSensorMax     *float64 `yaml:"battery_charge_sensor_max" json:"battery_charge_sensor_max"`

	BatteryStateSensorEnabled bool   `yaml:"battery_state_sensor_enabled" json:"battery_state_sensor_enabled"`
	BatteryStateSensorEntity  string `yaml:"battery_state_sensor_entity" json:"battery_state_sensor_entity"`
	BatteryStateSensorCustom  bool   `yaml:"battery_state_sensor_custom" json:"battery_state_sensor_custom"`

	WeatherConditionsEnabled bool   `yaml:"weather_conditions_enabled" json:"weather_conditions_enabled"`
	WeatherConditions        string `yaml:"weather_conditions" json:"weather_conditions"`

	AutoBrightnessEnabled         bool    `yaml:"auto_brightness_enabled" json:"auto_brightness_enabled"`
	AutoBrightnessTimeoutMinutes  float64 `yaml:"auto_brightness_timeout_minutes" json:"auto_brightness_timeout_minutes" validate:"gte=0,lte=1440" default:"5"`
	AutoBrightnessMin             float64 `yaml:"auto_brightness_min" json:"auto_brightness_min" validate:"percent"`
	AutoBrightnessMax             float64 `yaml:"auto_brightness_max" json:"auto_brightness_max" validate:"percent" default:"100"`
	AutoBrightnessPauseAnimations bool    `yaml:"auto_brightness_pause_animations" json:"auto_brightness_pause_animations" default:"true"`

	DebugMode string `yaml:"debug_mode" json:"debug_mode" default:"none"`
}

// NewCardConfig returns config with default values.
func NewCardConfig() *CardConfig {
	c := &CardConfig{}
	defaults.Set(c) // nolint: errcheck
	return c
}

// Copy returns independent copy of the config.
func (c *CardConfig) Copy() *CardConfig {
	n := *c
	n.TemperatureSensorMin = copyFloat(c.TemperatureSensorMin)
	n.TemperatureSensorMax = copyFloat(c.TemperatureSensorMax)
	n.WindSensorMin = copyFloat(c.WindSensorMin)
	n.WindSensorMax = copyFloat(c.WindSensorMax)
	n.PrecipitationSensorMin = copyFloat(c.PrecipitationSensorMin)
	n.PrecipitationSensorMax = copyFloat(c.PrecipitationSensorMax)
	n.BatteryChargeSensorMin = copyFloat(c.BatteryChargeSensorMin)
	n.BatteryChargeSensorMax = copyFloat(c.BatteryChargeSensorMax)
	return &n
}

// Lookup returns config value by its key.
func (c *CardConfig) Lookup(key string) (interface{}, bool) {
	idx, ok := cardConfigKeys[key]
	if !ok {
		return nil, false
	}

	f := reflect.ValueOf(c).Elem().Field(idx)
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return nil, true
		}
		return f.Elem().Interface(), true
	}

	return f.Interface(), true
}

// LookupString returns trimmed string config value.
func (c *CardConfig) LookupString(key string) string {
	v, ok := c.Lookup(key)
	if !ok || nil == v {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(s)
}

// LookupBool returns boolean config value.
func (c *CardConfig) LookupBool(key string) bool {
	v, ok := c.Lookup(key)
	if !ok || nil == v {
		return false
	}

	b, _ := v.(bool)
	return b
}

// LookupFloat returns optional numeric config value.
func (c *CardConfig) LookupFloat(key string) *float64 {
	v, ok := c.Lookup(key)
	if !ok || nil == v {
		return nil
	}

	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	}

	return nil
}

// CardConfigKeys returns all known config keys.
func CardConfigKeys() []string {
	keys := make([]string, 0, len(cardConfigKeys))
	t := reflect.TypeOf(CardConfig{})
	for ii := 0; ii < t.NumField(); ii++ {
		keys = append(keys, yamlKey(t.Field(ii)))
	}

	return keys
}

// Copies optional float.
func copyFloat(f *float64) *float64 {
	if nil == f {
		return nil
	}

	v := *f
	return &v
}

// Returns yaml name of the field.
func yamlKey(f reflect.StructField) string {
	return strings.Split(f.Tag.Get("yaml"), ",")[0]
}

// Index of config fields by yaml name.
var cardConfigKeys = func() map[string]int {
	t := reflect.TypeOf(CardConfig{})
	m := make(map[string]int, t.NumField())
	for ii := 0; ii < t.NumField(); ii++ {
		m[yamlKey(t.Field(ii))] = ii
	}

	return m
}()
