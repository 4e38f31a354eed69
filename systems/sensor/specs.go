package sensor

import (
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/plugins/helpers"
	"go-home.io/x/macs/plugins/platform"
)

// NormalizeFunc converts raw reading into [0, 100] intensity.
type NormalizeFunc func(kind enums.SensorKind, raw interface{}, rawUnit string, configUnit string,
	min *float64, max *float64) *float64

// SensorSpec is a static descriptor of the monitored quantity.
type SensorSpec struct {
	Key              string
	EnabledConfigKey string
	EntityConfigKey  string
	CustomConfigKey  string
	UnitConfigKey    string
	MinConfigKey     string
	MaxConfigKey     string
	ManualEntityID   string
	Kind             enums.SensorKind
	Normalize        NormalizeFunc
}

// Reading is a raw numeric value with reported unit.
type Reading struct {
	Value float64
	Unit  string
}

var (
	// TemperatureSpec describes temperature.
	TemperatureSpec = newSpec("temperature", "temperature_sensor", platform.TemperatureEntityID,
		enums.SenTemperature)
	// WindSpec describes wind speed.
	WindSpec = newSpec("windspeed", "wind_sensor", platform.WindEntityID, enums.SenWind)
	// PrecipitationSpec describes precipitation.
	PrecipitationSpec = newSpec("precipitation", "precipitation_sensor", platform.PrecipitationEntityID,
		enums.SenRain)
	// BatterySpec describes battery charge.
	BatterySpec = newSpec("battery", "battery_charge_sensor", platform.BatteryChargeEntityID,
		enums.SenBattery)

	// Specs lists every numeric quantity.
	Specs = []*SensorSpec{TemperatureSpec, WindSpec, PrecipitationSpec, BatterySpec}
)

// Builds spec with conventional config keys.
func newSpec(key string, prefix string, manual string, kind enums.SensorKind) *SensorSpec {
	return &SensorSpec{
		Key:              key,
		EnabledConfigKey: prefix + "_enabled",
		EntityConfigKey:  prefix + "_entity",
		CustomConfigKey:  prefix + "_custom",
		UnitConfigKey:    prefix + "_unit",
		MinConfigKey:     prefix + "_min",
		MaxConfigKey:     prefix + "_max",
		ManualEntityID:   manual,
		Kind:             kind,
		Normalize:        helpers.Normalize,
	}
}

// Ordered list of attributes probed for the charging flag.
var chargingAttributes = []string{
	"charging",
	"is_charging",
	"charge_state",
	"battery_charging",
	"plugged",
	"on",
	"powered",
	"ac_power",
}

// Ordered list of attributes probed for the condition text.
var conditionAttributes = []string{
	"condition",
	"conditions",
	"weatherCondition",
	"weatherConditions",
	"weather",
}

// Condition keyword rule.
type conditionRule struct {
	tokens []string
	keys   []enums.ConditionKey
}

// Keyword table. Derived conditions also set their base ones.
var conditionRules = []*conditionRule{
	{
		tokens: []string{"partlycloudy", "partly cloudy", "partly-cloudy"},
		keys:   []enums.ConditionKey{enums.CondPartlyCloudy, enums.CondCloudy},
	},
	{
		tokens: []string{"clear_night", "clear-night", "clear night"},
		keys:   []enums.ConditionKey{enums.CondClearNight},
	},
	{
		tokens: []string{"snowy", "snowing", "snow"},
		keys:   []enums.ConditionKey{enums.CondSnowy},
	},
	{
		tokens: []string{"rainy", "raining", "rain"},
		keys:   []enums.ConditionKey{enums.CondRainy},
	},
	{
		tokens: []string{"pouring"},
		keys:   []enums.ConditionKey{enums.CondPouring, enums.CondRainy},
	},
	{
		tokens: []string{"windy", "wind"},
		keys:   []enums.ConditionKey{enums.CondWindy},
	},
	{
		tokens: []string{"cloudy", "clouds", "overcast"},
		keys:   []enums.ConditionKey{enums.CondCloudy},
	},
	{
		tokens: []string{"sunny", "sun"},
		keys:   []enums.ConditionKey{enums.CondSunny},
	},
	{
		tokens: []string{"stormy", "storm"},
		keys:   []enums.ConditionKey{enums.CondStormy},
	},
	{
		tokens: []string{"foggy", "fog"},
		keys:   []enums.ConditionKey{enums.CondFoggy},
	},
	{
		tokens: []string{"hail"},
		keys:   []enums.ConditionKey{enums.CondHail},
	},
	{
		tokens: []string{"lightning"},
		keys:   []enums.ConditionKey{enums.CondLightning},
	},
	{
		tokens: []string{"exceptional"},
		keys:   []enums.ConditionKey{enums.CondExceptional},
	},
}
