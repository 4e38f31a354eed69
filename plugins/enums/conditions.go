package enums

// ConditionKey defines weather condition flag.
type ConditionKey string

const (
	// CondSnowy describes snow.
	CondSnowy ConditionKey = "snowy"
	// CondCloudy describes clouds.
	CondCloudy ConditionKey = "cloudy"
	// CondRainy describes rain.
	CondRainy ConditionKey = "rainy"
	// CondWindy describes wind.
	CondWindy ConditionKey = "windy"
	// CondSunny describes sun.
	CondSunny ConditionKey = "sunny"
	// CondStormy describes storm.
	CondStormy ConditionKey = "stormy"
	// CondFoggy describes fog.
	CondFoggy ConditionKey = "foggy"
	// CondHail describes hail.
	CondHail ConditionKey = "hail"
	// CondLightning describes lightning.
	CondLightning ConditionKey = "lightning"
	// CondPartlyCloudy describes partly cloudy sky, implies cloudy.
	CondPartlyCloudy ConditionKey = "partlycloudy"
	// CondPouring describes heavy rain, implies rainy.
	CondPouring ConditionKey = "pouring"
	// CondClearNight describes clear night.
	CondClearNight ConditionKey = "clear_night"
	// CondExceptional describes exceptional weather.
	CondExceptional ConditionKey = "exceptional"
)

// ConditionKeys contains all known condition flags in a stable order.
var ConditionKeys = []ConditionKey{CondSnowy, CondCloudy, CondRainy, CondWindy, CondSunny,
	CondStormy, CondFoggy, CondHail, CondLightning, CondPartlyCloudy, CondPouring,
	CondClearNight, CondExceptional}

// String formats output.
func (c ConditionKey) String() string {
	return string(c)
}

// ConditionKeyString converts string into condition key.
func ConditionKeyString(s string) (ConditionKey, bool) {
	for _, k := range ConditionKeys {
		if string(k) == s {
			return k, true
		}
	}

	return "", false
}

// SliceContainsCondition slice.contains implementation for condition keys.
func SliceContainsCondition(s []ConditionKey, e ConditionKey) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
