package helpers

import (
	"math"
	"strings"

	"go-home.io/x/macs/plugins/enums"
)

const (
	// DefaultMinTempC describes lower bound of the default temperature range.
	DefaultMinTempC = 5.0
	// DefaultMaxTempC describes upper bound of the default temperature range.
	DefaultMaxTempC = 30.0
	// DefaultMinWindMph describes lower bound of the default wind range.
	DefaultMinWindMph = 10.0
	// DefaultMaxWindMph describes upper bound of the default wind range.
	DefaultMaxWindMph = 50.0
	// DefaultMinRainMm describes lower bound of the default precipitation range.
	DefaultMinRainMm = 0.0
	// DefaultMaxRainMm describes upper bound of the default precipitation range.
	DefaultMaxRainMm = 10.0
)

// ResolveUnit picks unit according to precedence: configured, reported, kind default.
func ResolveUnit(kind enums.SensorKind, configUnit string, sensorUnit string) enums.Unit {
	raw := strings.TrimSpace(configUnit)
	if "" == raw {
		raw = strings.TrimSpace(sensorUnit)
	}

	return UnitFamily(kind, raw)
}

// UnitFamily maps free-form unit string into the known unit of the kind.
// Unknown units fall back to the kind base unit.
func UnitFamily(kind enums.SensorKind, unit string) enums.Unit {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch kind {
	case enums.SenTemperature:
		switch u {
		case "f", "°f", "fahrenheit":
			return enums.UnitFahrenheit
		}
		return enums.UnitCelsius
	case enums.SenWind:
		switch u {
		case "km/h", "kph":
			return enums.UnitKph
		case "m/s", "mps":
			return enums.UnitMps
		case "kn", "kt", "kt/h":
			return enums.UnitKnots
		}
		return enums.UnitMph
	case enums.SenRain:
		switch u {
		case "in", "inch", "inches":
			return enums.UnitInch
		case "%":
			return enums.UnitPercent
		}
		return enums.UnitMm
	case enums.SenBattery:
		return enums.UnitPercent
	}

	return enums.UnitUnknown
}

// UOMConvert converts value of the unit into the kind base unit.
// Rain probability in percents is kept as-is.
func UOMConvert(value float64, kind enums.SensorKind, unit enums.Unit) float64 {
	switch kind {
	case enums.SenTemperature:
		if enums.UnitFahrenheit == unit {
			return (value - 32.0) / 1.8
		}
	case enums.SenWind:
		switch unit {
		case enums.UnitKph:
			return value / 1.609344
		case enums.UnitMps:
			return value / 0.44704
		case enums.UnitKnots:
			return value / 0.8689762419
		}
	case enums.SenRain:
		if enums.UnitInch == unit {
			return value * 25.4
		}
	}

	return value
}

// DefaultRange returns the kind range in the kind base unit.
func DefaultRange(kind enums.SensorKind, unit enums.Unit) (float64, float64) {
	switch kind {
	case enums.SenTemperature:
		return DefaultMinTempC, DefaultMaxTempC
	case enums.SenWind:
		return DefaultMinWindMph, DefaultMaxWindMph
	case enums.SenRain:
		if enums.UnitPercent == unit {
			return 0, 100
		}
		return DefaultMinRainMm, DefaultMaxRainMm
	}

	return 0, 100
}

// Normalize maps raw reading into [0, 100] intensity.
// Min and max are expressed in the resolved unit. Nil is returned for non-numeric input.
func Normalize(kind enums.SensorKind, raw interface{}, rawUnit string, configUnit string,
	min *float64, max *float64) *float64 {
	value, ok := ToNumber(raw)
	if !ok {
		return nil
	}

	unit := ResolveUnit(kind, configUnit, rawUnit)
	lo, hi := DefaultRange(kind, unit)
	effLo, effHi := lo, hi
	if nil != min && isFinite(*min) {
		effLo = UOMConvert(*min, kind, unit)
	}
	if nil != max && isFinite(*max) {
		effHi = UOMConvert(*max, kind, unit)
	}
	if effLo != effHi {
		lo, hi = effLo, effHi
	}

	n := NormalizeRange(UOMConvert(value, kind, unit), lo, hi)
	return &n
}

// NormalizeRange clamps value into [min, max] and maps it to [0, 100].
// Reversed bounds are swapped, degenerate range yields 0.
func NormalizeRange(value float64, min float64, max float64) float64 {
	if !isFinite(value) || !isFinite(min) || !isFinite(max) || min == max {
		return 0
	}

	if min > max {
		min, max = max, min
	}

	clamped := math.Max(min, math.Min(max, value))
	return Round1((clamped - min) / (max - min) * 100)
}

// ClampPercent clamps pre-normalized value into [0, 100].
func ClampPercent(raw interface{}) *float64 {
	value, ok := ToNumber(raw)
	if !ok {
		return nil
	}

	v := math.Max(0, math.Min(100, value))
	return &v
}

// NormBrightness returns brightness in [0, 100], non-numeric input is 100.
func NormBrightness(raw interface{}) float64 {
	value, ok := ToNumber(raw)
	if !ok {
		return 100
	}

	return math.Max(0, math.Min(100, value))
}

// Round1 rounds value to a single decimal place.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// Checks whether float is a usable number.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
