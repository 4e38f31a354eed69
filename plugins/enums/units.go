package enums

// Unit defines canonical unit of measure.
type Unit string

const (
	// UnitCelsius describes celsius degrees.
	UnitCelsius Unit = "c"
	// UnitFahrenheit describes fahrenheit degrees.
	UnitFahrenheit Unit = "f"
	// UnitMph describes miles per hour.
	UnitMph Unit = "mph"
	// UnitKph describes kilometers per hour.
	UnitKph Unit = "km/h"
	// UnitMps describes meters per second.
	UnitMps Unit = "m/s"
	// UnitKnots describes knots.
	UnitKnots Unit = "kn"
	// UnitMm describes millimeters.
	UnitMm Unit = "mm"
	// UnitInch describes inches.
	UnitInch Unit = "in"
	// UnitPercent describes percents.
	UnitPercent Unit = "%"
	// UnitNormalized describes value already scaled to 0-100.
	UnitNormalized Unit = "normalized"
	// UnitUnknown describes unknown unit.
	UnitUnknown Unit = ""
)

// String formats output.
func (u Unit) String() string {
	return string(u)
}

// BaseUnit returns canonical unit for the kind.
func (k SensorKind) BaseUnit() Unit {
	switch k {
	case SenTemperature:
		return UnitCelsius
	case SenWind:
		return UnitMph
	case SenRain:
		return UnitMm
	case SenBattery:
		return UnitPercent
	}

	return UnitUnknown
}
