package enums

// SensorKind defines monitored quantity kind.
type SensorKind string

const (
	// SenTemperature describes temperature.
	SenTemperature SensorKind = "temp"
	// SenWind describes wind speed.
	SenWind SensorKind = "wind"
	// SenRain describes precipitation.
	SenRain SensorKind = "rain"
	// SenBattery describes battery charge.
	SenBattery SensorKind = "battery"
)

// String formats output.
func (k SensorKind) String() string {
	return string(k)
}
