package helpers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-home.io/x/macs/plugins/enums"
)

// Tests unit precedence.
func TestResolveUnit(t *testing.T) {
	data := []struct {
		kind   enums.SensorKind
		config string
		sensor string
		gold   enums.Unit
	}{
		{enums.SenTemperature, "f", "°C", enums.UnitFahrenheit},
		{enums.SenTemperature, "", "°F", enums.UnitFahrenheit},
		{enums.SenTemperature, "", "Fahrenheit", enums.UnitFahrenheit},
		{enums.SenTemperature, "", "", enums.UnitCelsius},
		{enums.SenWind, "", "km/h", enums.UnitKph},
		{enums.SenWind, "kph", "mph", enums.UnitKph},
		{enums.SenWind, "", "mps", enums.UnitMps},
		{enums.SenWind, "", "kt", enums.UnitKnots},
		{enums.SenWind, "", "beaufort", enums.UnitMph},
		{enums.SenRain, "", "inches", enums.UnitInch},
		{enums.SenRain, "", "%", enums.UnitPercent},
		{enums.SenRain, "", "mm/h", enums.UnitMm},
		{enums.SenBattery, "", "V", enums.UnitPercent},
	}

	for i, v := range data {
		assert.Equal(t, v.gold, ResolveUnit(v.kind, v.config, v.sensor), "%d", i)
	}
}

// Tests conversion into base units.
func TestUOMConvert(t *testing.T) {
	assert.InDelta(t, 15, UOMConvert(59, enums.SenTemperature, enums.UnitFahrenheit), 0.0001)
	assert.InDelta(t, 10, UOMConvert(16.09344, enums.SenWind, enums.UnitKph), 0.0001)
	assert.InDelta(t, 50, UOMConvert(22.352, enums.SenWind, enums.UnitMps), 0.0001)
	assert.InDelta(t, 25.4, UOMConvert(1, enums.SenRain, enums.UnitInch), 0.0001)
	assert.Equal(t, 42.0, UOMConvert(42, enums.SenRain, enums.UnitPercent))
	assert.Equal(t, 42.0, UOMConvert(42, enums.SenTemperature, enums.UnitCelsius))
}

// Tests fahrenheit range with configured bounds.
func TestNormalizeFahrenheit(t *testing.T) {
	n := Normalize(enums.SenTemperature, "59", "°F", "f", Float64Ptr(32), Float64Ptr(90))
	require.NotNil(t, n)

	gold := math.Round((59.0-32.0)/(90.0-32.0)*100*10) / 10
	assert.Equal(t, gold, *n)
	assert.Equal(t, 46.6, *n)
}

// Tests bounds and clamping.
func TestNormalizeBounds(t *testing.T) {
	min := Float64Ptr(0)
	max := Float64Ptr(40)

	assert.Equal(t, 0.0, *Normalize(enums.SenTemperature, 0, "", "", min, max))
	assert.Equal(t, 100.0, *Normalize(enums.SenTemperature, 40, "", "", min, max))
	assert.Equal(t, 0.0, *Normalize(enums.SenTemperature, -20, "", "", min, max))
	assert.Equal(t, 100.0, *Normalize(enums.SenTemperature, 120, "", "", min, max))
	assert.Equal(t, 50.0, *Normalize(enums.SenTemperature, 20, "", "", max, min))
}

// Tests monotonic output.
func TestNormalizeMonotonic(t *testing.T) {
	prev := -1.0
	for v := -10.0; v < 70; v += 0.7 {
		n := Normalize(enums.SenWind, v, "mph", "", nil, nil)
		require.NotNil(t, n)
		assert.True(t, *n >= prev, "%f", v)
		assert.True(t, *n >= 0 && *n <= 100, "%f", v)
		prev = *n
	}
}

// Tests default ranges substitution.
func TestNormalizeDefaults(t *testing.T) {
	assert.Equal(t, 50.0, *Normalize(enums.SenTemperature, 17.5, "", "", nil, nil))
	assert.Equal(t, 50.0, *Normalize(enums.SenWind, 30, "", "", nil, nil))
	assert.Equal(t, 50.0, *Normalize(enums.SenRain, 5, "mm", "", nil, nil))
	assert.Equal(t, 30.0, *Normalize(enums.SenRain, 30, "%", "", nil, nil))
	assert.Equal(t, 50.0, *Normalize(enums.SenTemperature, 17.5, "", "", Float64Ptr(3), Float64Ptr(3)))
	assert.Equal(t, 50.0, *Normalize(enums.SenTemperature, 17.5, "", "",
		Float64Ptr(math.NaN()), Float64Ptr(math.Inf(1))))
	assert.Equal(t, 50.0, *Normalize(enums.SenTemperature, 63.5, "", "f", nil, nil))
}

// Tests malformed readings.
func TestNormalizeInvalid(t *testing.T) {
	data := []interface{}{
		"unknown", "unavailable", "", nil, math.NaN(), math.Inf(-1), "12abc", true, []string{"1"},
	}

	for i, v := range data {
		assert.Nil(t, Normalize(enums.SenTemperature, v, "", "", nil, nil), "%d", i)
	}
}

// Tests brightness normalization.
func TestNormBrightness(t *testing.T) {
	assert.Equal(t, 100.0, NormBrightness("abc"))
	assert.Equal(t, 100.0, NormBrightness(nil))
	assert.Equal(t, 0.0, NormBrightness(-3))
	assert.Equal(t, 100.0, NormBrightness(300.0))
	assert.Equal(t, 42.0, NormBrightness("42"))
}

// Tests pre-normalized clamp.
func TestClampPercent(t *testing.T) {
	assert.Nil(t, ClampPercent("unknown"))
	assert.Equal(t, 100.0, *ClampPercent(120))
	assert.Equal(t, 0.0, *ClampPercent("-1"))
	assert.Equal(t, 33.0, *ClampPercent(33.0))
}
