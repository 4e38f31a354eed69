package helpers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests ID -> name conversion.
func TestGetNameFromID(t *testing.T) {
	data := []struct {
		in  string
		out string
	}{
		{
			in:  "sensor.outdoor_temp",
			out: "outdoor temp",
		},
		{
			in:  "test._device",
			out: " device",
		},
		{
			in:  "другой.девайс_в_кухне",
			out: "девайс в кухне",
		},
	}

	for _, v := range data {
		assert.Equal(t, v.out, GetNameFromID(v.in), v.in)
	}
}

// Tests contains helper.
func TestSliceContainsString(t *testing.T) {
	in := []string{"$", "@", "testFunc", "#!_=", "123", "другая строка"}

	for _, v := range in {
		assert.True(t, SliceContainsString(in, v), "equal %s", v)
		assert.False(t, SliceContainsString(in, v+v), "not equal %s", v)
	}
}

// Tests numbers parsing.
func TestToNumber(t *testing.T) {
	valid := map[interface{}]float64{
		"12.5":   12.5,
		" 7 ":    7,
		3:        3,
		4.25:     4.25,
		"-1e1":   -10,
		"0":      0,
		int64(9): 9,
	}

	for in, gold := range valid {
		v, ok := ToNumber(in)
		require.True(t, ok, "%v", in)
		assert.Equal(t, gold, v, "%v", in)
	}

	v, ok := ToNumber(json.Number("5.5"))
	assert.True(t, ok)
	assert.Equal(t, 5.5, v)

	for _, in := range []interface{}{"", "on", nil, false, "NaN", "Inf"} {
		_, ok := ToNumber(in)
		assert.False(t, ok, "%v", in)
	}
}

// Tests truthy tokens.
func TestTruthyToken(t *testing.T) {
	for _, v := range []interface{}{"on", "TRUE", " 1", "yes", true, 1.0, 1} {
		r := TruthyToken(v)
		require.NotNil(t, r, "%v", v)
		assert.True(t, *r, "%v", v)
	}

	for _, v := range []interface{}{"off", "False", "0", "no", false, 0.0} {
		r := TruthyToken(v)
		require.NotNil(t, r, "%v", v)
		assert.False(t, *r, "%v", v)
	}

	for _, v := range []interface{}{"charging", "", nil, 3.0, "unknown"} {
		assert.Nil(t, TruthyToken(v), "%v", v)
	}
}

// Tests charging state normalizer.
func TestChargingState(t *testing.T) {
	for _, v := range []interface{}{"charging", "on", "true", "Plugged", 5.0, "12", true} {
		r := ChargingState(v)
		require.NotNil(t, r, "%v", v)
		assert.True(t, *r, "%v", v)
	}

	for _, v := range []interface{}{"off", "false", "unplugged", 0.0, "0", false} {
		r := ChargingState(v)
		require.NotNil(t, r, "%v", v)
		assert.False(t, *r, "%v", v)
	}

	for _, v := range []interface{}{"unknown", "unavailable", "", "discharging", nil} {
		assert.Nil(t, ChargingState(v), "%v", v)
	}
}
