package runtime

import (
	"net/url"
	"strings"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/plugins/helpers"
	"go-home.io/x/macs/systems/sensor"
	"go-home.io/x/macs/utils"
)

// Query keys accepted as precipitation, first present wins.
var precipitationKeys = []string{"precipitation", "rainfall", "snowfall"}

// InitialState has surface state parsed from the query string.
// Nil fields were not present or were malformed.
type InitialState struct {
	Mood          enums.Mood
	Temperature   *float64
	WindSpeed     *float64
	Precipitation *float64
	Conditions    common.WeatherConditions
	Battery       *float64
	Brightness    *float64
	Preview       bool
}

// ParseQuery reads initial state fallback from the query string.
func ParseQuery(q url.Values) *InitialState {
	st := &InitialState{
		Mood:        enums.NormalizeMood(q.Get("mood")),
		Temperature: queryPercent(q, "temperature"),
		WindSpeed:   queryPercent(q, "windspeed"),
		Battery:     queryPercent(q, "battery"),
		Brightness:  queryPercent(q, "brightness"),
	}

	for _, k := range precipitationKeys {
		if v := queryPercent(q, k); nil != v {
			st.Precipitation = v
			break
		}
	}

	if raw := strings.TrimSpace(q.Get("conditions")); "" != raw {
		c := common.NewWeatherConditions()
		for _, v := range strings.Split(raw, ",") {
			if k, ok := enums.ConditionKeyString(utils.NormalizeKey(v)); ok {
				c[k] = true
				continue
			}
			for k, set := range sensor.ParseConditionText(v) {
				c[k] = c[k] || set
			}
		}
		c.ApplyDerived()
		st.Conditions = c
	}

	edit := strings.ToLower(strings.TrimSpace(q.Get("edit")))
	st.Preview = "1" == edit || "true" == edit
	return st
}

// Returns clamped percent value or nil.
func queryPercent(q url.Values, key string) *float64 {
	raw := strings.TrimSpace(q.Get(key))
	if "" == raw {
		return nil
	}

	return helpers.ClampPercent(raw)
}
