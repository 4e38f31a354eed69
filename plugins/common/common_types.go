// Package common contains data shared between host and surface sides.
package common

import (
	"go-home.io/x/macs/plugins/enums"
)

// WeatherConditions holds flag per known weather condition.
type WeatherConditions map[enums.ConditionKey]bool

// NewWeatherConditions returns all-false condition flags.
func NewWeatherConditions() WeatherConditions {
	c := make(WeatherConditions, len(enums.ConditionKeys))
	for _, k := range enums.ConditionKeys {
		c[k] = false
	}

	return c
}

// ApplyDerived enforces derived conditions implying base ones.
func (c WeatherConditions) ApplyDerived() {
	if c[enums.CondPartlyCloudy] {
		c[enums.CondCloudy] = true
	}
	if c[enums.CondPouring] {
		c[enums.CondRainy] = true
	}
}

// Copy returns independent copy of the flags.
func (c WeatherConditions) Copy() WeatherConditions {
	out := make(WeatherConditions, len(c))
	for k, v := range c {
		out[k] = v
	}

	return out
}

// NormalizedSensor describes single resolved quantity.
// Normalized is nil if source entity is absent, unreadable or non-numeric.
type NormalizedSensor struct {
	Value      float64  `json:"value"`
	Unit       string   `json:"unit"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	Normalized *float64 `json:"normalized"`
}

// SensorPayload is a flat set of normalized intensities pushed to the surface.
type SensorPayload struct {
	Temperature       *float64          `json:"temperature"`
	WindSpeed         *float64          `json:"windspeed"`
	Precipitation     *float64          `json:"precipitation"`
	Battery           *float64          `json:"battery"`
	BatteryState      *bool             `json:"battery_state"`
	WeatherConditions WeatherConditions `json:"weather_conditions"`
}

// Turn describes single assistant interaction.
type Turn struct {
	RunID string `json:"runId"`
	Heard string `json:"heard,omitempty"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

// Merge copies all non-empty fields of other into turn.
func (t *Turn) Merge(other *Turn) {
	if other.RunID != "" {
		t.RunID = other.RunID
	}
	if other.Heard != "" {
		t.Heard = other.Heard
	}
	if other.Reply != "" {
		t.Reply = other.Reply
	}
	if other.Error != "" {
		t.Error = other.Error
	}
	if other.TS != "" {
		t.TS = other.TS
	}
}

// ChatMessage is a single rendered bubble of the chat overlay.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
	TS   string `json:"ts,omitempty"`
}

// ParticleFrame describes visible particle at the frame time.
type ParticleFrame struct {
	Index   int     `json:"i"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"s"`
	Opacity float64 `json:"o"`
	Tilt    float64 `json:"t"`
	Variant string  `json:"v,omitempty"`
}

// Presentation is a full description of what surface shows at the moment.
// Computed by the runtime, rendered by displays.
type Presentation struct {
	Mood              enums.Mood                 `json:"mood"`
	BaseMood          enums.Mood                 `json:"base_mood"`
	Brightness        float64                    `json:"brightness"`
	Opacity           float64                    `json:"opacity"`
	Dimmed            bool                       `json:"dimmed"`
	Asleep            bool                       `json:"asleep"`
	AnimationsPaused  bool                       `json:"animations_paused"`
	Temperature       *float64                   `json:"temperature"`
	WindSpeed         *float64                   `json:"windspeed"`
	Precipitation     *float64                   `json:"precipitation"`
	Battery           *float64                   `json:"battery"`
	Charging          *bool                      `json:"charging"`
	BatteryVisible    bool                       `json:"battery_visible"`
	Classes           []string                   `json:"classes"`
	WeatherConditions WeatherConditions          `json:"weather_conditions"`
	Particles         map[string][]ParticleFrame `json:"particles"`
	Messages          []ChatMessage              `json:"messages"`
	Preview           bool                       `json:"preview"`
}
