// Package bus contains the message protocol spoken between host and surface.
package bus

import (
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
)

const (
	// RecipientHost describes host side of the channel.
	RecipientHost = "backend"
	// RecipientSurface describes embedded surface side of the channel.
	RecipientSurface = "frontend"
	// RecipientAll describes broadcast recipient.
	RecipientAll = "all"
)

// IMessage defines any message which can be posted to the channel.
type IMessage interface {
	GetType() enums.MessageType
	GetSender() string
	GetRecipient() string
	SetRoute(sender string, recipient string)
}

// MessageWithType helper type for initial channel message parsing.
type MessageWithType struct {
	Type      enums.MessageType `json:"type"`
	Sender    string            `json:"sender,omitempty"`
	Recipient string            `json:"recipient,omitempty"`
}

// GetType returns message type.
func (m *MessageWithType) GetType() enums.MessageType {
	return m.Type
}

// GetSender returns message sender.
func (m *MessageWithType) GetSender() string {
	return m.Sender
}

// GetRecipient returns message recipient.
func (m *MessageWithType) GetRecipient() string {
	return m.Recipient
}

// SetRoute stamps sender and recipient.
func (m *MessageWithType) SetRoute(sender string, recipient string) {
	m.Sender = sender
	m.Recipient = recipient
}

// ConfigPayload has config subset consumed by the surface.
// Nil fields are not present in the message.
type ConfigPayload struct {
	AssistPipelineEntity          *string  `json:"assist_pipeline_entity,omitempty"`
	AssistSatelliteEnabled        *bool    `json:"assist_satellite_enabled,omitempty"`
	AutoBrightnessEnabled         *bool    `json:"auto_brightness_enabled,omitempty"`
	AutoBrightnessTimeoutMinutes  *float64 `json:"auto_brightness_timeout_minutes,omitempty"`
	AutoBrightnessMin             *float64 `json:"auto_brightness_min,omitempty"`
	AutoBrightnessMax             *float64 `json:"auto_brightness_max,omitempty"`
	AutoBrightnessPauseAnimations *bool    `json:"auto_brightness_pause_animations,omitempty"`
	BatteryStateSensorEnabled     *bool    `json:"battery_state_sensor_enabled,omitempty"`
	DebugMode                     *string  `json:"debug_mode,omitempty"`
	MaxTurns                      *int     `json:"max_turns,omitempty"`
}

// InitMessage used by host to send full state snapshot.
type InitMessage struct {
	MessageWithType
	Config            *ConfigPayload        `json:"config"`
	Mood              enums.Mood            `json:"mood"`
	Sensors           *common.SensorPayload `json:"sensors"`
	Brightness        float64               `json:"brightness"`
	AnimationsEnabled bool                  `json:"animations_enabled"`
}

// ConfigMessage used by host to send partial config update.
type ConfigMessage struct {
	MessageWithType
	ConfigPayload
}

// MoodMessage used by host to override mood.
type MoodMessage struct {
	MessageWithType
	Mood       enums.Mood `json:"mood"`
	ResetSleep bool       `json:"reset_sleep,omitempty"`
}

// TemperatureMessage used by host to update temperature intensity.
type TemperatureMessage struct {
	MessageWithType
	Temperature *float64 `json:"temperature"`
}

// WindSpeedMessage used by host to update wind intensity.
type WindSpeedMessage struct {
	MessageWithType
	WindSpeed *float64 `json:"windspeed"`
}

// PrecipitationMessage used by host to update precipitation intensity.
type PrecipitationMessage struct {
	MessageWithType
	Precipitation *float64 `json:"precipitation"`
}

// BatteryMessage used by host to update battery charge.
type BatteryMessage struct {
	MessageWithType
	Battery *float64 `json:"battery"`
}

// BatteryStateMessage used by host to update charging state.
type BatteryStateMessage struct {
	MessageWithType
	BatteryState *bool `json:"battery_state"`
}

// WeatherConditionsMessage used by host to update weather condition flags.
type WeatherConditionsMessage struct {
	MessageWithType
	Conditions common.WeatherConditions `json:"conditions"`
}

// BrightnessMessage used by host to update brightness.
type BrightnessMessage struct {
	MessageWithType
	Brightness float64 `json:"brightness"`
}

// TurnsMessage replaces the whole turn log.
type TurnsMessage struct {
	MessageWithType
	Turns []*common.Turn `json:"turns"`
}

// AnimationsEnabledMessage used by host to pause or resume animations.
type AnimationsEnabledMessage struct {
	MessageWithType
	Enabled bool `json:"enabled"`
}

// NewInitMessage constructs snapshot message.
func NewInitMessage(config *ConfigPayload, mood enums.Mood, sensors *common.SensorPayload,
	brightness float64, animationsEnabled bool) *InitMessage {
	return &InitMessage{
		MessageWithType:   MessageWithType{Type: enums.MsgInit},
		Config:            config,
		Mood:              mood,
		Sensors:           sensors,
		Brightness:        brightness,
		AnimationsEnabled: animationsEnabled,
	}
}

// NewConfigMessage constructs config update message.
func NewConfigMessage(config *ConfigPayload) *ConfigMessage {
	m := &ConfigMessage{
		MessageWithType: MessageWithType{Type: enums.MsgConfig},
	}

	if nil != config {
		m.ConfigPayload = *config
	}

	return m
}

// NewMoodMessage constructs mood message.
func NewMoodMessage(mood enums.Mood, resetSleep bool) *MoodMessage {
	return &MoodMessage{
		MessageWithType: MessageWithType{Type: enums.MsgMood},
		Mood:            mood,
		ResetSleep:      resetSleep,
	}
}

// NewTemperatureMessage constructs temperature message.
func NewTemperatureMessage(value *float64) *TemperatureMessage {
	return &TemperatureMessage{
		MessageWithType: MessageWithType{Type: enums.MsgTemperature},
		Temperature:     value,
	}
}

// NewWindSpeedMessage constructs wind speed message.
func NewWindSpeedMessage(value *float64) *WindSpeedMessage {
	return &WindSpeedMessage{
		MessageWithType: MessageWithType{Type: enums.MsgWindSpeed},
		WindSpeed:       value,
	}
}

// NewPrecipitationMessage constructs precipitation message.
func NewPrecipitationMessage(value *float64) *PrecipitationMessage {
	return &PrecipitationMessage{
		MessageWithType: MessageWithType{Type: enums.MsgPrecipitation},
		Precipitation:   value,
	}
}

// NewBatteryMessage constructs battery charge message.
func NewBatteryMessage(value *float64) *BatteryMessage {
	return &BatteryMessage{
		MessageWithType: MessageWithType{Type: enums.MsgBattery},
		Battery:         value,
	}
}

// NewBatteryStateMessage constructs charging state message.
func NewBatteryStateMessage(value *bool) *BatteryStateMessage {
	return &BatteryStateMessage{
		MessageWithType: MessageWithType{Type: enums.MsgBatteryState},
		BatteryState:    value,
	}
}

// NewWeatherConditionsMessage constructs weather conditions message.
func NewWeatherConditionsMessage(conditions common.WeatherConditions) *WeatherConditionsMessage {
	if nil == conditions {
		conditions = common.NewWeatherConditions()
	}

	return &WeatherConditionsMessage{
		MessageWithType: MessageWithType{Type: enums.MsgWeatherConditions},
		Conditions:      conditions.Copy(),
	}
}

// NewBrightnessMessage constructs brightness message.
func NewBrightnessMessage(value float64) *BrightnessMessage {
	return &BrightnessMessage{
		MessageWithType: MessageWithType{Type: enums.MsgBrightness},
		Brightness:      value,
	}
}

// NewTurnsMessage constructs turn log message.
// Turns are copied so later log updates don't leak into posted message.
func NewTurnsMessage(turns []*common.Turn) *TurnsMessage {
	m := &TurnsMessage{
		MessageWithType: MessageWithType{Type: enums.MsgTurns},
		Turns:           make([]*common.Turn, 0, len(turns)),
	}

	for _, v := range turns {
		t := *v
		m.Turns = append(m.Turns, &t)
	}

	return m
}

// NewAnimationsEnabledMessage constructs animations toggle message.
func NewAnimationsEnabledMessage(enabled bool) *AnimationsEnabledMessage {
	return &AnimationsEnabledMessage{
		MessageWithType: MessageWithType{Type: enums.MsgAnimationsEnabled},
		Enabled:         enabled,
	}
}

// NewSignalMessage constructs message without payload.
// Used for init_ack, ready, request_config and toggle_kiosk.
func NewSignalMessage(t enums.MessageType) *MessageWithType {
	return &MessageWithType{Type: t}
}
