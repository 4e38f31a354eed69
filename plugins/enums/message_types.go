package enums

import "strings"

// MessageTypeNamespace prefixes every message type on the wire.
const MessageTypeNamespace = "macs:"

// MessageType defines channel message type.
type MessageType string

const (
	// MsgInit describes full snapshot, host to surface.
	MsgInit MessageType = "init"
	// MsgInitAck describes snapshot acknowledgment, surface to host.
	MsgInitAck MessageType = "init_ack"
	// MsgReady describes surface start notification.
	MsgReady MessageType = "ready"
	// MsgRequestConfig describes resync request, surface to host.
	MsgRequestConfig MessageType = "request_config"
	// MsgConfig describes partial config update.
	MsgConfig MessageType = "config"
	// MsgMood describes explicit mood override.
	MsgMood MessageType = "mood"
	// MsgTemperature describes temperature update.
	MsgTemperature MessageType = "temperature"
	// MsgWindSpeed describes wind speed update.
	MsgWindSpeed MessageType = "windspeed"
	// MsgPrecipitation describes precipitation update.
	MsgPrecipitation MessageType = "precipitation"
	// MsgWeatherConditions describes weather condition flags update.
	MsgWeatherConditions MessageType = "weather_conditions"
	// MsgBattery describes battery charge update.
	MsgBattery MessageType = "battery"
	// MsgBatteryState describes charging state update.
	MsgBatteryState MessageType = "battery_state"
	// MsgBrightness describes brightness update.
	MsgBrightness MessageType = "brightness"
	// MsgTurns describes full turn-log replacement.
	MsgTurns MessageType = "turns"
	// MsgAnimationsEnabled describes manual pause override.
	MsgAnimationsEnabled MessageType = "animations_enabled"
	// MsgToggleKiosk describes long-press gesture signal, surface to host.
	MsgToggleKiosk MessageType = "toggle_kiosk"
)

// String formats output.
func (m MessageType) String() string {
	return string(m)
}

// MarshalText adds wire namespace.
func (m MessageType) MarshalText() ([]byte, error) {
	return []byte(MessageTypeNamespace + string(m)), nil
}

// UnmarshalText strips wire namespace.
func (m *MessageType) UnmarshalText(text []byte) error {
	*m = MessageType(strings.TrimPrefix(string(text), MessageTypeNamespace))
	return nil
}
