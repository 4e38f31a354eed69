package bus

import (
	"encoding/json"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
)

const logSystem = "bus"

// IMessageParserProvider describes messages parser.
type IMessageParserProvider interface {
	Parse(data []byte) IMessage
}

// Message parser implementation.
// Each side of the channel accepts only messages directed to it.
type messageParser struct {
	logger   common.ILoggerProvider
	accepted []enums.MessageType
}

// NewHostMessageParser constructs parser for the host side.
func NewHostMessageParser(logger common.ILoggerProvider) IMessageParserProvider {
	return &messageParser{
		logger: logger,
		accepted: []enums.MessageType{enums.MsgInitAck, enums.MsgReady, enums.MsgRequestConfig,
			enums.MsgToggleKiosk, enums.MsgTurns},
	}
}

// NewSurfaceMessageParser constructs parser for the embedded surface side.
func NewSurfaceMessageParser(logger common.ILoggerProvider) IMessageParserProvider {
	return &messageParser{
		logger: logger,
		accepted: []enums.MessageType{enums.MsgInit, enums.MsgConfig, enums.MsgMood,
			enums.MsgTemperature, enums.MsgWindSpeed, enums.MsgPrecipitation, enums.MsgWeatherConditions,
			enums.MsgBattery, enums.MsgBatteryState, enums.MsgBrightness, enums.MsgTurns,
			enums.MsgAnimationsEnabled},
	}
}

// Parse decodes incoming channel payload.
// Returns nil if payload is corrupted or not directed to this side.
func (p *messageParser) Parse(data []byte) IMessage {
	var b MessageWithType
	if err := json.Unmarshal(data, &b); err != nil {
		p.logger.Warn("Failed to parse incoming message", common.LogSystemToken, logSystem)
		return nil
	}

	if !sliceContainsType(p.accepted, b.Type) {
		p.logger.Warn("Received unknown message type", common.LogMessageTypeToken, b.Type.String(),
			common.LogSystemToken, logSystem)
		return nil
	}

	m, err := ParseMessage(data)
	if err != nil {
		p.logger.Error("Failed to parse incoming message", err,
			common.LogMessageTypeToken, b.Type.String(), common.LogSystemToken, logSystem)
		return nil
	}

	return m
}

// ParseMessage decodes payload into typed message.
// nolint: gocyclo
func ParseMessage(data []byte) (IMessage, error) {
	var b MessageWithType
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &ErrCorruptedMessage{}
	}

	var m IMessage
	switch b.Type {
	case enums.MsgInit:
		m = &InitMessage{}
	case enums.MsgConfig:
		m = &ConfigMessage{}
	case enums.MsgMood:
		m = &MoodMessage{}
	case enums.MsgTemperature:
		m = &TemperatureMessage{}
	case enums.MsgWindSpeed:
		m = &WindSpeedMessage{}
	case enums.MsgPrecipitation:
		m = &PrecipitationMessage{}
	case enums.MsgWeatherConditions:
		m = &WeatherConditionsMessage{}
	case enums.MsgBattery:
		m = &BatteryMessage{}
	case enums.MsgBatteryState:
		m = &BatteryStateMessage{}
	case enums.MsgBrightness:
		m = &BrightnessMessage{}
	case enums.MsgTurns:
		m = &TurnsMessage{}
	case enums.MsgAnimationsEnabled:
		m = &AnimationsEnabledMessage{}
	case enums.MsgInitAck, enums.MsgReady, enums.MsgRequestConfig, enums.MsgToggleKiosk:
		return &b, nil
	default:
		return nil, &ErrUnknownMessage{Type: b.Type.String()}
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, &ErrCorruptedMessage{}
	}

	return m, nil
}

// Checks whether message type is in the list.
func sliceContainsType(s []enums.MessageType, e enums.MessageType) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
