package enums

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests mood normalization.
func TestNormalizeMood(t *testing.T) {
	data := map[string]Mood{
		"":            MoodIdle,
		"  Happy ":    MoodHappy,
		"SLEEPING":    MoodSleeping,
		"dancing":     MoodIdle,
		"surprised\n": MoodSurprised,
	}

	for k, v := range data {
		assert.Equal(t, v, NormalizeMood(k), k)
	}
}

// Tests whether moods slice properly handles contains method.
func TestSliceMoodsContains(t *testing.T) {
	for _, v := range Moods {
		assert.True(t, SliceContainsMood(Moods, v), v.String())
	}

	assert.False(t, SliceContainsMood([]Mood{MoodIdle}, MoodSad))
}

// Tests idle chain detection.
func TestIdleChain(t *testing.T) {
	assert.True(t, MoodBored.IsIdleChain())
	assert.True(t, MoodSleeping.IsIdleChain())
	assert.False(t, MoodThinking.IsIdleChain())
}

// Tests satellite state mapping.
func TestAssistStateToMood(t *testing.T) {
	assert.Equal(t, MoodListening, AssistStateToMood("Listening"))
	assert.Equal(t, MoodThinking, AssistStateToMood("processing"))
	assert.Equal(t, MoodThinking, AssistStateToMood("responding"))
	assert.Equal(t, MoodIdle, AssistStateToMood("unavailable"))
}

// Tests condition keys lookup.
func TestConditionKeyString(t *testing.T) {
	assert.Equal(t, 13, len(ConditionKeys))
	k, ok := ConditionKeyString("clear_night")
	assert.True(t, ok)
	assert.Equal(t, CondClearNight, k)

	_, ok = ConditionKeyString("volcanic")
	assert.False(t, ok)
}

// Tests base units.
func TestBaseUnit(t *testing.T) {
	assert.Equal(t, UnitCelsius, SenTemperature.BaseUnit())
	assert.Equal(t, UnitMph, SenWind.BaseUnit())
	assert.Equal(t, UnitMm, SenRain.BaseUnit())
	assert.Equal(t, UnitPercent, SenBattery.BaseUnit())
}

// Tests message type wire namespace.
func TestMessageTypeNamespace(t *testing.T) {
	b, err := json.Marshal(MsgToggleKiosk)
	assert.NoError(t, err)
	assert.Equal(t, `"macs:toggle_kiosk"`, string(b))

	var m MessageType
	assert.NoError(t, json.Unmarshal([]byte(`"macs:request_config"`), &m))
	assert.Equal(t, MsgRequestConfig, m)

	assert.NoError(t, json.Unmarshal([]byte(`"ready"`), &m))
	assert.Equal(t, MsgReady, m)
}
