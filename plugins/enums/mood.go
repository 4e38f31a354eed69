// Package enums contains string enumerations shared across systems.
package enums

import "strings"

// Mood defines character mood.
type Mood string

const (
	// MoodIdle describes idle mood.
	MoodIdle Mood = "idle"
	// MoodListening describes listening mood.
	MoodListening Mood = "listening"
	// MoodThinking describes thinking mood.
	MoodThinking Mood = "thinking"
	// MoodHappy describes happy mood.
	MoodHappy Mood = "happy"
	// MoodConfused describes confused mood.
	MoodConfused Mood = "confused"
	// MoodBored describes bored mood.
	MoodBored Mood = "bored"
	// MoodSleeping describes sleeping mood.
	MoodSleeping Mood = "sleeping"
	// MoodSad describes sad mood.
	MoodSad Mood = "sad"
	// MoodSurprised describes surprised mood.
	MoodSurprised Mood = "surprised"
)

// Moods contains all known moods.
var Moods = []Mood{MoodIdle, MoodListening, MoodThinking, MoodHappy, MoodConfused,
	MoodBored, MoodSleeping, MoodSad, MoodSurprised}

// String formats output.
func (m Mood) String() string {
	return string(m)
}

// IsIdleChain checks whether mood belongs to idle decay chain.
func (m Mood) IsIdleChain() bool {
	return m == MoodIdle || m == MoodBored || m == MoodSleeping
}

// NormalizeMood converts raw value into known mood.
// Unknown or empty values fall back to idle.
func NormalizeMood(raw string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if SliceContainsMood(Moods, m) {
		return m
	}

	return MoodIdle
}

// SliceContainsMood slice.contains implementation for moods.
func SliceContainsMood(s []Mood, e Mood) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// AssistStateToMood maps assist satellite state into mood.
func AssistStateToMood(state string) Mood {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "listening":
		return MoodListening
	case "thinking", "processing", "responding", "speaking":
		return MoodThinking
	}

	return MoodIdle
}
