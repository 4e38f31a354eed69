package bridge

import (
	"strings"
	"time"

	"go-home.io/x/macs/plugins/enums"
)

const satelliteIdle = "idle"

// SatelliteTracker follows assist satellite state transitions.
// Once a session ends, the outcome mood is shown for a fixed duration.
type SatelliteTracker struct {
	now func() time.Time

	lastState   string
	inSession   bool
	wakeWord    bool
	outcome     enums.Mood
	outcomeTill time.Time
}

// NewSatelliteTracker constructs a new tracker.
func NewSatelliteTracker(now func() time.Time) *SatelliteTracker {
	if nil == now {
		now = time.Now
	}

	return &SatelliteTracker{
		now: now,
	}
}

// Update registers the current satellite state.
// failed tells whether the newest turn finished with error.
func (s *SatelliteTracker) Update(state string, failed bool, outcomeDuration time.Duration) {
	state = strings.ToLower(strings.TrimSpace(state))
	prev := s.lastState
	s.lastState = state
	s.wakeWord = satelliteIdle == prev && "listening" == state

	if "" == state || state == prev {
		return
	}

	if satelliteIdle != state {
		if enums.MoodIdle != enums.AssistStateToMood(state) {
			s.inSession = true
			s.outcome = ""
		}
		return
	}

	if !s.inSession {
		return
	}

	s.inSession = false
	if outcomeDuration <= 0 {
		return
	}

	s.outcome = enums.MoodHappy
	if failed {
		s.outcome = enums.MoodConfused
	}
	s.outcomeTill = s.now().Add(outcomeDuration)
}

// Reset forgets tracked state.
func (s *SatelliteTracker) Reset() {
	s.lastState = ""
	s.inSession = false
	s.wakeWord = false
	s.outcome = ""
}

// WakeWord returns whether the last update was idle to listening transition.
func (s *SatelliteTracker) WakeWord() bool {
	return s.wakeWord
}

// Mood returns mood derived from the last state.
func (s *SatelliteTracker) Mood() enums.Mood {
	return enums.AssistStateToMood(s.lastState)
}

// OverrideMood returns outcome mood if it's still shown.
func (s *SatelliteTracker) OverrideMood() (enums.Mood, bool) {
	if "" == s.outcome {
		return "", false
	}

	if !s.now().Before(s.outcomeTill) {
		s.outcome = ""
		return "", false
	}

	return s.outcome, true
}

// OverrideLeft returns how long outcome mood is still shown.
func (s *SatelliteTracker) OverrideLeft() time.Duration {
	if "" == s.outcome {
		return 0
	}

	left := s.outcomeTill.Sub(s.now())
	if left < 0 {
		return 0
	}

	return left
}
