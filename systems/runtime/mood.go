package runtime

import (
	"sync"
	"time"

	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/utils"
)

// ConstructMoodMachine has data required for a new mood machine.
type ConstructMoodMachine struct {
	Locker     sync.Locker
	BoredAfter time.Duration
	SleepAfter time.Duration
	Preview    bool
	Disabled   bool
	OnChange   func(enums.Mood)
}

// MoodMachine keeps base mood set by the host and the displayed one.
// While base mood is idle, the displayed mood decays to bored and then to sleeping.
// Every method must be called under the owner's locker.
type MoodMachine struct {
	base            enums.Mood
	display         enums.Mood
	sequenceEnabled bool
	preview         bool
	disabled        bool
	boredAfter      time.Duration
	sleepAfter      time.Duration
	timer           *utils.SlotTimer
	onChange        func(enums.Mood)
}

// NewMoodMachine constructs a new mood machine.
func NewMoodMachine(ctor *ConstructMoodMachine) *MoodMachine {
	return &MoodMachine{
		base:       enums.MoodIdle,
		display:    enums.MoodIdle,
		preview:    ctor.Preview,
		disabled:   ctor.Disabled,
		boredAfter: ctor.BoredAfter,
		sleepAfter: ctor.SleepAfter,
		timer:      utils.NewSlotTimer(ctor.Locker),
		onChange:   ctor.OnChange,
	}
}

// SetBaseMood applies explicit mood. Decay timers are restarted.
func (m *MoodMachine) SetBaseMood(mood enums.Mood) {
	m.base = enums.NormalizeMood(mood.String())
	m.timer.Stop()

	if enums.MoodIdle != m.base {
		m.setDisplay(m.base)
		return
	}

	m.restart()
}

// ResetSequence cancels decay and starts it from zero.
// Displayed mood goes back to idle if base mood is idle.
func (m *MoodMachine) ResetSequence() {
	if enums.MoodIdle != m.base {
		return
	}

	m.restart()
}

// SetIdleSequenceEnabled toggles decay feature.
func (m *MoodMachine) SetIdleSequenceEnabled(enabled bool) {
	if m.sequenceEnabled == enabled {
		return
	}

	m.sequenceEnabled = enabled
	if !enabled {
		m.timer.Stop()
	}

	if enums.MoodIdle == m.base {
		m.restart()
	}
}

// IdleSequenceEnabled returns whether decay is enabled.
func (m *MoodMachine) IdleSequenceEnabled() bool {
	return m.sequenceEnabled
}

// Mood returns displayed mood.
func (m *MoodMachine) Mood() enums.Mood {
	return m.display
}

// BaseMood returns mood set by the host.
func (m *MoodMachine) BaseMood() enums.Mood {
	return m.base
}

// Decaying returns whether decay timer is pending.
func (m *MoodMachine) Decaying() bool {
	return m.timer.Active()
}

// Stop cancels the timers.
func (m *MoodMachine) Stop() {
	m.timer.Stop()
}

// Shows idle and starts decay if eligible.
func (m *MoodMachine) restart() {
	m.timer.Stop()
	m.setDisplay(enums.MoodIdle)

	if !m.sequenceEnabled || m.disabled || m.preview {
		return
	}

	m.timer.Start(m.boredAfter, m.bored)
}

func (m *MoodMachine) bored() {
	if enums.MoodIdle != m.base {
		return
	}

	m.setDisplay(enums.MoodBored)
	m.timer.Start(m.sleepAfter, m.sleeping)
}

func (m *MoodMachine) sleeping() {
	if enums.MoodIdle != m.base {
		return
	}

	m.setDisplay(enums.MoodSleeping)
}

// Updates displayed mood, notifies only on actual change.
func (m *MoodMachine) setDisplay(mood enums.Mood) {
	if m.display == mood {
		return
	}

	m.display = mood
	if nil != m.onChange {
		m.onChange(mood)
	}
}
