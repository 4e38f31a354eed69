package runtime

import (
	"math"
	"sync"
	"time"

	"go-home.io/x/macs/systems/bus"
	"go-home.io/x/macs/utils"
)

// Longest fade before kiosk falls asleep.
const maxFade = 10 * time.Second

// KioskConfig has auto-brightness settings.
type KioskConfig struct {
	Enabled         bool
	TimeoutMinutes  float64
	Min             float64
	Max             float64
	PauseAnimations bool
}

// ConstructKiosk has data required for a new kiosk.
type ConstructKiosk struct {
	Locker   sync.Locker
	Preview  bool
	Hold     time.Duration
	OnChange func()
	OnToggle func()
}

// Kiosk dims the display after inactivity and handles long-press gesture.
// Sleep is gradual, wake is instant.
// Every method must be called under the owner's locker.
type Kiosk struct {
	cfg     KioskConfig
	preview bool
	hold    time.Duration

	brightness    float64
	toggleEnabled bool
	dimmed        bool
	asleep        bool

	fadeTimer  *utils.SlotTimer
	sleepTimer *utils.SlotTimer
	holdTimer  *utils.SlotTimer
	onChange   func()
	onToggle   func()
}

// NewKiosk constructs a new kiosk.
func NewKiosk(ctor *ConstructKiosk) *Kiosk {
	return &Kiosk{
		cfg: KioskConfig{
			TimeoutMinutes:  5,
			Max:             100,
			PauseAnimations: true,
		},
		preview:       ctor.Preview,
		hold:          ctor.Hold,
		brightness:    100,
		toggleEnabled: true,
		fadeTimer:     utils.NewSlotTimer(ctor.Locker),
		sleepTimer:    utils.NewSlotTimer(ctor.Locker),
		holdTimer:     utils.NewSlotTimer(ctor.Locker),
		onChange:      ctor.OnChange,
		onToggle:      ctor.OnToggle,
	}
}

// SetConfig applies present auto-brightness fields and reschedules timers.
func (k *Kiosk) SetConfig(p *bus.ConfigPayload) {
	if nil == p {
		return
	}

	if nil != p.AutoBrightnessEnabled {
		k.cfg.Enabled = *p.AutoBrightnessEnabled
	}
	if nil != p.AutoBrightnessTimeoutMinutes {
		k.cfg.TimeoutMinutes = math.Max(0, *p.AutoBrightnessTimeoutMinutes)
	}
	if nil != p.AutoBrightnessMin {
		k.cfg.Min = clampPercent(*p.AutoBrightnessMin)
	}
	if nil != p.AutoBrightnessMax {
		k.cfg.Max = clampPercent(*p.AutoBrightnessMax)
	}
	if nil != p.AutoBrightnessPauseAnimations {
		k.cfg.PauseAnimations = *p.AutoBrightnessPauseAnimations
	}

	k.wake()
	k.schedule()
	k.changed()
}

// HasKioskConfig returns whether payload carries any auto-brightness field.
func HasKioskConfig(p *bus.ConfigPayload) bool {
	return nil != p && (nil != p.AutoBrightnessEnabled || nil != p.AutoBrightnessTimeoutMinutes ||
		nil != p.AutoBrightnessMin || nil != p.AutoBrightnessMax || nil != p.AutoBrightnessPauseAnimations)
}

// Config returns current settings.
func (k *Kiosk) Config() KioskConfig {
	return k.cfg
}

// SetBrightness applies brightness from the host.
func (k *Kiosk) SetBrightness(v float64) {
	k.brightness = clampPercent(v)
	k.changed()
}

// SetAnimationsToggleEnabled applies manual animations override.
func (k *Kiosk) SetAnimationsToggleEnabled(enabled bool) {
	if k.toggleEnabled == enabled {
		return
	}

	k.toggleEnabled = enabled
	k.changed()
}

// RegisterActivity wakes display instantly and restarts inactivity timers.
func (k *Kiosk) RegisterActivity() {
	woke := k.wake()
	k.schedule()
	if woke {
		k.changed()
	}
}

// Press starts long-press detection.
func (k *Kiosk) Press() {
	if !k.active() || nil == k.onToggle {
		return
	}

	k.holdTimer.Start(k.hold, k.onToggle)
}

// Release cancels long-press detection.
func (k *Kiosk) Release() {
	k.holdTimer.Stop()
}

// Brightness returns effective brightness in [0,100].
func (k *Kiosk) Brightness() float64 {
	if !k.active() {
		return k.brightness
	}

	if k.dimmed || k.asleep {
		return k.cfg.Min
	}

	return math.Max(k.cfg.Min, math.Min(k.cfg.Max, k.brightness))
}

// Dimmed returns whether fade has started.
func (k *Kiosk) Dimmed() bool {
	return k.dimmed
}

// Asleep returns whether the timeout is reached.
func (k *Kiosk) Asleep() bool {
	return k.asleep
}

// AnimationsPaused returns whether particle animation must be stopped.
func (k *Kiosk) AnimationsPaused() bool {
	if !k.toggleEnabled {
		return true
	}

	return k.active() && k.asleep && k.cfg.PauseAnimations
}

// FadeDuration returns how long dimming takes.
func (k *Kiosk) FadeDuration() time.Duration {
	timeout := k.timeout()
	if timeout < maxFade {
		return timeout
	}

	return maxFade
}

// Stop cancels the timers.
func (k *Kiosk) Stop() {
	k.fadeTimer.Stop()
	k.sleepTimer.Stop()
	k.holdTimer.Stop()
}

// Auto-brightness applies only outside of preview.
func (k *Kiosk) active() bool {
	return k.cfg.Enabled && !k.preview && k.timeout() > 0
}

func (k *Kiosk) timeout() time.Duration {
	return time.Duration(k.cfg.TimeoutMinutes * float64(time.Minute))
}

// Schedules fade and sleep.
func (k *Kiosk) schedule() {
	k.fadeTimer.Stop()
	k.sleepTimer.Stop()

	if !k.active() {
		return
	}

	timeout := k.timeout()
	k.fadeTimer.Start(timeout-k.FadeDuration(), func() {
		k.dimmed = true
		k.changed()
	})
	k.sleepTimer.Start(timeout, func() {
		k.dimmed = true
		k.asleep = true
		k.changed()
	})
}

// Restores brightness. Returns whether anything changed.
func (k *Kiosk) wake() bool {
	if !k.dimmed && !k.asleep {
		return false
	}

	k.dimmed = false
	k.asleep = false
	return true
}

func (k *Kiosk) changed() {
	if nil != k.onChange {
		k.onChange()
	}
}

// Clamps value into [0,100], non-finite is 100.
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 100
	}

	return math.Max(0, math.Min(100, v))
}
