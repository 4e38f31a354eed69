// Package runtime contains headless visual surface: mood, kiosk and weather effects.
package runtime

import (
	"math/rand"
	"net/url"
	"sync"
	"time"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems/bus"
	"go-home.io/x/macs/systems/channel"
	"go-home.io/x/macs/utils"
)

const (
	logSystem = "runtime"
	traceNS   = "runtime"

	readyMessage = "Ready..."
)

// ConstructRuntime has data required for a new runtime.
// Host is where messages are posted, Events is where host messages arrive.
type ConstructRuntime struct {
	Settings   providers.ISettingsProvider
	FanOut     providers.IFanOutProvider
	Host       channel.IWindow
	Events     channel.IEventSource
	HostOrigin string
	Query      url.Values
	Now        func() time.Time
	Rand       *rand.Rand
}

// Runtime owns presentation state of the surface.
type Runtime struct {
	sync.Mutex

	logger  common.ILoggerProvider
	tracer  common.IDebugTracer
	fanOut  providers.IFanOutProvider
	now     func() time.Time
	preview bool

	mood    *MoodMachine
	kiosk   *Kiosk
	weather *Weather

	battery             *float64
	charging            *bool
	batteryStateEnabled bool
	messages            []common.ChatMessage
	maxMessages         int
	animationsPaused    bool

	poster   *channel.Poster
	listener *channel.Listener

	frameInterval time.Duration
	stop          chan struct{}
	wg            sync.WaitGroup
	started       bool
	stopped       bool
}

// NewRuntime constructs a new runtime and applies query-string state.
func NewRuntime(ctor *ConstructRuntime) *Runtime {
	rs := ctor.Settings.RuntimeSettings()
	q := ParseQuery(ctor.Query)
	preview := q.Preview || ctor.Settings.ServerSettings().Preview

	r := &Runtime{
		logger:        ctor.Settings.SystemLogger(),
		tracer:        ctor.Settings.Tracer(),
		fanOut:        ctor.FanOut,
		now:           ctor.Now,
		preview:       preview,
		maxMessages:   defaultMaxMessages,
		frameInterval: utils.DurationMs(ctor.Settings.ServerSettings().FrameIntervalMs),
		stop:          make(chan struct{}),
	}

	if nil == r.now {
		r.now = time.Now
	}

	rnd := ctor.Rand
	if nil == rnd {
		seed := rs.Seed
		if 0 == seed {
			seed = time.Now().UnixNano()
		}
		rnd = rand.New(rand.NewSource(seed))
	}

	r.mood = NewMoodMachine(&ConstructMoodMachine{
		Locker:     r,
		BoredAfter: time.Duration(rs.BoredAfterSec) * time.Second,
		SleepAfter: time.Duration(rs.SleepAfterSec) * time.Second,
		Preview:    preview,
		Disabled:   rs.DisableIdleSequence,
		OnChange:   r.onMoodChange,
	})

	r.kiosk = NewKiosk(&ConstructKiosk{
		Locker:   r,
		Preview:  preview,
		Hold:     utils.DurationMs(rs.HoldMs),
		OnChange: r.onKioskChange,
		OnToggle: r.onHold,
	})

	r.weather = NewWeather(&ConstructWeather{
		Rand:   rnd,
		Now:    r.now,
		Width:  float64(rs.ViewWidth),
		Height: float64(rs.ViewHeight),
	})

	r.poster = channel.NewPoster(&channel.ConstructPoster{
		Sender:             bus.RecipientSurface,
		Recipient:          bus.RecipientHost,
		GetRecipientWindow: func() channel.IWindow { return ctor.Host },
		GetTargetOrigin:    func() string { return ctor.HostOrigin },
		AllowNullOrigin:    true,
		Logger:             r.logger,
		Tracer:             r.tracer,
	})

	r.listener = channel.NewListener(&channel.ConstructListener{
		Recipient:         bus.RecipientSurface,
		Window:            ctor.Events,
		GetExpectedSource: func() channel.IWindow { return ctor.Host },
		GetExpectedOrigin: func() string { return ctor.HostOrigin },
		AllowNullOrigin:   true,
		Parser:            bus.NewSurfaceMessageParser(r.logger),
		OnMessage:         r.onMessage,
		Logger:            r.logger,
		Tracer:            r.tracer,
	})

	r.messages = []common.ChatMessage{{Role: chatRoleAssistant, Text: readyMessage, TS: utils.TimeNowISO()}}
	r.applyQuery(q)
	return r
}

// Start listens to the host, starts frame loop and notifies host that surface is ready.
func (r *Runtime) Start() {
	r.Lock()
	if r.started {
		r.Unlock()
		return
	}
	r.started = true
	r.mood.ResetSequence()
	r.kiosk.RegisterActivity()
	r.Unlock()

	r.listener.Start()
	if r.frameInterval > 0 {
		r.wg.Add(1)
		go r.frameLoop()
	}

	r.Lock()
	defer r.Unlock()
	r.poster.Post(bus.NewSignalMessage(enums.MsgReady))
	r.logger.Info("Surface started", common.LogSystemToken, logSystem)
}

// Stop releases listener, timers and frame loop.
func (r *Runtime) Stop() {
	r.listener.Stop()

	r.Lock()
	if r.stopped {
		r.Unlock()
		return
	}
	r.stopped = true
	r.mood.Stop()
	r.kiosk.Stop()
	close(r.stop)
	r.Unlock()

	r.wg.Wait()
}

// RequestConfig asks host for the full snapshot.
func (r *Runtime) RequestConfig() bool {
	r.Lock()
	defer r.Unlock()

	return r.poster.Post(bus.NewSignalMessage(enums.MsgRequestConfig))
}

// Activity registers user activity.
func (r *Runtime) Activity() {
	r.Lock()
	defer r.Unlock()

	r.activity()
}

// Press registers pointer press, long press toggles dashboard chrome.
func (r *Runtime) Press() {
	r.Lock()
	defer r.Unlock()

	r.activity()
	r.kiosk.Press()
}

// Release registers pointer release or cancel.
func (r *Runtime) Release() {
	r.Lock()
	defer r.Unlock()

	r.kiosk.Release()
}

// Resize updates viewport.
func (r *Runtime) Resize(width float64, height float64) {
	r.Lock()
	defer r.Unlock()

	r.weather.SetViewSize(width, height)
}

// Mood returns displayed mood.
func (r *Runtime) Mood() enums.Mood {
	r.Lock()
	defer r.Unlock()

	return r.mood.Mood()
}

// KioskConfig returns current auto-brightness settings.
func (r *Runtime) KioskConfig() KioskConfig {
	r.Lock()
	defer r.Unlock()

	return r.kiosk.Config()
}

// Presentation returns current presentation.
func (r *Runtime) Presentation() *common.Presentation {
	r.Lock()
	defer r.Unlock()

	return r.presentation()
}

// Host message handler.
func (r *Runtime) onMessage(msg bus.IMessage) {
	r.Lock()
	defer r.Unlock()

	if r.stopped {
		return
	}

	r.trace("Received message", common.LogMessageTypeToken, msg.GetType().String())
	switch m := msg.(type) {
	case *bus.InitMessage:
		r.applyConfig(m.Config)
		r.mood.SetBaseMood(m.Mood)
		r.applySensors(m.Sensors)
		r.kiosk.SetBrightness(m.Brightness)
		r.kiosk.SetAnimationsToggleEnabled(m.AnimationsEnabled)
		r.poster.Post(bus.NewSignalMessage(enums.MsgInitAck))
	case *bus.ConfigMessage:
		r.applyConfig(&m.ConfigPayload)
	case *bus.AnimationsEnabledMessage:
		r.kiosk.SetAnimationsToggleEnabled(m.Enabled)
	case *bus.MoodMessage:
		r.mood.SetBaseMood(m.Mood)
		if m.ResetSleep {
			r.trace("Wake word, resetting sleep")
			r.activity()
		}
	case *bus.TemperatureMessage:
		r.warnIfNull("temperature", nil == m.Temperature)
		r.weather.SetTemperature(m.Temperature)
	case *bus.WindSpeedMessage:
		r.warnIfNull("windspeed", nil == m.WindSpeed)
		r.weather.SetWindSpeed(m.WindSpeed)
	case *bus.PrecipitationMessage:
		r.warnIfNull("precipitation", nil == m.Precipitation)
		r.weather.SetPrecipitation(m.Precipitation)
	case *bus.WeatherConditionsMessage:
		r.weather.SetConditions(m.Conditions)
	case *bus.BatteryMessage:
		r.warnIfNull("battery", nil == m.Battery)
		r.battery = copyFloat(m.Battery)
	case *bus.BatteryStateMessage:
		r.warnIfNull("battery_state", nil == m.BatteryState)
		r.charging = copyBool(m.BatteryState)
	case *bus.BrightnessMessage:
		r.kiosk.SetBrightness(m.Brightness)
	case *bus.TurnsMessage:
		r.trace("Turns received, resetting sleep")
		r.activity()
		r.messages = BuildChat(m.Turns, r.maxMessages)
	}

	r.publish()
}

// Applies present config fields. Must be called under lock.
func (r *Runtime) applyConfig(c *bus.ConfigPayload) {
	if nil == c {
		return
	}

	if nil != c.AssistSatelliteEnabled {
		r.mood.SetIdleSequenceEnabled(*c.AssistSatelliteEnabled)
	}
	if HasKioskConfig(c) {
		r.kiosk.SetConfig(c)
	}
	if nil != c.BatteryStateSensorEnabled {
		r.batteryStateEnabled = *c.BatteryStateSensorEnabled
	}
	if nil != c.DebugMode && nil != r.tracer {
		r.tracer.SetSelection(*c.DebugMode)
	}
	if nil != c.MaxTurns {
		r.maxMessages = MaxMessages(c.MaxTurns)
		if len(r.messages) > r.maxMessages {
			r.messages = r.messages[:r.maxMessages]
		}
	}
}

// Applies snapshot sensors. Must be called under lock.
func (r *Runtime) applySensors(s *common.SensorPayload) {
	if nil == s {
		return
	}

	r.weather.SetTemperature(s.Temperature)
	r.weather.SetWindSpeed(s.WindSpeed)
	r.weather.SetPrecipitation(s.Precipitation)
	if nil != s.WeatherConditions {
		r.weather.SetConditions(s.WeatherConditions)
	}
	r.battery = copyFloat(s.Battery)
	r.charging = copyBool(s.BatteryState)
}

// Applies query-string fallback.
func (r *Runtime) applyQuery(q *InitialState) {
	r.mood.SetBaseMood(q.Mood)
	if nil != q.Temperature {
		r.weather.SetTemperature(q.Temperature)
	}
	if nil != q.WindSpeed {
		r.weather.SetWindSpeed(q.WindSpeed)
	}
	if nil != q.Precipitation {
		r.weather.SetPrecipitation(q.Precipitation)
	}
	if nil != q.Conditions {
		r.weather.SetConditions(q.Conditions)
	}
	if nil != q.Battery {
		r.battery = q.Battery
	}
	if nil != q.Brightness {
		r.kiosk.SetBrightness(*q.Brightness)
	}
}

// Null update suppresses the effect and shows a hint in the chat overlay.
// Must be called under lock.
func (r *Runtime) warnIfNull(label string, null bool) {
	if !null {
		return
	}

	r.trace("Sensor value is null", common.LogSensorToken, label)
	r.messages = []common.ChatMessage{{
		Role: chatRoleAssistant,
		Text: "Looks like there might be a problem with [" + label + "]",
		TS:   utils.TimeNowISO(),
	}}
}

// Registers activity. Must be called under lock.
func (r *Runtime) activity() {
	r.kiosk.RegisterActivity()
	r.mood.ResetSequence()
}

// Hold gesture handler. Called under lock by the timer.
func (r *Runtime) onHold() {
	r.logger.Info("Long press, toggling kiosk", common.LogSystemToken, logSystem)
	r.poster.Post(bus.NewSignalMessage(enums.MsgToggleKiosk))
}

// Called under lock.
func (r *Runtime) onMoodChange(mood enums.Mood) {
	r.trace("Mood changed", common.LogMoodToken, mood.String())
	r.publish()
}

// Pauses or resumes particles. Called under lock.
func (r *Runtime) onKioskChange() {
	paused := r.kiosk.AnimationsPaused()
	if paused != r.animationsPaused {
		r.animationsPaused = paused
		r.weather.SetPaused(paused)
		r.trace("Animations paused changed", "paused", boolString(paused))
	}

	r.publish()
}

// Builds presentation. Must be called under lock.
func (r *Runtime) presentation() *common.Presentation {
	messages := make([]common.ChatMessage, len(r.messages))
	copy(messages, r.messages)

	return ComputePresentation(&PresentationState{
		Mood:                r.mood.Mood(),
		BaseMood:            r.mood.BaseMood(),
		Brightness:          r.kiosk.Brightness(),
		Dimmed:              r.kiosk.Dimmed(),
		Asleep:              r.kiosk.Asleep(),
		AnimationsPaused:    r.animationsPaused,
		Temperature:         r.weather.Temperature(),
		WindSpeed:           r.weather.WindSpeed(),
		Precipitation:       r.weather.Precipitation(),
		Battery:             r.battery,
		Charging:            r.charging,
		BatteryStateEnabled: r.batteryStateEnabled,
		Conditions:          r.weather.Conditions(),
		Particles:           r.weather.Frames(),
		Messages:            messages,
		Preview:             r.preview,
	})
}

// Pushes presentation to displays. Must be called under lock.
func (r *Runtime) publish() {
	if nil == r.fanOut || !r.started || r.stopped {
		return
	}

	select {
	case r.fanOut.ChannelInPresentation() <- r.presentation():
	default:
	}
}

// Publishes frames while particles are moving.
func (r *Runtime) frameLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Lock()
			if r.animating() {
				r.publish()
			}
			r.Unlock()
		}
	}
}

// Returns whether any particle is alive. Must be called under lock.
func (r *Runtime) animating() bool {
	if r.animationsPaused {
		return false
	}

	for _, v := range r.weather.Active() {
		if v > 0 {
			return true
		}
	}

	return false
}

// Writes into debug channel.
func (r *Runtime) trace(msg string, fields ...string) {
	if nil != r.tracer {
		r.tracer.Trace(traceNS, msg, fields...)
		return
	}

	r.logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
}

func copyBool(v *bool) *bool {
	if nil == v {
		return nil
	}

	c := *v
	return &c
}

// Formats bool for logs.
func boolString(v bool) string {
	if v {
		return "true"
	}

	return "false"
}
