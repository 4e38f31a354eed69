// Package bridge contains host side of the card: state diffing, resync and turn log.
package bridge

import (
	"strings"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/plugins/helpers"
	"go-home.io/x/macs/plugins/platform"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems/bus"
	"go-home.io/x/macs/systems/channel"
	"go-home.io/x/macs/systems/sensor"
	"go-home.io/x/macs/utils"
)

const (
	logSystem = "bridge"
	traceNS   = "bridge"
)

// ConstructBridge has data required for a new bridge.
type ConstructBridge struct {
	Settings      providers.ISettingsProvider
	Platform      platform.IPlatform
	FanOut        providers.IFanOutProvider
	Now           func() time.Time
	FetchDebounce time.Duration
	FetchDelays   []time.Duration
}

// Values which were sent to the surface last time.
// Nil means nothing was sent yet.
type lastSent struct {
	mood       *enums.Mood
	brightness *float64
	animations *bool
	sensors    *common.SensorPayload
	config     *bus.ConfigPayload
	turns      []*common.Turn
	turnsSent  bool
}

// Computed host state at the tick time.
type hostState struct {
	mood       enums.Mood
	wakeWord   bool
	brightness float64
	animations bool
	sensors    *common.SensorPayload
	config     *bus.ConfigPayload
}

// Bridge owns the surface link and pushes only changed state to it.
type Bridge struct {
	sync.Mutex

	settings providers.ISettingsProvider
	logger   common.ILoggerProvider
	tracer   common.IDebugTracer
	platform platform.IPlatform
	fanOut   providers.IFanOutProvider
	resolver *sensor.Resolver
	config   *providers.CardConfig
	preview  bool

	pipeline     *PipelineTracker
	satellite    *SatelliteTracker
	outcomeTimer *utils.SlotTimer

	window   channel.IWindow
	poster   *channel.Poster
	listener *channel.Listener
	loaded   bool
	last     lastSent

	kioskHidden    bool
	debugSelection string
	unsubscribe    func()
	cronID         int
}

// NewBridge constructs a new host bridge.
func NewBridge(ctor *ConstructBridge) *Bridge {
	logger := ctor.Settings.SystemLogger()
	b := &Bridge{
		settings:       ctor.Settings,
		logger:         logger,
		tracer:         ctor.Settings.Tracer(),
		platform:       ctor.Platform,
		fanOut:         ctor.FanOut,
		config:         ctor.Settings.CardConfig().Copy(),
		preview:        ctor.Settings.ServerSettings().Preview,
		satellite:      NewSatelliteTracker(ctor.Now),
		debugSelection: "",
		cronID:         -1,
	}

	b.resolver = sensor.NewResolver(&sensor.ConstructResolver{
		Platform: ctor.Platform,
		Logger:   logger,
		Tracer:   b.tracer,
	})

	b.pipeline = NewPipelineTracker(&ConstructPipelineTracker{
		Platform:   ctor.Platform,
		Logger:     logger,
		Tracer:     b.tracer,
		OnTurns:    b.onTurns,
		Debounce:   ctor.FetchDebounce,
		Delays:     ctor.FetchDelays,
		RPCTimeout: time.Duration(ctor.Settings.PlatformSettings().RPCTimeoutSec) * time.Second,
	})

	b.outcomeTimer = utils.NewSlotTimer(b)
	return b
}

// Start subscribes to the platform state and schedules periodic resync.
func (b *Bridge) Start() {
	b.pipeline.SetConfig(b.Config())

	b.Lock()
	defer b.Unlock()

	b.unsubscribe = b.platform.SubscribeStateChanged("", b.onStateChanged)
	schedule := b.settings.ServerSettings().ResyncSchedule
	if "" != schedule {
		id, err := b.settings.Cron().AddFunc(schedule, b.Tick)
		if err != nil {
			b.logger.Error("Failed to schedule resync", err, common.LogSystemToken, logSystem)
		} else {
			b.cronID = id
		}
	}

	b.tick()
}

// Stop releases platform subscription, timers and surface link.
func (b *Bridge) Stop() {
	b.pipeline.Dispose()

	b.Lock()
	defer b.Unlock()

	if nil != b.unsubscribe {
		b.unsubscribe()
		b.unsubscribe = nil
	}

	if b.cronID >= 0 {
		b.settings.Cron().RemoveFunc(b.cronID)
		b.cronID = -1
	}

	b.outcomeTimer.Stop()
	b.detach()
}

// Attach links a surface and sends the full snapshot to it.
// window is where messages are posted, events is where surface messages arrive.
func (b *Bridge) Attach(window channel.IWindow, events channel.IEventSource, origin string) {
	b.Lock()
	defer b.Unlock()

	b.detach()

	allowNull := b.settings.ServerSettings().AllowNullOrigin
	b.window = window
	b.poster = channel.NewPoster(&channel.ConstructPoster{
		Sender:             bus.RecipientHost,
		Recipient:          bus.RecipientSurface,
		GetRecipientWindow: func() channel.IWindow { return window },
		GetTargetOrigin:    func() string { return origin },
		AllowNullOrigin:    allowNull,
		Logger:             b.logger,
		Tracer:             b.tracer,
	})

	b.listener = channel.NewListener(&channel.ConstructListener{
		Recipient:         bus.RecipientHost,
		Window:            events,
		GetExpectedSource: func() channel.IWindow { return window },
		GetExpectedOrigin: func() string { return origin },
		AllowNullOrigin:   allowNull,
		Parser:            bus.NewHostMessageParser(b.logger),
		OnMessage:         b.onMessage,
		Logger:            b.logger,
		Tracer:            b.tracer,
	})
	b.listener.Start()

	b.logger.Info("Surface attached", common.LogOriginToken, origin, common.LogSystemToken, logSystem)
	b.load()
}

// Detach removes surface link if it's still the given window.
func (b *Bridge) Detach(window channel.IWindow) {
	b.Lock()
	defer b.Unlock()

	if b.window != window {
		return
	}

	b.detach()
	b.logger.Info("Surface detached", common.LogSystemToken, logSystem)
}

// SetConfig replaces card config.
func (b *Bridge) SetConfig(cfg *providers.CardConfig) {
	b.Lock()
	b.config = cfg.Copy()
	b.Unlock()

	b.pipeline.SetConfig(cfg)
	b.Tick()
}

// Config returns copy of the current card config.
func (b *Bridge) Config() *providers.CardConfig {
	b.Lock()
	defer b.Unlock()

	return b.config.Copy()
}

// Tick re-evaluates platform state and sends changed fields.
func (b *Bridge) Tick() {
	b.Lock()
	defer b.Unlock()

	b.tick()
}

// Turns returns copy of the turn log.
func (b *Bridge) Turns() []*common.Turn {
	return b.pipeline.Turns()
}

// KioskHidden returns whether dashboard chrome is hidden.
func (b *Bridge) KioskHidden() bool {
	b.Lock()
	defer b.Unlock()

	return b.kioskHidden
}

// Loaded returns whether surface is attached.
func (b *Bridge) Loaded() bool {
	b.Lock()
	defer b.Unlock()

	return b.loaded
}

// Sensors returns current sensor payload.
func (b *Bridge) Sensors() *common.SensorPayload {
	b.Lock()
	defer b.Unlock()

	return b.resolver.Resolve(b.config)
}

// Platform state change handler.
func (b *Bridge) onStateChanged(e *platform.StateChangedEvent) {
	b.Lock()
	defer b.Unlock()

	if !helpers.SliceContainsString(b.watched(), e.EntityID) {
		return
	}

	b.tick()
}

// Surface messages handler.
func (b *Bridge) onMessage(msg bus.IMessage) {
	b.Lock()
	defer b.Unlock()

	switch msg.GetType() {
	case enums.MsgReady:
		b.trace("Surface is ready")
		b.load()
	case enums.MsgRequestConfig:
		b.trace("Surface requested config")
		b.sendSnapshot()
	case enums.MsgInitAck:
		b.trace("Surface acknowledged snapshot")
	case enums.MsgToggleKiosk:
		if b.preview {
			b.trace("Kiosk toggle ignored in preview")
			return
		}
		b.kioskHidden = !b.kioskHidden
		b.logger.Info("Kiosk toggled", "hidden", boolString(b.kioskHidden), common.LogSystemToken, logSystem)
	default:
		b.trace("Ignored surface message", common.LogMessageTypeToken, msg.GetType().String())
	}
}

// Pipeline tracker turns handler.
func (b *Bridge) onTurns(turns []*common.Turn) {
	b.Lock()
	defer b.Unlock()

	b.sendTurns(turns, false)
	b.tick()
}

// Handles surface load: forget last-sent values and send everything.
// Must be called under lock.
func (b *Bridge) load() {
	b.loaded = nil != b.poster
	b.last = lastSent{}
	b.sendSnapshot()
	b.pipeline.TriggerFetchNewest()
}

// Drops the surface link. Must be called under lock.
func (b *Bridge) detach() {
	if nil != b.listener {
		b.listener.Stop()
	}

	b.listener = nil
	b.poster = nil
	b.window = nil
	b.loaded = false
	b.last = lastSent{}
}

// Reads the whole host state. Must be called under lock.
func (b *Bridge) readState() *hostState {
	cfg := b.config
	st := &hostState{
		mood:       enums.NormalizeMood(b.entityState(platform.MoodEntityID)),
		brightness: helpers.NormBrightness(b.entityValue(platform.BrightnessEntityID)),
		animations: true,
		sensors:    b.resolver.Resolve(cfg),
		config:     b.configPayload(),
	}

	if a := b.platform.GetEntityState(platform.AnimationsEntityID); nil != a {
		st.animations = "on" == a.State
	}

	satID := strings.TrimSpace(cfg.AssistSatelliteEntity)
	if cfg.AssistSatelliteEnabled && "" != satID {
		failed := false
		if newest := b.pipeline.Newest(); nil != newest {
			failed = "" != newest.Error
		}

		b.satellite.Update(b.entityState(satID), failed,
			time.Duration(cfg.AssistOutcomeDurationMs)*time.Millisecond)
		st.mood = b.satellite.Mood()
		st.wakeWord = b.satellite.WakeWord()
	} else {
		b.satellite.Reset()
	}

	if m, ok := b.satellite.OverrideMood(); ok {
		st.mood = m
	}

	return st
}

// Builds config subset for the surface.
// Preview forces kiosk mode off so editor stays usable.
func (b *Bridge) configPayload() *bus.ConfigPayload {
	cfg := b.config
	pipeline := ""
	if cfg.AssistPipelineEnabled {
		pipeline = strings.TrimSpace(cfg.AssistPipelineEntity)
	}

	autoBrightness := cfg.AutoBrightnessEnabled && !b.preview
	timeout := cfg.AutoBrightnessTimeoutMinutes
	if b.preview {
		timeout = 0
	}

	minBrightness := cfg.AutoBrightnessMin
	maxBrightness := cfg.AutoBrightnessMax
	paused := cfg.AutoBrightnessPauseAnimations
	satellite := cfg.AssistSatelliteEnabled
	batteryState := cfg.BatteryStateSensorEnabled
	debugMode := cfg.DebugMode
	maxTurns := cfg.MaxTurns

	return &bus.ConfigPayload{
		AssistPipelineEntity:          &pipeline,
		AssistSatelliteEnabled:        &satellite,
		AutoBrightnessEnabled:         &autoBrightness,
		AutoBrightnessTimeoutMinutes:  &timeout,
		AutoBrightnessMin:             &minBrightness,
		AutoBrightnessMax:             &maxBrightness,
		AutoBrightnessPauseAnimations: &paused,
		BatteryStateSensorEnabled:     &batteryState,
		DebugMode:                     &debugMode,
		MaxTurns:                      &maxTurns,
	}
}

// Sends changed fields. Must be called under lock.
func (b *Bridge) tick() {
	st := b.readState()
	b.applyDebugSelection()
	b.scheduleOutcomeEnd()

	if !b.loaded {
		return
	}

	if st.wakeWord {
		b.trace("Wake word, resetting sleep", common.LogMoodToken, st.mood.String())
		b.sendMood(st.mood, true)
	} else if nil == b.last.mood || *b.last.mood != st.mood {
		b.sendMood(st.mood, false)
	}

	b.sendSensors(st.sensors)

	if nil == b.last.brightness || *b.last.brightness != st.brightness {
		if b.poster.Post(bus.NewBrightnessMessage(st.brightness)) {
			b.last.brightness = helpers.Float64Ptr(st.brightness)
		}
	}

	b.sendAnimations(st.animations)

	if !cmp.Equal(b.last.config, st.config) {
		if b.poster.Post(bus.NewConfigMessage(st.config)) {
			b.last.config = st.config
		}
	}

	b.sendTurns(b.pipeline.Turns(), false)
}

// Sends the full snapshot regardless of last-sent values. Must be called under lock.
func (b *Bridge) sendSnapshot() {
	if nil == b.poster {
		return
	}

	st := b.readState()
	msg := bus.NewInitMessage(st.config, st.mood, st.sensors, st.brightness, st.animations)
	if b.poster.Post(msg) {
		mood := st.mood
		b.last.mood = &mood
		b.last.sensors = st.sensors
		b.last.brightness = helpers.Float64Ptr(st.brightness)
		b.last.config = st.config
		b.last.animations = nil
		if !b.config.AutoBrightnessEnabled {
			b.last.animations = helpers.BoolPtr(st.animations)
		}
	}

	b.sendTurns(b.pipeline.Turns(), true)
}

// Sends mood. Must be called under lock.
func (b *Bridge) sendMood(mood enums.Mood, resetSleep bool) {
	if b.poster.Post(bus.NewMoodMessage(mood, resetSleep)) {
		b.last.mood = &mood
	}
}

// Sends every changed sensor field, everything if nothing was sent yet.
// Must be called under lock.
func (b *Bridge) sendSensors(s *common.SensorPayload) {
	always := nil == b.last.sensors
	if always {
		b.last.sensors = &common.SensorPayload{}
	}

	prev := b.last.sensors
	sent := b.last.sensors

	if always || !cmp.Equal(prev.Temperature, s.Temperature) {
		if b.poster.Post(bus.NewTemperatureMessage(s.Temperature)) {
			sent.Temperature = s.Temperature
		}
	}

	if always || !cmp.Equal(prev.WindSpeed, s.WindSpeed) {
		if b.poster.Post(bus.NewWindSpeedMessage(s.WindSpeed)) {
			sent.WindSpeed = s.WindSpeed
		}
	}

	if always || !cmp.Equal(prev.Precipitation, s.Precipitation) {
		if b.poster.Post(bus.NewPrecipitationMessage(s.Precipitation)) {
			sent.Precipitation = s.Precipitation
		}
	}

	if always || !cmp.Equal(prev.WeatherConditions, s.WeatherConditions) {
		if b.poster.Post(bus.NewWeatherConditionsMessage(s.WeatherConditions)) {
			sent.WeatherConditions = s.WeatherConditions.Copy()
		}
	}

	if always || !cmp.Equal(prev.Battery, s.Battery) {
		if b.poster.Post(bus.NewBatteryMessage(s.Battery)) {
			sent.Battery = s.Battery
		}
	}

	if always || !cmp.Equal(prev.BatteryState, s.BatteryState) {
		if b.poster.Post(bus.NewBatteryStateMessage(s.BatteryState)) {
			sent.BatteryState = s.BatteryState
		}
	}
}

// Sends animations toggle. Kiosk owns pausing while auto-brightness is on.
// Must be called under lock.
func (b *Bridge) sendAnimations(enabled bool) {
	if b.config.AutoBrightnessEnabled {
		b.last.animations = nil
		return
	}

	if nil != b.last.animations && *b.last.animations == enabled {
		return
	}

	if b.poster.Post(bus.NewAnimationsEnabledMessage(enabled)) {
		b.last.animations = helpers.BoolPtr(enabled)
	}
}

// Sends turn log unless it's identical to the last one.
// Must be called under lock.
func (b *Bridge) sendTurns(turns []*common.Turn, force bool) {
	if !force && b.last.turnsSent && cmp.Equal(b.last.turns, turns) {
		return
	}

	if nil != b.fanOut && !cmp.Equal(b.last.turns, turns) {
		select {
		case b.fanOut.ChannelInTurns() <- turns:
		default:
		}
	}

	if nil == b.poster {
		return
	}

	if b.poster.Post(bus.NewTurnsMessage(turns)) {
		b.last.turns = turns
		b.last.turnsSent = true
	}
}

// Applies debug selection from the platform entity or config.
// Must be called under lock.
func (b *Bridge) applyDebugSelection() {
	if nil == b.tracer {
		return
	}

	selection := b.config.DebugMode
	if st := b.platform.GetEntityState(platform.DebugEntityID); nil != st && !helpers.IsUnavailableState(st.State) {
		selection = st.State
	}

	selection = strings.ToLower(strings.TrimSpace(selection))
	if selection == b.debugSelection {
		return
	}

	b.debugSelection = selection
	b.tracer.SetSelection(selection)
	b.logger.Info("Debug selection changed", common.LogNamespaceToken, selection, common.LogSystemToken, logSystem)
}

// Re-evaluates mood once outcome override expires. Must be called under lock.
func (b *Bridge) scheduleOutcomeEnd() {
	left := b.satellite.OverrideLeft()
	if left <= 0 {
		return
	}

	b.outcomeTimer.Start(left+10*time.Millisecond, b.tick)
}

// Returns entities which trigger a tick.
// Must be called under lock.
func (b *Bridge) watched() []string {
	ids := b.resolver.Entities(b.config)
	ids = append(ids, platform.MoodEntityID, platform.BrightnessEntityID, platform.AnimationsEntityID,
		platform.DebugEntityID)
	if sat := strings.TrimSpace(b.config.AssistSatelliteEntity); b.config.AssistSatelliteEnabled && "" != sat {
		ids = append(ids, sat)
	}

	return ids
}

// Returns entity state or empty string.
func (b *Bridge) entityState(entityID string) string {
	st := b.platform.GetEntityState(entityID)
	if nil == st {
		return ""
	}

	return st.State
}

// Returns entity state or nil.
func (b *Bridge) entityValue(entityID string) interface{} {
	st := b.platform.GetEntityState(entityID)
	if nil == st {
		return nil
	}

	return st.State
}

// Writes into debug channel.
func (b *Bridge) trace(msg string, fields ...string) {
	if nil != b.tracer {
		b.tracer.Trace(traceNS, msg, fields...)
		return
	}

	b.logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
}

// Formats bool for logs.
func boolString(v bool) string {
	if v {
		return "true"
	}

	return "false"
}
