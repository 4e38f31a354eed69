package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go-home.io/x/macs/mocks"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/plugins/platform"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems/bus"
	"go-home.io/x/macs/systems/channel"
)

const (
	hostOrigin    = "http://ha.local:8123"
	surfaceOrigin = "http://ha.local:8123"
	satelliteID   = "assist_satellite.kitchen"
)

type bridgeSuite struct {
	suite.Suite

	settings fakeSettings
	platform fakePlatform
	bridge   *Bridge

	host     *channel.MemoryWindow
	surface  *channel.MemoryWindow
	listener *channel.Listener
	poster   *channel.Poster
	received chan bus.IMessage
}

type fakeSettings interface {
	providers.ISettingsProvider
	FireCron()
	CronJobs() int
}

type fakePlatform interface {
	platform.IPlatform
	SetState(entityID string, state string, attributes map[string]interface{})
	SetRPC(rpc mocks.FakePlatformRPC)
	Requests() []platform.RPCRequest
	Subscriptions() int
}

func (b *bridgeSuite) SetupTest() {
	b.settings = mocks.FakeNewSettings(nil)
	b.platform = mocks.FakeNewPlatform()
	b.received = make(chan bus.IMessage, 100)

	b.host = channel.NewMemoryWindow(hostOrigin)
	b.surface = channel.NewMemoryWindow(surfaceOrigin)

	b.listener = channel.NewListener(&channel.ConstructListener{
		Recipient:         bus.RecipientSurface,
		Window:            b.surface,
		GetExpectedSource: func() channel.IWindow { return b.host.From(b.surface) },
		GetExpectedOrigin: func() string { return hostOrigin },
		Parser:            bus.NewSurfaceMessageParser(mocks.FakeNewLogger(nil)),
		OnMessage:         func(m bus.IMessage) { b.received <- m },
		Logger:            mocks.FakeNewLogger(nil),
	})
	b.listener.Start()

	b.poster = channel.NewPoster(&channel.ConstructPoster{
		Sender:             bus.RecipientSurface,
		Recipient:          bus.RecipientHost,
		GetRecipientWindow: func() channel.IWindow { return b.host.From(b.surface) },
		GetTargetOrigin:    func() string { return hostOrigin },
		Logger:             mocks.FakeNewLogger(nil),
	})

	b.start()
}

func (b *bridgeSuite) TearDownTest() {
	b.bridge.Stop()
	b.listener.Stop()
	b.host.Close()
	b.surface.Close()
}

// Creates, starts and attaches a new bridge.
func (b *bridgeSuite) start() {
	b.bridge = NewBridge(&ConstructBridge{
		Settings:      b.settings,
		Platform:      b.platform,
		FetchDebounce: 5 * time.Millisecond,
		FetchDelays:   []time.Duration{0, 20 * time.Millisecond},
	})
	b.bridge.Start()
	b.bridge.Attach(b.surface.From(b.host), b.host, surfaceOrigin)
}

// Re-creates the bridge, e.g. after settings change.
func (b *bridgeSuite) restart() {
	b.bridge.Stop()
	b.drain()
	b.start()
}

// Waits until condition holds.
func (b *bridgeSuite) waitFor(fn func() bool) {
	for ii := 0; ii < 200; ii++ {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	b.Fail("condition was not met")
}

// Waits for the message of the given type, skipping others.
func (b *bridgeSuite) next(t enums.MessageType) bus.IMessage {
	timeout := time.After(time.Second)
	for {
		select {
		case m := <-b.received:
			if m.GetType() == t {
				return m
			}
		case <-timeout:
			b.FailNow("message was not received", t.String())
			return nil
		}
	}
}

// Collects everything received within a short window.
func (b *bridgeSuite) drain() []bus.IMessage {
	out := make([]bus.IMessage, 0)
	for {
		select {
		case m := <-b.received:
			out = append(out, m)
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func types(msgs []bus.IMessage) []enums.MessageType {
	out := make([]enums.MessageType, 0, len(msgs))
	for _, v := range msgs {
		out = append(out, v.GetType())
	}
	return out
}

// Tests snapshot sent on attach.
func (b *bridgeSuite) TestSnapshotOnAttach() {
	msgs := b.drain()
	require.Len(b.T(), msgs, 2)
	assert.Equal(b.T(), []enums.MessageType{enums.MsgInit, enums.MsgTurns}, types(msgs))

	init := msgs[0].(*bus.InitMessage)
	assert.Equal(b.T(), enums.MoodIdle, init.Mood)
	assert.Equal(b.T(), float64(100), init.Brightness)
	assert.True(b.T(), init.AnimationsEnabled)
	require.NotNil(b.T(), init.Config)
	require.NotNil(b.T(), init.Config.MaxTurns)
	assert.Equal(b.T(), 2, *init.Config.MaxTurns)
	require.NotNil(b.T(), init.Sensors)
	assert.Nil(b.T(), init.Sensors.Temperature)
	assert.True(b.T(), b.bridge.Loaded())
}

// Tests that unchanged state is not re-sent.
func (b *bridgeSuite) TestNoChanges() {
	b.drain()
	b.bridge.Tick()
	b.settings.FireCron()
	assert.Empty(b.T(), b.drain())
}

// Tests that only changed field is sent.
func (b *bridgeSuite) TestFieldGranularDiff() {
	b.drain()
	b.platform.SetState(platform.TemperatureEntityID, "40", nil)

	msgs := b.drain()
	require.Len(b.T(), msgs, 1)
	m, ok := msgs[0].(*bus.TemperatureMessage)
	require.True(b.T(), ok)
	require.NotNil(b.T(), m.Temperature)
	assert.Equal(b.T(), float64(40), *m.Temperature)

	b.platform.SetState(platform.TemperatureEntityID, "40", nil)
	assert.Empty(b.T(), b.drain())

	b.platform.SetState(platform.BrightnessEntityID, "35", nil)
	msgs = b.drain()
	require.Len(b.T(), msgs, 1)
	assert.Equal(b.T(), float64(35), msgs[0].(*bus.BrightnessMessage).Brightness)

	b.platform.SetState(platform.MoodEntityID, "Happy", nil)
	msgs = b.drain()
	require.Len(b.T(), msgs, 1)
	assert.Equal(b.T(), enums.MoodHappy, msgs[0].(*bus.MoodMessage).Mood)
}

// Tests that unrelated entities don't trigger anything.
func (b *bridgeSuite) TestUnwatchedEntity() {
	b.drain()
	b.platform.SetState("light.kitchen", "on", nil)
	assert.Empty(b.T(), b.drain())
}

// Tests that request_config always resends snapshot.
func (b *bridgeSuite) TestRequestConfig() {
	b.drain()
	for ii := 0; ii < 2; ii++ {
		assert.True(b.T(), b.poster.Post(bus.NewSignalMessage(enums.MsgRequestConfig)))
		msgs := b.drain()
		assert.Equal(b.T(), []enums.MessageType{enums.MsgInit, enums.MsgTurns}, types(msgs))
	}
}

// Tests that ready re-loads the surface.
func (b *bridgeSuite) TestReady() {
	b.drain()
	b.platform.SetState(platform.TemperatureEntityID, "10", nil)
	b.drain()

	b.poster.Post(bus.NewSignalMessage(enums.MsgReady))
	init := b.next(enums.MsgInit).(*bus.InitMessage)
	require.NotNil(b.T(), init.Sensors.Temperature)
	assert.Equal(b.T(), float64(10), *init.Sensors.Temperature)
}

// Tests kiosk chrome toggle.
func (b *bridgeSuite) TestToggleKiosk() {
	b.drain()
	assert.False(b.T(), b.bridge.KioskHidden())

	b.poster.Post(bus.NewSignalMessage(enums.MsgToggleKiosk))
	b.waitFor(b.bridge.KioskHidden)

	b.poster.Post(bus.NewSignalMessage(enums.MsgToggleKiosk))
	b.waitFor(func() bool { return !b.bridge.KioskHidden() })
}

// Tests that preview ignores kiosk toggle and forces auto-brightness off.
func (b *bridgeSuite) TestPreview() {
	b.settings.ServerSettings().Preview = true
	b.settings.CardConfig().AutoBrightnessEnabled = true
	b.restart()

	init := b.next(enums.MsgInit).(*bus.InitMessage)
	require.NotNil(b.T(), init.Config.AutoBrightnessEnabled)
	assert.False(b.T(), *init.Config.AutoBrightnessEnabled)
	assert.Equal(b.T(), float64(0), *init.Config.AutoBrightnessTimeoutMinutes)

	b.poster.Post(bus.NewSignalMessage(enums.MsgToggleKiosk))
	b.drain()
	assert.False(b.T(), b.bridge.KioskHidden())
}

// Tests animations toggle and its suppression under auto-brightness.
func (b *bridgeSuite) TestAnimations() {
	b.drain()
	b.platform.SetState(platform.AnimationsEntityID, "off", nil)
	msgs := b.drain()
	require.Len(b.T(), msgs, 1)
	assert.False(b.T(), msgs[0].(*bus.AnimationsEnabledMessage).Enabled)

	cfg := b.bridge.Config()
	cfg.AutoBrightnessEnabled = true
	b.bridge.SetConfig(cfg)
	msgs = b.drain()
	require.Len(b.T(), msgs, 1)
	c := msgs[0].(*bus.ConfigMessage)
	require.NotNil(b.T(), c.AutoBrightnessEnabled)
	assert.True(b.T(), *c.AutoBrightnessEnabled)

	b.platform.SetState(platform.AnimationsEntityID, "on", nil)
	assert.Empty(b.T(), b.drain())
}

// Tests satellite wake word and outcome mood.
func (b *bridgeSuite) TestSatellite() {
	b.drain()
	cfg := b.bridge.Config()
	cfg.AssistSatelliteEnabled = true
	cfg.AssistSatelliteEntity = satelliteID
	cfg.AssistOutcomeDurationMs = 50
	b.bridge.SetConfig(cfg)
	b.platform.SetState(satelliteID, "idle", nil)
	b.drain()

	b.platform.SetState(satelliteID, "listening", nil)
	m := b.next(enums.MsgMood).(*bus.MoodMessage)
	assert.Equal(b.T(), enums.MoodListening, m.Mood)
	assert.True(b.T(), m.ResetSleep)

	b.platform.SetState(satelliteID, "processing", nil)
	m = b.next(enums.MsgMood).(*bus.MoodMessage)
	assert.Equal(b.T(), enums.MoodThinking, m.Mood)
	assert.False(b.T(), m.ResetSleep)

	b.platform.SetState(satelliteID, "idle", nil)
	m = b.next(enums.MsgMood).(*bus.MoodMessage)
	assert.Equal(b.T(), enums.MoodHappy, m.Mood)

	m = b.next(enums.MsgMood).(*bus.MoodMessage)
	assert.Equal(b.T(), enums.MoodIdle, m.Mood)
}

// Tests turn log polling.
func (b *bridgeSuite) TestTurns() {
	b.platform.SetRPC(func(r platform.RPCRequest) (json.RawMessage, error) {
		switch r.Type() {
		case platform.RPCPipelineDebugList:
			return json.RawMessage(`{"pipeline_runs":[{"pipeline_run_id":"old","timestamp":"1"},` +
				`{"pipeline_run_id":"run1","timestamp":"2"}]}`), nil
		case platform.RPCPipelineDebugGet:
			return json.RawMessage(`{"events":[` +
				`{"type":"run-start","timestamp":"2024-01-01T10:00:00"},` +
				`{"type":"stt-end","data":{"stt_output":{"text":"lights on"}}},` +
				`{"type":"intent-end","data":{"intent_output":{"response":{"speech":{"plain":{"speech":"Done"}}}}}}` +
				`]}`), nil
		}
		return json.RawMessage("{}"), nil
	})

	cfg := b.bridge.Config()
	cfg.AssistPipelineEnabled = true
	cfg.AssistPipelineEntity = " pipe1 "
	b.bridge.SetConfig(cfg)
	b.drain()

	b.platform.SetState(platform.ConversationEntityID, "2024-01-01T10:00:00", nil)
	m := b.next(enums.MsgTurns).(*bus.TurnsMessage)
	require.Len(b.T(), m.Turns, 1)
	assert.Equal(b.T(), "run1", m.Turns[0].RunID)
	assert.Equal(b.T(), "lights on", m.Turns[0].Heard)
	assert.Equal(b.T(), "Done", m.Turns[0].Reply)

	assert.NotContains(b.T(), types(b.drain()), enums.MsgTurns)
	assert.Len(b.T(), b.bridge.Turns(), 1)

	gets := 0
	for _, v := range b.platform.Requests() {
		if platform.RPCPipelineDebugGet == v.Type() {
			gets++
			assert.Equal(b.T(), "pipe1", v["pipeline_id"])
			assert.Equal(b.T(), "run1", v["pipeline_run_id"])
		}
	}
	assert.Equal(b.T(), 2, gets)
}

// Tests that unchanged newest run is not fetched again.
func (b *bridgeSuite) TestTurnsSameRun() {
	b.platform.SetRPC(func(r platform.RPCRequest) (json.RawMessage, error) {
		if platform.RPCPipelineDebugList == r.Type() {
			return json.RawMessage(`{"pipeline_runs":[{"pipeline_run_id":"run1","timestamp":"2"}]}`), nil
		}
		return json.RawMessage(`{"events":[{"type":"intent-start","data":{"intent_input":"hi"}}]}`), nil
	})

	cfg := b.bridge.Config()
	cfg.AssistPipelineEnabled = true
	cfg.AssistPipelineEntity = "pipe1"
	b.bridge.SetConfig(cfg)

	b.platform.SetState(platform.ConversationEntityID, "a", nil)
	b.next(enums.MsgTurns)
	b.drain()
	before := len(b.platform.Requests())

	b.platform.SetState(platform.ConversationEntityID, "b", nil)
	b.drain()
	assert.Equal(b.T(), before+1, len(b.platform.Requests()))
}

// Tests periodic resync registration.
func (b *bridgeSuite) TestCron() {
	assert.Equal(b.T(), 1, b.settings.CronJobs())
	b.bridge.Stop()
	assert.Equal(b.T(), 0, b.settings.CronJobs())
	assert.Equal(b.T(), 0, b.platform.Subscriptions())
	assert.False(b.T(), b.bridge.Loaded())
}

// Tests detach of the stale window.
func (b *bridgeSuite) TestDetach() {
	b.drain()
	b.bridge.Detach(b.host.From(b.surface))
	assert.True(b.T(), b.bridge.Loaded())

	b.bridge.Detach(b.surface.From(b.host))
	assert.False(b.T(), b.bridge.Loaded())

	b.platform.SetState(platform.TemperatureEntityID, "40", nil)
	assert.Empty(b.T(), b.drain())
}

// Tests host bridge.
func TestBridge(t *testing.T) {
	suite.Run(t, new(bridgeSuite))
}

// Tests that bridge releases all goroutines.
func TestBridgeStop(t *testing.T) {
	defer leaktest.Check(t)()

	settings := mocks.FakeNewSettings(providers.NewCardConfig())
	settings.CardConfig().AssistPipelineEnabled = true
	settings.CardConfig().AssistPipelineEntity = "pipe1"
	p := mocks.FakeNewPlatform()
	b := NewBridge(&ConstructBridge{
		Settings:      settings,
		Platform:      p,
		FetchDebounce: time.Millisecond,
	})
	b.Start()
	p.SetState(platform.ConversationEntityID, "a", nil)
	p.SetState(platform.ConversationEntityID, "b", nil)
	time.Sleep(10 * time.Millisecond)
	b.Stop()
	assert.Equal(t, 0, p.Subscriptions())
}

// Tests turn extraction from pipeline events.
func TestExtract(t *testing.T) {
	tr := NewPipelineTracker(&ConstructPipelineTracker{
		Platform: mocks.FakeNewPlatform(),
		Logger:   mocks.FakeNewLogger(nil),
	})
	defer tr.Dispose()

	events := []json.RawMessage{
		json.RawMessage(`{"type":"run-start","timestamp":"2024-01-01T10:00:00"}`),
		json.RawMessage(`{"type":"intent-start","data":{"intent_input":"typed text"}}`),
		json.RawMessage(`{"type":"intent-end","data":{"intent_output":{"response":{"speech":{"plain":{"speech":"Sure"}}}}}}`),
	}
	turn := tr.Extract(events)
	assert.Equal(t, "typed text", turn.Heard)
	assert.Equal(t, "Sure", turn.Reply)
	assert.Equal(t, "2024-01-01T10:00:00", turn.TS)
	assert.Equal(t, "", turn.Error)

	events = []json.RawMessage{
		json.RawMessage(`{"type":"stt-end","data":{"stt_output":{"text":"spoken"}}}`),
		json.RawMessage(`{"type":"intent-start","data":{"intent_input":"ignored"}}`),
		json.RawMessage(`{"type":"error","data":{"code":"intent-failed","message":"No intent"}}`),
	}
	turn = tr.Extract(events)
	assert.Equal(t, "spoken", turn.Heard)
	assert.Equal(t, "intent-failed: No intent", turn.Error)

	turn = tr.Extract(nil)
	assert.Equal(t, "", turn.Heard)
}

// Tests that pipeline tracker coalesces triggers.
func TestPipelineDebounce(t *testing.T) {
	defer leaktest.Check(t)()

	p := mocks.FakeNewPlatform()
	tr := NewPipelineTracker(&ConstructPipelineTracker{
		Platform: p,
		Logger:   mocks.FakeNewLogger(nil),
		Debounce: 20 * time.Millisecond,
		Delays:   []time.Duration{0},
	})

	cfg := providers.NewCardConfig()
	tr.TriggerFetchNewest()
	assert.False(t, tr.Enabled())

	cfg.AssistPipelineEnabled = true
	cfg.AssistPipelineEntity = "pipe1"
	tr.SetConfig(cfg)
	assert.True(t, tr.Enabled())
	assert.Equal(t, 1, p.Subscriptions())

	for ii := 0; ii < 5; ii++ {
		tr.TriggerFetchNewest()
	}
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, p.Requests(), 1)

	cfg.AssistPipelineEnabled = false
	tr.SetConfig(cfg)
	assert.Equal(t, 0, p.Subscriptions())

	tr.Dispose()
}
