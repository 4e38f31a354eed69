package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go-home.io/x/macs/mocks"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/systems/channel"
)

type receivedFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsSuite struct {
	suite.Suite

	runtime *fakeRuntime
	fanOut  providers.IFanOutProvider

	ts *httptest.Server
	ws *websocket.Conn
}

//noinspection GoUnhandledErrorResult
func (w *wsSuite) SetupTest() {
	w.runtime = &fakeRuntime{}
	srv, _, f := newTestServer(mocks.FakeNewSettings(nil), w.runtime)
	w.fanOut = f
	w.ts = httptest.NewServer(srv.Handler())

	u := "ws" + strings.TrimPrefix(w.ts.URL, "http") + "/api/v1/ws"
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(w.T(), err, "dial")
	w.ws = ws

	assert.Equal(w.T(), frameTypePresentation, w.read().Type)
	assert.Equal(w.T(), frameTypeTurns, w.read().Type)
}

//noinspection GoUnhandledErrorResult
func (w *wsSuite) TearDownTest() {
	if nil != w.ws {
		w.ws.Close()
	}
	if nil != w.ts {
		w.ts.Close()
	}
	w.fanOut.Stop()
}

//noinspection GoUnhandledErrorResult
func (w *wsSuite) read() *receivedFrame {
	w.ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	f := &receivedFrame{}
	require.NoError(w.T(), w.ws.ReadJSON(f), "read")
	return f
}

func (w *wsSuite) waitInputs(count int) []string {
	for ii := 0; ii < 200; ii++ {
		if len(w.runtime.recorded()) >= count {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	return w.runtime.recorded()
}

// Tests ping.
//noinspection GoUnhandledErrorResult
func (w *wsSuite) TestPing() {
	w.ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	w.ws.WriteMessage(websocket.TextMessage, []byte("ping"))
	wt, msg, err := w.ws.ReadMessage()
	require.NoError(w.T(), err, "ping")
	assert.Equal(w.T(), websocket.TextMessage, wt, "ping type")
	assert.Equal(w.T(), "pong", string(msg), "pong response")
}

// Tests presentation and turns fan-out.
func (w *wsSuite) TestFrames() {
	w.fanOut.ChannelInPresentation() <- &common.Presentation{Mood: enums.MoodSleeping}
	f := w.read()
	require.Equal(w.T(), frameTypePresentation, f.Type)
	p := &common.Presentation{}
	require.NoError(w.T(), json.Unmarshal(f.Data, p))
	assert.Equal(w.T(), enums.MoodSleeping, p.Mood)

	w.fanOut.ChannelInTurns() <- []*common.Turn{{RunID: "2", Heard: "lights on"}}
	f = w.read()
	require.Equal(w.T(), frameTypeTurns, f.Type)
	turns := make([]*common.Turn, 0)
	require.NoError(w.T(), json.Unmarshal(f.Data, &turns))
	require.Len(w.T(), turns, 1)
	assert.Equal(w.T(), "lights on", turns[0].Heard)
}

// Tests display input.
//noinspection GoUnhandledErrorResult
func (w *wsSuite) TestInput() {
	w.ws.WriteMessage(websocket.TextMessage, []byte("not json"))
	w.ws.WriteJSON(&wsInput{Event: "wave"})
	w.ws.WriteJSON(&wsInput{Event: inputPress})
	w.ws.WriteJSON(&wsInput{Event: inputRelease})
	w.ws.WriteJSON(&wsInput{Event: inputActivity})
	w.ws.WriteJSON(&wsInput{Event: inputResize, Width: 800, Height: 480})

	assert.Equal(w.T(), []string{inputPress, inputRelease, inputActivity, inputResize}, w.waitInputs(4))
	w.runtime.Lock()
	assert.Equal(w.T(), float64(800), w.runtime.width)
	assert.Equal(w.T(), float64(480), w.runtime.height)
	w.runtime.Unlock()
}

// Tests that closed fan-out drops displays.
func (w *wsSuite) TestFanOutStop() {
	w.fanOut.Stop()
	w.ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, _, err := w.ws.ReadMessage()
	assert.Error(w.T(), err)
}

// Tests display websocket.
func TestWSSuite(t *testing.T) {
	suite.Run(t, new(wsSuite))
}

// Tests remote surface websocket.
//noinspection GoUnhandledErrorResult
func TestSurfaceWS(t *testing.T) {
	settings := mocks.FakeNewSettings(nil)
	settings.ServerSettings().RemoteSurface = true
	origin := settings.ServerSettings().SurfaceOrigin

	srv, b, f := newTestServer(settings, nil)
	defer f.Stop()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + routeSurface
	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{"http://evil.local"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{origin}})
	require.NoError(t, err)

	for ii := 0; ii < 200 && nil == b.attached(); ii++ {
		time.Sleep(5 * time.Millisecond)
	}
	window := b.attached()
	require.NotNil(t, window)
	b.Lock()
	assert.Equal(t, origin, b.origin)
	assert.Equal(t, window, b.events)
	b.Unlock()

	wsWindow, ok := window.(*channel.WebSocketWindow)
	require.True(t, ok)
	assert.Equal(t, origin, wsWindow.Origin())

	events := make(chan *channel.Event, 1)
	wsWindow.AddListener(func(e *channel.Event) { events <- e })

	require.NoError(t, window.PostMessage([]byte(`{"type":"macs:ready"}`), origin))
	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"macs:ready"}`, string(data))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"macs:request_config"}`)))
	select {
	case e := <-events:
		assert.Equal(t, origin, e.Origin)
		assert.Equal(t, window, e.Source)
	case <-time.After(time.Second):
		t.Fatal("event was not received")
	}

	ws.Close()
	for ii := 0; ii < 200 && 0 == b.detachCount(); ii++ {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, b.detachCount())
}

// Tests remote surface on a sandboxed page without origin.
func TestSurfaceWSNullOrigin(t *testing.T) {
	settings := mocks.FakeNewSettings(nil)
	settings.ServerSettings().RemoteSurface = true

	srv, b, f := newTestServer(settings, nil)
	defer f.Stop()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + routeSurface
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, b.attached())

	settings.ServerSettings().AllowNullOrigin = true
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer ws.Close() // nolint: errcheck

	for ii := 0; ii < 200 && nil == b.attached(); ii++ {
		time.Sleep(5 * time.Millisecond)
	}
	window := b.attached()
	require.NotNil(t, window)
	b.Lock()
	assert.Equal(t, channel.NullOrigin, b.origin)
	b.Unlock()

	require.NoError(t, window.PostMessage([]byte(`{"type":"macs:init"}`), channel.NullOrigin))
	ws.SetReadDeadline(time.Now().Add(1 * time.Second)) // nolint: errcheck
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"macs:init"}`, string(data))
}
