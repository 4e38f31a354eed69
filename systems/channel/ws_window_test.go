package channel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-home.io/x/macs/mocks"
)

// Tests websocket window in both directions.
//noinspection GoUnhandledErrorResult
func TestWebSocketWindow(t *testing.T) {
	events := make(chan *Event, 1)
	windows := make(chan *WebSocketWindow, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		win := NewWebSocketWindow(c, r.Header.Get("Origin"), mocks.FakeNewLogger(nil))
		win.AddListener(func(e *Event) { events <- e })
		windows <- win
		win.Run()
	}))
	defer ts.Close()

	header := http.Header{}
	header.Set("Origin", "http://display.local")
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	var win *WebSocketWindow
	select {
	case win = <-windows:
	case <-time.After(time.Second):
		require.Fail(t, "no connection")
	}
	assert.Equal(t, "http://display.local", win.Origin())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"macs:ready"}`)))
	select {
	case e := <-events:
		assert.Equal(t, "http://display.local", e.Origin)
		assert.True(t, e.Source == IWindow(win))
		assert.Equal(t, `{"type":"macs:ready"}`, string(e.Data))
	case <-time.After(time.Second):
		require.Fail(t, "no event")
	}

	require.NoError(t, win.PostMessage([]byte("dropped"), "http://other.local"))
	require.NoError(t, win.PostMessage([]byte("hello"), "http://display.local"))
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	win.Close()
	assert.IsType(t, &ErrWindowClosed{}, win.PostMessage([]byte("late"), AnyOrigin))
}

// Tests missing origin.
func TestWebSocketWindowNullOrigin(t *testing.T) {
	w := NewWebSocketWindow(nil, "", mocks.FakeNewLogger(nil))
	assert.Equal(t, NullOrigin, w.Origin())
}
