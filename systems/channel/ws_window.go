package channel

import (
	"sync"

	"github.com/gorilla/websocket"
	"go-home.io/x/macs/plugins/common"
)

// WebSocketWindow represents remote surface connected over websocket.
// Origin is taken from the upgrade request, surfaces without it report "null".
type WebSocketWindow struct {
	sync.Mutex

	conn      *websocket.Conn
	origin    string
	logger    common.ILoggerProvider
	listeners []*windowListener
	lastID    int
	closed    bool
}

// NewWebSocketWindow constructs a new websocket window.
func NewWebSocketWindow(conn *websocket.Conn, origin string, logger common.ILoggerProvider) *WebSocketWindow {
	if "" == origin {
		origin = NullOrigin
	}

	return &WebSocketWindow{
		conn:   conn,
		origin: origin,
		logger: logger,
	}
}

// Origin returns remote surface origin.
func (w *WebSocketWindow) Origin() string {
	return w.origin
}

// PostMessage writes data into the socket.
// Messages for a different origin are silently discarded.
func (w *WebSocketWindow) PostMessage(data []byte, targetOrigin string) error {
	if AnyOrigin != targetOrigin && targetOrigin != w.origin {
		return nil
	}

	w.Lock()
	defer w.Unlock()

	if w.closed {
		return &ErrWindowClosed{}
	}

	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// AddListener registers inbound events listener.
func (w *WebSocketWindow) AddListener(fn func(*Event)) func() {
	w.Lock()
	defer w.Unlock()

	w.lastID++
	id := w.lastID
	w.listeners = append(w.listeners, &windowListener{id: id, fn: fn})

	return func() {
		w.Lock()
		defer w.Unlock()
		for i, v := range w.listeners {
			if v.id == id {
				w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// Run reads the socket until it's closed.
//noinspection GoUnhandledErrorResult
func (w *WebSocketWindow) Run() {
	defer w.Close()
	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			w.logger.Info("Closing surface WS connection", common.LogOriginToken, w.origin,
				common.LogSystemToken, logSystem)
			return
		}

		if websocket.TextMessage != mt {
			continue
		}

		w.Lock()
		listeners := make([]*windowListener, len(w.listeners))
		copy(listeners, w.listeners)
		w.Unlock()

		e := &Event{Source: w, Origin: w.origin, Data: data}
		for _, l := range listeners {
			l.fn(e)
		}
	}
}

// Close closes the socket.
func (w *WebSocketWindow) Close() {
	w.Lock()
	defer w.Unlock()

	if w.closed {
		return
	}

	w.closed = true
	w.conn.Close() // nolint: gosec, errcheck
}
