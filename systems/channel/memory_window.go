package channel

import (
	"sync"
)

type windowListener struct {
	id int
	fn func(*Event)
}

// MemoryWindow is an in-process browsing context.
// Events are dispatched asynchronously in posting order.
type MemoryWindow struct {
	sync.Mutex

	origin    string
	listeners []*windowListener
	lastID    int
	handles   map[*MemoryWindow]*windowHandle
	pending   []*Event
	notify    chan struct{}
	done      chan struct{}
	closed    bool
	wg        sync.WaitGroup
}

// NewMemoryWindow constructs a new window with the given origin.
func NewMemoryWindow(origin string) *MemoryWindow {
	w := &MemoryWindow{
		origin:  origin,
		handles: make(map[*MemoryWindow]*windowHandle),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.dispatch()
	return w
}

// Origin returns window origin.
func (w *MemoryWindow) Origin() string {
	return w.origin
}

// AddListener registers inbound events listener.
func (w *MemoryWindow) AddListener(fn func(*Event)) func() {
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

// From returns handle used by source window to post into this window.
// The same handle is returned for the same source.
func (w *MemoryWindow) From(source *MemoryWindow) IWindow {
	w.Lock()
	defer w.Unlock()

	h, ok := w.handles[source]
	if !ok {
		h = &windowHandle{target: w, source: source}
		w.handles[source] = h
	}

	return h
}

// Close stops events dispatching.
func (w *MemoryWindow) Close() {
	w.Lock()
	if w.closed {
		w.Unlock()
		return
	}
	w.closed = true
	w.pending = nil
	w.Unlock()

	close(w.done)
	w.wg.Wait()
}

// Queues event for dispatching.
func (w *MemoryWindow) deliver(e *Event) error {
	w.Lock()
	defer w.Unlock()

	if w.closed {
		return &ErrWindowClosed{}
	}

	w.pending = append(w.pending, e)
	select {
	case w.notify <- struct{}{}:
	default:
	}

	return nil
}

// Dispatches queued events to listeners.
func (w *MemoryWindow) dispatch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case <-w.notify:
		}

		w.Lock()
		events := w.pending
		w.pending = nil
		listeners := make([]*windowListener, len(w.listeners))
		copy(listeners, w.listeners)
		w.Unlock()

		for _, e := range events {
			for _, l := range listeners {
				l.fn(e)
			}
		}
	}
}

// Handle of the target window as seen from the source window.
type windowHandle struct {
	target *MemoryWindow
	source *MemoryWindow
}

// PostMessage queues data into target window.
// Messages for a different origin are silently discarded.
func (h *windowHandle) PostMessage(data []byte, targetOrigin string) error {
	if AnyOrigin != targetOrigin && targetOrigin != h.target.origin {
		return nil
	}

	d := make([]byte, len(data))
	copy(d, data)

	return h.target.deliver(&Event{
		Source: h.source.From(h.target),
		Origin: h.source.origin,
		Data:   d,
	})
}
