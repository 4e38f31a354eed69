//+build !release

package mocks

import (
	"sync"
)

// Fake logger
type fakeLogger struct {
	sync.Mutex
	callback func(string)
	messages []string
}

// Prints debug level message.
func (p *fakeLogger) Debug(msg string, fields ...string) {
	p.record(msg)
}

// Prints info level message.
func (p *fakeLogger) Info(msg string, fields ...string) {
	p.record(msg)
}

// Prints warning level message.
func (p *fakeLogger) Warn(msg string, fields ...string) {
	p.record(msg)
}

// Prints error level message.
func (p *fakeLogger) Error(msg string, err error, fields ...string) {
	p.record(msg)
}

// Prints fatal level message and exits.
func (p *fakeLogger) Fatal(msg string, err error, fields ...string) {
	p.record(msg)
}

// Flush does nothing.
func (p *fakeLogger) Flush() {
}

// Messages returns everything logged so far.
func (p *fakeLogger) Messages() []string {
	p.Lock()
	defer p.Unlock()

	out := make([]string, len(p.messages))
	copy(out, p.messages)
	return out
}

func (p *fakeLogger) record(msg string) {
	p.Lock()
	p.messages = append(p.messages, msg)
	p.Unlock()

	if p.callback != nil {
		p.callback(msg)
	}
}

// Fake debug tracer.
type fakeTracer struct {
	sync.Mutex
	lines []string
}

// Trace records the line.
func (t *fakeTracer) Trace(namespace string, msg string, fields ...string) {
	t.Lock()
	defer t.Unlock()
	t.lines = append(t.lines, namespace+": "+msg)
}

// Enabled is always true.
func (t *fakeTracer) Enabled(string) bool {
	return true
}

// SetSelection does nothing.
func (t *fakeTracer) SetSelection(string) {
}

// Backlog returns recorded lines.
func (t *fakeTracer) Backlog() []string {
	t.Lock()
	defer t.Unlock()

	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// FakeNewLogger creates a fake logger provider.
func FakeNewLogger(callback func(string)) *fakeLogger {
	return &fakeLogger{
		callback: callback,
	}
}

// FakeNewTracer creates a fake debug tracer.
func FakeNewTracer() *fakeTracer {
	return &fakeTracer{}
}
