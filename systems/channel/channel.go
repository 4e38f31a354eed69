// Package channel contains origin-checked directional message channel.
package channel

import (
	"encoding/json"
	"sync"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/systems/bus"
)

const (
	logSystem = "channel"

	// NullOrigin is reported by sandboxed surfaces.
	NullOrigin = "null"
	// AnyOrigin allows delivery to any origin.
	AnyOrigin = "*"
)

// IWindow defines message target.
type IWindow interface {
	PostMessage(data []byte, targetOrigin string) error
}

// IEventSource defines window which delivers inbound events.
type IEventSource interface {
	AddListener(fn func(*Event)) func()
}

// Event describes inbound message.
type Event struct {
	Source IWindow
	Origin string
	Data   []byte
}

// ConstructPoster has data required for a new poster.
type ConstructPoster struct {
	Sender             string
	Recipient          string
	GetRecipientWindow func() IWindow
	GetTargetOrigin    func() string
	AllowNullOrigin    bool
	Logger             common.ILoggerProvider
	Tracer             common.IDebugTracer
}

// Poster sends messages to a single recipient window.
type Poster struct {
	sender          string
	recipient       string
	getWindow       func() IWindow
	getOrigin       func() string
	allowNullOrigin bool
	logger          common.ILoggerProvider
	tracer          common.IDebugTracer
}

// NewPoster constructs a new poster.
func NewPoster(ctor *ConstructPoster) *Poster {
	p := &Poster{
		sender:          ctor.Sender,
		recipient:       ctor.Recipient,
		getWindow:       ctor.GetRecipientWindow,
		getOrigin:       ctor.GetTargetOrigin,
		allowNullOrigin: ctor.AllowNullOrigin,
		logger:          ctor.Logger,
		tracer:          ctor.Tracer,
	}

	if nil == p.getWindow {
		p.getWindow = func() IWindow { return nil }
	}
	if nil == p.getOrigin {
		p.getOrigin = func() string { return "" }
	}

	return p
}

// Post sends message to the recipient window.
// Returns false if recipient or origin is unknown or delivery failed.
func (p *Poster) Post(msg bus.IMessage) bool {
	err := p.post(msg)
	if err != nil {
		trace(p.tracer, p.logger, "Message was not posted: "+err.Error(),
			common.LogMessageTypeToken, msg.GetType().String())
		return false
	}

	return true
}

// IsValidEvent checks whether event came from the recipient window and origin.
func (p *Poster) IsValidEvent(e *Event) bool {
	return isValidEvent(e, p.getWindow(), p.getOrigin(), p.allowNullOrigin)
}

// Sender returns poster identity.
func (p *Poster) Sender() string {
	return p.sender
}

// Posts message to the window.
func (p *Poster) post(msg bus.IMessage) error {
	w := p.getWindow()
	origin := p.getOrigin()
	if nil == w || "" == origin {
		return &ErrNoRecipient{}
	}

	msg.SetRoute(p.sender, p.recipient)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return w.PostMessage(data, origin)
}

// ConstructListener has data required for a new listener.
type ConstructListener struct {
	Recipient         string
	Window            IEventSource
	GetExpectedSource func() IWindow
	GetExpectedOrigin func() string
	AllowNullOrigin   bool
	Parser            bus.IMessageParserProvider
	OnMessage         func(bus.IMessage)
	Logger            common.ILoggerProvider
	Tracer            common.IDebugTracer
}

// Listener accepts trusted messages addressed to its recipient.
type Listener struct {
	sync.Mutex

	recipient       string
	window          IEventSource
	getSource       func() IWindow
	getOrigin       func() string
	allowNullOrigin bool
	parser          bus.IMessageParserProvider
	onMessage       func(bus.IMessage)
	logger          common.ILoggerProvider
	tracer          common.IDebugTracer
	remove          func()
}

// NewListener constructs a new listener.
func NewListener(ctor *ConstructListener) *Listener {
	l := &Listener{
		recipient:       ctor.Recipient,
		window:          ctor.Window,
		getSource:       ctor.GetExpectedSource,
		getOrigin:       ctor.GetExpectedOrigin,
		allowNullOrigin: ctor.AllowNullOrigin,
		parser:          ctor.Parser,
		onMessage:       ctor.OnMessage,
		logger:          ctor.Logger,
		tracer:          ctor.Tracer,
	}

	if nil == l.getSource {
		l.getSource = func() IWindow { return nil }
	}
	if nil == l.getOrigin {
		l.getOrigin = func() string { return "" }
	}

	return l
}

// Start subscribes to the window events.
func (l *Listener) Start() {
	l.Lock()
	defer l.Unlock()

	if nil != l.remove || nil == l.window {
		return
	}

	l.remove = l.window.AddListener(func(e *Event) { l.Handle(e) })
}

// Stop un-subscribes from the window events.
func (l *Listener) Stop() {
	l.Lock()
	remove := l.remove
	l.remove = nil
	l.Unlock()

	if nil != remove {
		remove()
	}
}

// Handle validates event and delivers parsed message.
// Returns true if message was delivered.
func (l *Listener) Handle(e *Event) bool {
	err := l.accept(e)
	if err != nil {
		origin := ""
		if nil != e {
			origin = e.Origin
		}
		trace(l.tracer, l.logger, "Dropped inbound message: "+err.Error(), common.LogOriginToken, origin)
		return false
	}

	msg := l.parser.Parse(e.Data)
	if nil == msg {
		return false
	}

	r := msg.GetRecipient()
	if "" != r && r != l.recipient && r != bus.RecipientAll {
		trace(l.tracer, l.logger, "Dropped message for another recipient",
			common.LogMessageTypeToken, msg.GetType().String())
		return false
	}

	if nil != l.onMessage {
		l.onMessage(msg)
	}

	return true
}

// Checks event before payload is touched.
func (l *Listener) accept(e *Event) error {
	if !isValidEvent(e, l.getSource(), l.getOrigin(), l.allowNullOrigin) {
		return &ErrUntrustedMessage{}
	}

	return nil
}

// Validates event source and origin.
func isValidEvent(e *Event, expected IWindow, origin string, allowNull bool) bool {
	if nil == e {
		return false
	}

	if nil != expected && e.Source != expected {
		return false
	}

	if "" != origin && e.Origin != origin {
		if !(allowNull && NullOrigin == e.Origin) {
			return false
		}
	}

	return true
}

// Writes into debug channel.
func trace(tracer common.IDebugTracer, logger common.ILoggerProvider, msg string, fields ...string) {
	if nil != tracer {
		tracer.Trace(logSystem, msg, fields...)
		return
	}

	if nil != logger {
		logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
	}
}
