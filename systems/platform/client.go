// Package platform contains Home Assistant websocket client.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/platform"
	"go-home.io/x/macs/providers"
)

const (
	logSystem = "platform"
	traceNS   = "platform"

	msgAuthRequired = "auth_required"
	msgAuth         = "auth"
	msgAuthOK       = "auth_ok"
	msgAuthInvalid  = "auth_invalid"
	msgResult       = "result"
	msgEvent        = "event"
	msgPong         = "pong"

	rpcGetStates       = "get_states"
	rpcSubscribeEvents = "subscribe_events"
	eventStateChanged  = "state_changed"
)

// Inbound platform message.
type inbound struct {
	ID      int64           `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	Event   *eventEnvelope  `json:"event"`
	Message string          `json:"message"`
}

type rpcError struct {
	Code    interface{} `json:"code"`
	Message string      `json:"message"`
}

type eventEnvelope struct {
	EventType string                     `json:"event_type"`
	Data      platform.StateChangedEvent `json:"data"`
}

type rpcResult struct {
	data json.RawMessage
	err  error
}

type subscription struct {
	entityID string
	callback func(*platform.StateChangedEvent)
}

// ConstructClient has data required for a new platform client.
type ConstructClient struct {
	Settings    *providers.PlatformSettings
	Logger      common.ILoggerProvider
	Tracer      common.IDebugTracer
	Dialer      *websocket.Dialer
	OnConnected func()
}

// Client keeps authenticated websocket session with the platform.
// Entity states are loaded on connect and kept up to date by state_changed events.
type Client struct {
	sync.Mutex
	writeLock sync.Mutex

	url            string
	token          string
	reconnectDelay time.Duration
	rpcTimeout     time.Duration
	dialer         *websocket.Dialer
	logger         common.ILoggerProvider
	tracer         common.IDebugTracer
	onConnected    func()

	states  *cache.Cache
	conn    *websocket.Conn
	lastID  int64
	pending map[int64]func(*inbound, error)
	subs    map[int]*subscription
	lastSub int

	stop    chan struct{}
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewClient constructs a new platform client.
func NewClient(ctor *ConstructClient) *Client {
	c := &Client{
		url:            ctor.Settings.URL,
		token:          ctor.Settings.Token,
		reconnectDelay: time.Duration(ctor.Settings.ReconnectDelaySec) * time.Second,
		rpcTimeout:     time.Duration(ctor.Settings.RPCTimeoutSec) * time.Second,
		dialer:         ctor.Dialer,
		logger:         ctor.Logger,
		tracer:         ctor.Tracer,
		onConnected:    ctor.OnConnected,
		states:         cache.New(cache.NoExpiration, 0),
		pending:        make(map[int64]func(*inbound, error)),
		subs:           make(map[int]*subscription),
		stop:           make(chan struct{}),
	}

	if nil == c.dialer {
		c.dialer = websocket.DefaultDialer
	}
	if c.reconnectDelay <= 0 {
		c.reconnectDelay = 5 * time.Second
	}
	if c.rpcTimeout <= 0 {
		c.rpcTimeout = 10 * time.Second
	}

	return c
}

// Start connects to the platform and keeps reconnecting until stopped.
func (c *Client) Start() {
	c.Lock()
	defer c.Unlock()

	if c.started || c.stopped {
		return
	}

	c.started = true
	c.wg.Add(1)
	go c.connectionCycle()
}

// Stop closes the session and waits for the background routines.
func (c *Client) Stop() {
	c.Lock()
	if c.stopped {
		c.Unlock()
		return
	}
	c.stopped = true
	close(c.stop)
	conn := c.conn
	c.Unlock()

	if nil != conn {
		conn.Close() // nolint: errcheck
	}

	c.wg.Wait()
}

// Connected returns whether authenticated session is active.
func (c *Client) Connected() bool {
	c.Lock()
	defer c.Unlock()

	return nil != c.conn
}

// GetEntityState returns cached entity state or nil.
func (c *Client) GetEntityState(entityID string) *platform.EntityState {
	v, ok := c.states.Get(entityID)
	if !ok {
		return nil
	}

	s := *(v.(*platform.EntityState))
	return &s
}

// SubscribeStateChanged registers state_changed callback for the entity.
// Empty entity id receives every event.
func (c *Client) SubscribeStateChanged(entityID string, callback func(*platform.StateChangedEvent)) func() {
	c.Lock()
	defer c.Unlock()

	c.lastSub++
	id := c.lastSub
	c.subs[id] = &subscription{entityID: entityID, callback: callback}

	return func() {
		c.Lock()
		defer c.Unlock()
		delete(c.subs, id)
	}
}

// CallRPC sends request and waits for its result.
func (c *Client) CallRPC(ctx context.Context, request platform.RPCRequest) (json.RawMessage, error) {
	done := make(chan *rpcResult, 1)
	id, err := c.send(request, func(msg *inbound, err error) {
		done <- resultOf(request.Type(), msg, err)
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		c.Lock()
		delete(c.pending, id)
		c.Unlock()
		return nil, errors.Wrap(ctx.Err(), "rpc "+request.Type())
	}
}

// Reconnects after each lost session.
func (c *Client) connectionCycle() {
	defer c.wg.Done()

	for {
		err := c.session()
		if c.isStopped() {
			return
		}

		if err != nil {
			c.logger.Error("Platform session failed", err,
				common.LogURLToken, c.url, common.LogSystemToken, logSystem)
		} else {
			c.logger.Warn("Platform session closed", common.LogURLToken, c.url, common.LogSystemToken, logSystem)
		}

		select {
		case <-c.stop:
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// Runs single session until the socket is closed.
func (c *Client) session() error {
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return errors.Wrap(err, "dial failed")
	}

	err = c.authenticate(conn)
	if err != nil {
		conn.Close() // nolint: errcheck
		return err
	}

	c.Lock()
	if c.stopped {
		c.Unlock()
		conn.Close() // nolint: errcheck
		return nil
	}
	c.conn = conn
	c.Unlock()

	c.logger.Info("Connected to the platform", common.LogURLToken, c.url, common.LogSystemToken, logSystem)
	c.bootstrap()

	err = c.readCycle(conn)

	c.Lock()
	c.conn = nil
	pending := c.pending
	c.pending = make(map[int64]func(*inbound, error))
	c.Unlock()

	conn.Close() // nolint: errcheck
	for _, fn := range pending {
		fn(nil, &ErrNotConnected{})
	}

	return err
}

// Performs auth handshake.
func (c *Client) authenticate(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(c.rpcTimeout)) // nolint: errcheck
	defer conn.SetReadDeadline(time.Time{})            // nolint: errcheck

	msg, err := readMessage(conn)
	if err != nil {
		return errors.Wrap(err, "auth read failed")
	}

	if msgAuthOK == msg.Type {
		return nil
	}

	if msgAuthRequired != msg.Type {
		return &ErrUnexpectedMessage{Type: msg.Type}
	}

	err = conn.WriteJSON(map[string]string{"type": msgAuth, "access_token": c.token})
	if err != nil {
		return errors.Wrap(err, "auth write failed")
	}

	msg, err = readMessage(conn)
	if err != nil {
		return errors.Wrap(err, "auth read failed")
	}

	switch msg.Type {
	case msgAuthOK:
		return nil
	case msgAuthInvalid:
		return &ErrAuthFailed{Message: msg.Message}
	}

	return &ErrUnexpectedMessage{Type: msg.Type}
}

// Loads states and subscribes to changes.
func (c *Client) bootstrap() {
	_, err := c.send(platform.NewRPCRequest(rpcSubscribeEvents, map[string]interface{}{
		"event_type": eventStateChanged,
	}), func(msg *inbound, err error) {
		if r := resultOf(rpcSubscribeEvents, msg, err); nil != r.err {
			c.logger.Error("Failed to subscribe to state changes", r.err, common.LogSystemToken, logSystem)
		}
	})
	if err != nil {
		c.logger.Error("Failed to subscribe to state changes", err, common.LogSystemToken, logSystem)
	}

	_, err = c.send(platform.NewRPCRequest(rpcGetStates, nil), c.loadStates)
	if err != nil {
		c.logger.Error("Failed to load platform states", err, common.LogSystemToken, logSystem)
	}
}

// Replaces cached states with get_states result.
func (c *Client) loadStates(msg *inbound, err error) {
	r := resultOf(rpcGetStates, msg, err)
	if nil != r.err {
		c.logger.Error("Failed to load platform states", r.err, common.LogSystemToken, logSystem)
		return
	}

	states := make([]*platform.EntityState, 0)
	err = json.Unmarshal(r.data, &states)
	if err != nil {
		c.logger.Error("Failed to parse platform states", err, common.LogSystemToken, logSystem)
		return
	}

	c.states.Flush()
	for _, s := range states {
		if nil != s && "" != s.EntityID {
			c.states.Set(s.EntityID, s, cache.NoExpiration)
		}
	}

	c.trace(fmt.Sprintf("Loaded %d states", len(states)))
	if nil == c.onConnected {
		return
	}

	c.Lock()
	defer c.Unlock()
	if c.stopped {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.onConnected()
	}()
}

// Reads socket until it's closed.
func (c *Client) readCycle(conn *websocket.Conn) error {
	for {
		msg, err := readMessage(conn)
		if err != nil {
			if c.isStopped() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return errors.Wrap(err, "read failed")
		}

		switch msg.Type {
		case msgResult:
			c.Lock()
			fn, ok := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			c.Unlock()

			if ok {
				fn(msg, nil)
			}
		case msgEvent:
			if nil != msg.Event && eventStateChanged == msg.Event.EventType {
				c.stateChanged(&msg.Event.Data)
			}
		case msgPong:
		default:
			c.trace("Unknown message", common.LogMessageTypeToken, msg.Type)
		}
	}
}

// Updates cache and notifies subscribers.
func (c *Client) stateChanged(e *platform.StateChangedEvent) {
	if "" == e.EntityID {
		return
	}

	if nil == e.NewState {
		c.states.Delete(e.EntityID)
	} else {
		c.states.Set(e.EntityID, e.NewState, cache.NoExpiration)
	}

	c.Lock()
	callbacks := make([]func(*platform.StateChangedEvent), 0)
	for _, v := range c.subs {
		if "" == v.entityID || v.entityID == e.EntityID {
			callbacks = append(callbacks, v.callback)
		}
	}
	c.Unlock()

	c.trace("State changed", common.LogEntityToken, e.EntityID)
	for _, fn := range callbacks {
		fn(e)
	}
}

// Writes request with a new id. Handler is invoked once with the result.
func (c *Client) send(request platform.RPCRequest, handler func(*inbound, error)) (int64, error) {
	c.Lock()
	conn := c.conn
	if nil == conn {
		c.Unlock()
		return 0, &ErrNotConnected{}
	}
	c.lastID++
	id := c.lastID
	c.pending[id] = handler
	c.Unlock()

	msg := make(map[string]interface{}, len(request)+1)
	for k, v := range request {
		msg[k] = v
	}
	msg["id"] = id

	c.writeLock.Lock()
	err := conn.WriteJSON(msg)
	c.writeLock.Unlock()

	if err != nil {
		c.Lock()
		delete(c.pending, id)
		c.Unlock()
		return 0, errors.Wrap(err, "write failed")
	}

	return id, nil
}

func (c *Client) isStopped() bool {
	c.Lock()
	defer c.Unlock()

	return c.stopped
}

// Writes into debug channel.
func (c *Client) trace(msg string, fields ...string) {
	if nil != c.tracer {
		c.tracer.Trace(traceNS, msg, fields...)
		return
	}

	c.logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
}

// Reads and decodes single message.
func readMessage(conn *websocket.Conn) (*inbound, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg := &inbound{}
	err = json.Unmarshal(data, msg)
	if err != nil {
		return nil, errors.Wrap(err, "corrupted message")
	}

	return msg, nil
}

// Converts result message.
func resultOf(rpcType string, msg *inbound, err error) *rpcResult {
	if nil != err {
		return &rpcResult{err: err}
	}

	if !msg.Success {
		e := &ErrRPCFailed{Type: rpcType}
		if nil != msg.Error {
			e.Code = fmt.Sprint(msg.Error.Code)
			e.Message = msg.Error.Message
		}
		return &rpcResult{err: e}
	}

	return &rpcResult{data: msg.Result}
}
