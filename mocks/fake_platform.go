//+build !release

package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"go-home.io/x/macs/plugins/platform"
)

// FakePlatformRPC describes RPC handler of the fake platform.
type FakePlatformRPC func(request platform.RPCRequest) (json.RawMessage, error)

type fakeSubscription struct {
	entityID string
	callback func(*platform.StateChangedEvent)
}

type fakePlatform struct {
	sync.Mutex
	states   map[string]*platform.EntityState
	rpc      FakePlatformRPC
	requests []platform.RPCRequest
	subs     map[int]*fakeSubscription
	lastSub  int
}

func (p *fakePlatform) GetEntityState(entityID string) *platform.EntityState {
	p.Lock()
	defer p.Unlock()

	s, ok := p.states[entityID]
	if !ok {
		return nil
	}

	c := *s
	return &c
}

func (p *fakePlatform) CallRPC(ctx context.Context, request platform.RPCRequest) (json.RawMessage, error) {
	p.Lock()
	p.requests = append(p.requests, request)
	rpc := p.rpc
	p.Unlock()

	if nil == rpc {
		return json.RawMessage("{}"), nil
	}

	return rpc(request)
}

func (p *fakePlatform) SubscribeStateChanged(entityID string,
	callback func(*platform.StateChangedEvent)) func() {
	p.Lock()
	defer p.Unlock()

	p.lastSub++
	id := p.lastSub
	p.subs[id] = &fakeSubscription{entityID: entityID, callback: callback}
	return func() {
		p.Lock()
		defer p.Unlock()
		delete(p.subs, id)
	}
}

// SetState updates entity state and notifies subscribers.
func (p *fakePlatform) SetState(entityID string, state string, attributes map[string]interface{}) {
	p.Lock()
	old := p.states[entityID]
	n := &platform.EntityState{
		EntityID:   entityID,
		State:      state,
		Attributes: attributes,
	}
	p.states[entityID] = n
	callbacks := make([]func(*platform.StateChangedEvent), 0)
	for _, v := range p.subs {
		if v.entityID == entityID || "" == v.entityID {
			callbacks = append(callbacks, v.callback)
		}
	}
	p.Unlock()

	for _, cb := range callbacks {
		cb(&platform.StateChangedEvent{EntityID: entityID, OldState: old, NewState: n})
	}
}

// RemoveState deletes entity.
func (p *fakePlatform) RemoveState(entityID string) {
	p.Lock()
	defer p.Unlock()

	delete(p.states, entityID)
}

// SetRPC replaces RPC handler.
func (p *fakePlatform) SetRPC(rpc FakePlatformRPC) {
	p.Lock()
	defer p.Unlock()

	p.rpc = rpc
}

// Requests returns all RPC requests received so far.
func (p *fakePlatform) Requests() []platform.RPCRequest {
	p.Lock()
	defer p.Unlock()

	out := make([]platform.RPCRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Subscriptions returns number of active subscriptions.
func (p *fakePlatform) Subscriptions() int {
	p.Lock()
	defer p.Unlock()

	return len(p.subs)
}

// FakeNewPlatform creates a fake platform.
func FakeNewPlatform() *fakePlatform {
	return &fakePlatform{
		states: make(map[string]*platform.EntityState),
		subs:   make(map[int]*fakeSubscription),
	}
}
