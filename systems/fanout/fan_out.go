// Package fanout contains implementation of pub-sub fanout channels.
package fanout

import (
	"math/rand"
	"sync"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/utils"
)

// Implements IFanOutProvider.
type provider struct {
	presentation sync.Mutex
	turns        sync.Mutex

	inPresentation  chan *common.Presentation
	outPresentation map[int64]chan *common.Presentation

	inTurns  chan []*common.Turn
	outTurns map[int64]chan []*common.Turn

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewFanOut constructs new FanOut provider.
func NewFanOut() providers.IFanOutProvider {
	p := &provider{
		inPresentation:  make(chan *common.Presentation, 10),
		outPresentation: make(map[int64]chan *common.Presentation),
		inTurns:         make(chan []*common.Turn, 10),
		outTurns:        make(map[int64]chan []*common.Turn),
		stop:            make(chan struct{}),
	}

	p.wg.Add(1)
	go p.internalCycle()
	return p
}

// SubscribePresentation allows to subscribe to the presentation frames.
func (p *provider) SubscribePresentation() (int64, chan *common.Presentation) {
	p.presentation.Lock()
	defer p.presentation.Unlock()

	c := make(chan *common.Presentation, 10)
	id := p.getID()
	p.outPresentation[id] = c
	return id, c
}

// UnSubscribePresentation allows to un-subscribe from the presentation frames.
// nolint:dupl
func (p *provider) UnSubscribePresentation(id int64) {
	p.presentation.Lock()
	defer p.presentation.Unlock()

	c, ok := p.outPresentation[id]
	if !ok {
		return
	}

	close(c)
	delete(p.outPresentation, id)
}

// ChannelInPresentation returns input channel for the presentation frames.
func (p *provider) ChannelInPresentation() chan *common.Presentation {
	return p.inPresentation
}

// SubscribeTurns allows to subscribe for the turn log updates.
func (p *provider) SubscribeTurns() (int64, chan []*common.Turn) {
	p.turns.Lock()
	defer p.turns.Unlock()

	c := make(chan []*common.Turn, 10)
	id := p.getID()
	p.outTurns[id] = c
	return id, c
}

// UnSubscribeTurns allows to un-subscribe from the turn log updates.
// nolint:dupl
func (p *provider) UnSubscribeTurns(id int64) {
	p.turns.Lock()
	defer p.turns.Unlock()

	c, ok := p.outTurns[id]
	if !ok {
		return
	}

	close(c)
	delete(p.outTurns, id)
}

// ChannelInTurns returns input channel for the turn log updates.
func (p *provider) ChannelInTurns() chan []*common.Turn {
	return p.inTurns
}

// Stop terminates broadcasting and closes every subscriber channel.
func (p *provider) Stop() {
	p.once.Do(func() {
		close(p.stop)
		p.wg.Wait()

		p.presentation.Lock()
		for k, v := range p.outPresentation {
			close(v)
			delete(p.outPresentation, k)
		}
		p.presentation.Unlock()

		p.turns.Lock()
		for k, v := range p.outTurns {
			close(v)
			delete(p.outTurns, k)
		}
		p.turns.Unlock()
	})
}

// Returns random ID.
func (p *provider) getID() int64 {
	return utils.TimeNow() + rand.Int63()
}

func (p *provider) internalCycle() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case u := <-p.inPresentation:
			p.presentationUpdates(u)
		case u := <-p.inTurns:
			p.turnsUpdates(u)
		}
	}
}

// Broadcasts presentation frame.
// Slow subscriber misses the frame, the next one replaces it anyway.
func (p *provider) presentationUpdates(update *common.Presentation) {
	p.presentation.Lock()
	defer p.presentation.Unlock()

	for _, v := range p.outPresentation {
		select {
		case v <- update:
		default:
		}
	}
}

// Broadcasts turn log.
func (p *provider) turnsUpdates(update []*common.Turn) {
	p.turns.Lock()
	defer p.turns.Unlock()

	for _, v := range p.outTurns {
		select {
		case v <- update:
		default:
		}
	}
}
