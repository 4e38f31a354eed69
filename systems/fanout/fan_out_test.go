package fanout

import (
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
)

// Tests presentation fan-out channels.
func TestPresentationUpdates(t *testing.T) {
	defer leaktest.Check(t)()

	fo := NewFanOut()
	id1, c1 := fo.SubscribePresentation()
	id2, c2 := fo.SubscribePresentation()
	var m sync.Mutex
	var m1, m2 *common.Presentation
	done1 := make(chan struct{})
	done2 := make(chan struct{})

	go func() {
		for p := range c1 {
			m.Lock()
			m1 = p
			m.Unlock()
		}
		close(done1)
	}()

	go func() {
		for p := range c2 {
			m.Lock()
			m2 = p
			m.Unlock()
		}
		close(done2)
	}()

	fo.ChannelInPresentation() <- &common.Presentation{Mood: enums.MoodHappy}
	time.Sleep(100 * time.Millisecond)
	m.Lock()
	assert.NotNil(t, m1, "channel 1")
	assert.NotNil(t, m2, "channel 2")
	m1 = nil
	m2 = nil
	m.Unlock()

	fo.UnSubscribePresentation(id1)
	<-done1
	fo.ChannelInPresentation() <- &common.Presentation{Mood: enums.MoodSad}
	time.Sleep(100 * time.Millisecond)

	m.Lock()
	assert.Nil(t, m1, "unsubscribe channel 1")
	assert.NotNil(t, m2, "unsubscribe channel 2")
	assert.Equal(t, enums.MoodSad, m2.Mood)
	m.Unlock()

	fo.UnSubscribePresentation(id2)
	fo.UnSubscribePresentation(id2)
	<-done2
	fo.Stop()
}

// Tests turn log fan-out channels.
func TestTurnsUpdates(t *testing.T) {
	defer leaktest.Check(t)()

	fo := NewFanOut()
	_, c := fo.SubscribeTurns()
	fo.ChannelInTurns() <- []*common.Turn{{RunID: "a"}}

	select {
	case turns := <-c:
		assert.Len(t, turns, 1)
	case <-time.After(time.Second):
		assert.Fail(t, "turns were not delivered")
	}

	fo.Stop()
	fo.Stop()

	_, ok := <-c
	assert.False(t, ok, "channel is closed on stop")
}

// Tests that slow subscriber doesn't block broadcasting.
func TestSlowSubscriber(t *testing.T) {
	defer leaktest.Check(t)()

	fo := NewFanOut()
	_, slow := fo.SubscribePresentation()
	_, fast := fo.SubscribePresentation()

	received := 0
	for ii := 0; ii < 30; ii++ {
		fo.ChannelInPresentation() <- &common.Presentation{}
		select {
		case <-fast:
			received++
		case <-time.After(time.Second):
		}
	}

	assert.Equal(t, 30, received)
	assert.Len(t, slow, 10)
	fo.Stop()
}
