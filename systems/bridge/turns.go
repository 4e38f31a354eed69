package bridge

import (
	"sync"

	"go-home.io/x/macs/plugins/common"
)

// TurnLog keeps newest-first assistant turns deduplicated by run id.
type TurnLog struct {
	sync.Mutex
	turns []*common.Turn
}

// NewTurnLog constructs an empty log.
func NewTurnLog() *TurnLog {
	return &TurnLog{
		turns: make([]*common.Turn, 0),
	}
}

// Upsert merges turn into the log.
// Known run at the head is merged in place, deeper one is promoted to the head.
// Unknown run is inserted at the head. The tail is always truncated to maxTurns.
func (l *TurnLog) Upsert(t *common.Turn, maxTurns int) {
	if nil == t || "" == t.RunID {
		return
	}

	l.Lock()
	defer l.Unlock()
	defer l.trim(maxTurns)

	idx := -1
	for ii, v := range l.turns {
		if v.RunID == t.RunID {
			idx = ii
			break
		}
	}

	switch {
	case 0 == idx:
		l.turns[0].Merge(t)
	case idx > 0:
		merged := l.turns[idx]
		merged.Merge(t)
		l.turns = append(l.turns[:idx], l.turns[idx+1:]...)
		l.turns = append([]*common.Turn{merged}, l.turns...)
	default:
		n := *t
		l.turns = append([]*common.Turn{&n}, l.turns...)
	}
}

// Trim drops the oldest turns beyond maxTurns.
func (l *TurnLog) Trim(maxTurns int) {
	l.Lock()
	defer l.Unlock()

	l.trim(maxTurns)
}

func (l *TurnLog) trim(maxTurns int) {
	if maxTurns < 1 {
		maxTurns = 1
	}

	if len(l.turns) > maxTurns {
		l.turns = l.turns[:maxTurns]
	}
}

// Turns returns copy of the log.
func (l *TurnLog) Turns() []*common.Turn {
	l.Lock()
	defer l.Unlock()

	out := make([]*common.Turn, 0, len(l.turns))
	for _, v := range l.turns {
		t := *v
		out = append(out, &t)
	}

	return out
}

// Newest returns copy of the head turn or nil.
func (l *TurnLog) Newest() *common.Turn {
	l.Lock()
	defer l.Unlock()

	if 0 == len(l.turns) {
		return nil
	}

	t := *l.turns[0]
	return &t
}

// Len returns number of kept turns.
func (l *TurnLog) Len() int {
	l.Lock()
	defer l.Unlock()

	return len(l.turns)
}
