package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests that un-register works as expected.
func TestCron(t *testing.T) {
	prov := NewCron()
	defer prov.Stop()

	var called int32
	var id int64
	added, err := prov.AddFunc("@every 1s", func() {
		if 2 == atomic.AddInt32(&called, 1) {
			prov.RemoveFunc(int(atomic.LoadInt64(&id)))
		}
	})
	require.NoError(t, err)
	atomic.StoreInt64(&id, int64(added))

	time.Sleep(4 * time.Second)

	assert.Equal(t, int32(2), atomic.LoadInt32(&called))
	assert.Equal(t, 0, prov.Jobs())
}

// Tests wrong schedule.
func TestCronWrongSpec(t *testing.T) {
	prov := NewCron()
	defer prov.Stop()

	_, err := prov.AddFunc("every now and then", func() {})
	assert.Error(t, err)
	assert.Equal(t, 0, prov.Jobs())
}

// Tests interval jobs and sub-second intervals.
func TestCronInterval(t *testing.T) {
	prov := NewCron()
	defer prov.Stop()

	var called int32
	id := prov.AddInterval(10*time.Millisecond, func() {
		atomic.AddInt32(&called, 1)
	})
	require.Equal(t, 1, prov.Jobs())

	time.Sleep(1500 * time.Millisecond)
	prov.RemoveFunc(id)

	assert.True(t, atomic.LoadInt32(&called) >= 1)
	assert.Equal(t, 0, prov.Jobs())
}
