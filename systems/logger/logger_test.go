package logger

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-home.io/x/macs/mocks"
	"go-home.io/x/macs/plugins/common"
)

// Tests that node and system fields are added.
func TestLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerProvider(&ConstructLogger{
		RawConfig: []byte("level: debug"),
		NodeID:    "kitchen",
		Out:       buf,
	})

	s := NewSystemLogger(l, "bridge")
	s.Debug("Debug")
	s.Warn("Warn")
	s.Error("Error", errors.New("err"))
	s.Flush()

	out := buf.String()
	assert.Contains(t, out, "Debug")
	assert.Contains(t, out, "Warn")
	assert.Contains(t, out, fmt.Sprintf("%s=kitchen", common.LogNodeToken))
	assert.Contains(t, out, fmt.Sprintf("%s=bridge", common.LogSystemToken))
}

// Tests that level flag overrides raw config.
func TestLoggerLevelOverride(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerProvider(&ConstructLogger{
		RawConfig: []byte("level: debug"),
		Level:     "error",
		Out:       buf,
	})

	l.Info("Info")
	assert.Equal(t, "", buf.String())
}

// Tests tracer selections.
func TestTracerSelection(t *testing.T) {
	tr := NewDebugTracer(&ConstructDebugTracer{
		Logger:    mocks.FakeNewLogger(nil),
		Selection: "none",
	})

	assert.False(t, tr.Enabled("bridge"))
	tr.Trace("bridge", "skipped")
	assert.Len(t, tr.Backlog(), 0)

	tr.SetSelection("all")
	assert.True(t, tr.Enabled("anything"))

	tr.SetSelection("bridge*, particle.rain")
	assert.True(t, tr.Enabled("bridge.turns"))
	assert.True(t, tr.Enabled("particle.rain"))
	assert.False(t, tr.Enabled("particle.snow"))

	tr.SetSelection("[")
	assert.False(t, tr.Enabled("bridge"))
}

// Tests bounded backlog.
func TestTracerBacklog(t *testing.T) {
	log := mocks.FakeNewLogger(nil)
	tr := NewDebugTracer(&ConstructDebugTracer{
		Logger:      log,
		Selection:   "all",
		BacklogSize: 3,
	})

	for ii := 0; ii < 5; ii++ {
		tr.Trace("ns", fmt.Sprintf("line %d", ii), "k", "v")
	}

	b := tr.Backlog()
	require.Len(t, b, 3)
	assert.Contains(t, b[0], "line 2")
	assert.Contains(t, b[2], "line 4 k=v")
	assert.Len(t, log.Messages(), 5)
}
