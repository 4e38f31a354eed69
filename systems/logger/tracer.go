package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"go-home.io/x/macs/plugins/common"
)

const (
	// SelectionNone disables every namespace.
	SelectionNone = "none"
	// SelectionAll enables every namespace.
	SelectionAll = "all"

	defaultBacklog = 200
)

// Debug tracer implementation.
type tracer struct {
	sync.Mutex
	logger    common.ILoggerProvider
	selection string
	all       bool
	globs     []glob.Glob
	backlog   []string
	limit     int
}

// ConstructDebugTracer has data required for a new debug tracer.
type ConstructDebugTracer struct {
	Logger      common.ILoggerProvider
	Selection   string
	BacklogSize int
}

// NewDebugTracer constructs a new opt-in diagnostic channel.
// Selection is "none", "all" or comma separated list of namespace patterns.
func NewDebugTracer(ctor *ConstructDebugTracer) common.IDebugTracer {
	t := &tracer{
		logger: ctor.Logger,
		limit:  ctor.BacklogSize,
	}

	if t.limit <= 0 {
		t.limit = defaultBacklog
	}

	t.SetSelection(ctor.Selection)
	return t
}

// Trace records message if namespace is enabled.
func (t *tracer) Trace(namespace string, msg string, fields ...string) {
	if !t.Enabled(namespace) {
		return
	}

	t.logger.Debug(msg, append(fields, common.LogNamespaceToken, namespace)...)

	line := fmt.Sprintf("%s [%s] %s", time.Now().UTC().Format(time.StampMilli), namespace, msg)
	for ii := 0; ii+1 < len(fields); ii += 2 {
		line = fmt.Sprintf("%s %s=%s", line, fields[ii], fields[ii+1])
	}

	t.Lock()
	defer t.Unlock()

	t.backlog = append(t.backlog, line)
	if len(t.backlog) > t.limit {
		t.backlog = t.backlog[len(t.backlog)-t.limit:]
	}
}

// Enabled checks whether namespace matches current selection.
func (t *tracer) Enabled(namespace string) bool {
	t.Lock()
	defer t.Unlock()

	if t.all {
		return true
	}

	for _, v := range t.globs {
		if v.Match(namespace) {
			return true
		}
	}

	return false
}

// SetSelection updates enabled namespaces.
func (t *tracer) SetSelection(selection string) {
	selection = strings.ToLower(strings.TrimSpace(selection))

	t.Lock()
	defer t.Unlock()

	if selection == t.selection && (t.all || nil != t.globs) {
		return
	}

	t.selection = selection
	t.all = false
	t.globs = make([]glob.Glob, 0)

	switch selection {
	case "", SelectionNone, "false", "off":
		return
	case SelectionAll, "true", "on", "*":
		t.all = true
		return
	}

	for _, v := range strings.Split(selection, ",") {
		v = strings.TrimSpace(v)
		if "" == v {
			continue
		}

		g, err := glob.Compile(v)
		if err != nil {
			t.logger.Warn("Wrong debug namespace pattern", common.LogNamespaceToken, v)
			continue
		}

		t.globs = append(t.globs, g)
	}
}

// Backlog returns recorded diagnostic lines, oldest first.
func (t *tracer) Backlog() []string {
	t.Lock()
	defer t.Unlock()

	out := make([]string, len(t.backlog))
	copy(out, t.backlog)
	return out
}
