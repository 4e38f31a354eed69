package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/helpers"
	"go-home.io/x/macs/plugins/platform"
	"go-home.io/x/macs/providers"
	"go-home.io/x/macs/utils"
)

const (
	traceNSPipeline = "pipeline"

	defaultFetchDebounce = 160 * time.Millisecond
	defaultRPCTimeout    = 10 * time.Second

	eventIntentStart = "intent-start"
	eventSTTEnd      = "stt-end"
	eventIntentEnd   = "intent-end"
	eventError       = "error"
)

// Default attempts at which run details are fetched.
// Events of the run arrive incrementally.
var defaultFetchDelays = []time.Duration{0, 250 * time.Millisecond, 700 * time.Millisecond}

// Expressions used to extract turn data from heterogeneous pipeline events.
var turnExpressions = map[string]string{
	"type":      `jq(payload, '.type')`,
	"timestamp": `jq(payload, '.timestamp')`,
	"intent":    `jq(payload, '.data.intent_input')`,
	"stt":       `jq(payload, '.data.stt_output.text')`,
	"reply":     `jq(payload, '.data.intent_output.response.speech.plain.speech')`,
	"error":     `trim(fmt('%s: %s', jqor(payload, '.data.code', 'error'), jqor(payload, '.data.message', '')))`,
}

// ConstructPipelineTracker has data required for a new tracker.
type ConstructPipelineTracker struct {
	Platform   platform.IPlatform
	Logger     common.ILoggerProvider
	Tracer     common.IDebugTracer
	OnTurns    func([]*common.Turn)
	Debounce   time.Duration
	Delays     []time.Duration
	RPCTimeout time.Duration
}

// PipelineTracker polls assistant pipeline runs and keeps the turn log.
type PipelineTracker struct {
	sync.Mutex

	platform    platform.IPlatform
	logger      common.ILoggerProvider
	tracer      common.IDebugTracer
	onTurns     func([]*common.Turn)
	debounce    time.Duration
	retry       *utils.RetryPolicy
	rpcTimeout  time.Duration
	expressions map[string]helpers.ITemplateExpression

	log         *TurnLog
	timer       *utils.SlotTimer
	pipelineID  string
	maxTurns    int
	unsubscribe func()
	lastRunID   string
	lastRunTS   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPipelineTracker constructs a new tracker.
func NewPipelineTracker(ctor *ConstructPipelineTracker) *PipelineTracker {
	t := &PipelineTracker{
		platform:    ctor.Platform,
		logger:      ctor.Logger,
		tracer:      ctor.Tracer,
		onTurns:     ctor.OnTurns,
		debounce:    ctor.Debounce,
		rpcTimeout:  ctor.RPCTimeout,
		expressions: make(map[string]helpers.ITemplateExpression),
		log:         NewTurnLog(),
		timer:       utils.NewSlotTimer(nil),
		maxTurns:    2,
	}

	if 0 == t.debounce {
		t.debounce = defaultFetchDebounce
	}
	if 0 == t.rpcTimeout {
		t.rpcTimeout = defaultRPCTimeout
	}

	delays := ctor.Delays
	if 0 == len(delays) {
		delays = defaultFetchDelays
	}
	t.retry = utils.NewRetryPolicy(delays...)

	p := helpers.NewParser()
	for k, v := range turnExpressions {
		exp, err := p.Compile(v)
		if err != nil {
			t.logger.Error("Failed to compile turn expression", err, common.LogFieldToken, k,
				common.LogSystemToken, logSystem)
			continue
		}
		t.expressions[k] = exp
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())
	return t
}

// SetConfig applies pipeline settings.
// Conversation entity is watched only while pipeline is enabled and configured.
func (t *PipelineTracker) SetConfig(cfg *providers.CardConfig) {
	pid := ""
	if cfg.AssistPipelineEnabled {
		pid = strings.TrimSpace(cfg.AssistPipelineEntity)
	}

	t.Lock()
	defer t.Unlock()

	t.maxTurns = cfg.MaxTurns
	t.log.Trim(t.maxTurns)
	if pid == t.pipelineID {
		return
	}

	t.pipelineID = pid
	t.lastRunID = ""
	t.lastRunTS = ""

	if "" == pid && nil != t.unsubscribe {
		t.unsubscribe()
		t.unsubscribe = nil
		t.timer.Stop()
		return
	}

	if "" != pid && nil == t.unsubscribe {
		t.unsubscribe = t.platform.SubscribeStateChanged(platform.ConversationEntityID,
			func(*platform.StateChangedEvent) {
				t.TriggerFetchNewest()
			})
	}
}

// Enabled returns whether pipeline is tracked.
func (t *PipelineTracker) Enabled() bool {
	t.Lock()
	defer t.Unlock()

	return "" != t.pipelineID
}

// TriggerFetchNewest schedules newest run lookup.
// Triggers arriving while lookup is pending are coalesced.
func (t *PipelineTracker) TriggerFetchNewest() {
	if !t.Enabled() || t.timer.Active() || nil != t.ctx.Err() {
		return
	}

	t.timer.Start(t.debounce, func() {
		t.Lock()
		if nil != t.ctx.Err() {
			t.Unlock()
			return
		}
		t.wg.Add(1)
		t.Unlock()

		go func() {
			defer t.wg.Done()
			t.fetchNewest(t.ctx)
		}()
	})
}

// Turns returns copy of the turn log.
func (t *PipelineTracker) Turns() []*common.Turn {
	return t.log.Turns()
}

// Newest returns the newest turn.
func (t *PipelineTracker) Newest() *common.Turn {
	return t.log.Newest()
}

// Dispose cancels pending lookups and un-subscribes from the platform.
func (t *PipelineTracker) Dispose() {
	t.Lock()
	if nil != t.unsubscribe {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.cancel()
	t.Unlock()

	t.timer.Stop()
	t.wg.Wait()
}

// Extract pulls heard text, reply and error out of the run events.
func (t *PipelineTracker) Extract(events []json.RawMessage) *common.Turn {
	turn := &common.Turn{}
	for _, ev := range events {
		if "" == turn.TS {
			turn.TS = t.eval("timestamp", ev)
		}

		switch t.eval("type", ev) {
		case eventIntentStart:
			if "" == turn.Heard {
				turn.Heard = t.eval("intent", ev)
			}
		case eventSTTEnd:
			if heard := t.eval("stt", ev); "" != heard {
				turn.Heard = heard
			}
		case eventIntentEnd:
			if reply := t.eval("reply", ev); "" != reply {
				turn.Reply = reply
			}
		case eventError:
			turn.Error = t.eval("error", ev)
		}
	}

	return turn
}

// Evaluates pre-compiled expression.
func (t *PipelineTracker) eval(name string, payload []byte) string {
	exp, ok := t.expressions[name]
	if !ok {
		return ""
	}

	return exp.ParseString(payload)
}

// Lists runs and fetches details of the newest one if it changed.
func (t *PipelineTracker) fetchNewest(ctx context.Context) {
	t.Lock()
	pid := t.pipelineID
	t.Unlock()

	if "" == pid {
		return
	}

	newest, err := t.listNewest(ctx, pid)
	if err != nil {
		t.trace("Failed to list pipeline runs: "+err.Error(), common.LogPipelineToken, pid)
		return
	}

	if nil == newest {
		return
	}

	t.Lock()
	if pid != t.pipelineID || (newest.PipelineRunID == t.lastRunID && newest.Timestamp == t.lastRunTS) {
		t.Unlock()
		return
	}
	t.lastRunID = newest.PipelineRunID
	t.lastRunTS = newest.Timestamp
	t.Unlock()

	runID := newest.PipelineRunID
	t.retry.Run(ctx, func(ctx context.Context, idx int) {
		t.fetchRun(ctx, pid, runID)
	})
}

// Returns the last listed run.
func (t *PipelineTracker) listNewest(ctx context.Context, pid string) (*platform.PipelineRun, error) {
	rctx, cancel := context.WithTimeout(ctx, t.rpcTimeout)
	defer cancel()

	data, err := t.platform.CallRPC(rctx, platform.NewRPCRequest(platform.RPCPipelineDebugList,
		map[string]interface{}{"pipeline_id": pid}))
	if err != nil {
		return nil, err
	}

	var resp platform.PipelineRunsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	if 0 == len(resp.PipelineRuns) {
		return nil, nil
	}

	return resp.PipelineRuns[len(resp.PipelineRuns)-1], nil
}

// Fetches single run and upserts extracted turn.
// Failures are swallowed, the next attempt or trigger retries.
func (t *PipelineTracker) fetchRun(ctx context.Context, pid string, runID string) {
	rctx, cancel := context.WithTimeout(ctx, t.rpcTimeout)
	defer cancel()

	data, err := t.platform.CallRPC(rctx, platform.NewRPCRequest(platform.RPCPipelineDebugGet,
		map[string]interface{}{"pipeline_id": pid, "pipeline_run_id": runID}))
	if err != nil {
		t.trace("Failed to get pipeline run: "+err.Error(), common.LogRunToken, runID)
		return
	}

	var details platform.PipelineRunDetails
	if err := json.Unmarshal(data, &details); err != nil || nil == details.Events {
		return
	}

	turn := t.Extract(details.Events)
	if "" == turn.Heard && "" == turn.Reply && "" == turn.Error {
		return
	}

	turn.RunID = runID
	t.Lock()
	if runID != t.lastRunID || pid != t.pipelineID {
		t.Unlock()
		t.trace("Stale turn discarded", common.LogRunToken, runID)
		return
	}
	t.log.Upsert(turn, t.maxTurns)
	turns := t.log.Turns()
	t.Unlock()

	t.trace("Turn updated", common.LogRunToken, runID)
	if nil != t.onTurns && nil == ctx.Err() {
		t.onTurns(turns)
	}
}

// Writes into debug channel.
func (t *PipelineTracker) trace(msg string, fields ...string) {
	if nil != t.tracer {
		t.tracer.Trace(traceNSPipeline, msg, fields...)
		return
	}

	t.logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
}
