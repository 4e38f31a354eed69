// Package platform contains definitions of the hosting smart-home platform capability.
package platform

import (
	"context"
	"encoding/json"
)

// IPlatform defines narrow query interface into the hosting platform.
type IPlatform interface {
	GetEntityState(entityID string) *EntityState
	CallRPC(ctx context.Context, request RPCRequest) (json.RawMessage, error)
	SubscribeStateChanged(entityID string, callback func(*StateChangedEvent)) func()
}

// EntityState describes snapshot of a single platform entity.
type EntityState struct {
	EntityID    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged string                 `json:"last_changed"`
	LastUpdated string                 `json:"last_updated"`
}

// Attribute returns attribute value if present.
func (e *EntityState) Attribute(name string) (interface{}, bool) {
	if nil == e || nil == e.Attributes {
		return nil, false
	}

	v, ok := e.Attributes[name]
	return v, ok
}

// UnitOfMeasurement returns reported unit.
func (e *EntityState) UnitOfMeasurement() string {
	v, ok := e.Attribute("unit_of_measurement")
	if !ok {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		return ""
	}

	return s
}

// StateChangedEvent describes state_changed platform event.
type StateChangedEvent struct {
	EntityID string       `json:"entity_id"`
	OldState *EntityState `json:"old_state"`
	NewState *EntityState `json:"new_state"`
}

// RPCRequest describes single platform RPC call.
// Type is mandatory, every other field is sent as-is.
type RPCRequest map[string]interface{}

// NewRPCRequest constructs a typed RPC request.
func NewRPCRequest(rpcType string, fields map[string]interface{}) RPCRequest {
	r := RPCRequest{"type": rpcType}
	for k, v := range fields {
		r[k] = v
	}

	return r
}

// Type returns request type.
func (r RPCRequest) Type() string {
	t, _ := r["type"].(string)
	return t
}

const (
	// RPCPipelineList lists configured assist pipelines.
	RPCPipelineList = "assist_pipeline/pipeline/list"
	// RPCPipelineDebugList lists recent runs of a pipeline.
	RPCPipelineDebugList = "assist_pipeline/pipeline_debug/list"
	// RPCPipelineDebugGet returns events of a single run.
	RPCPipelineDebugGet = "assist_pipeline/pipeline_debug/get"
)

const (
	// MoodEntityID describes mood select.
	MoodEntityID = "select.macs_mood"
	// BrightnessEntityID describes brightness number.
	BrightnessEntityID = "number.macs_brightness"
	// TemperatureEntityID describes manual temperature number.
	TemperatureEntityID = "number.macs_temperature"
	// WindEntityID describes manual wind number.
	WindEntityID = "number.macs_windspeed"
	// PrecipitationEntityID describes manual precipitation number.
	PrecipitationEntityID = "number.macs_precipitation"
	// BatteryChargeEntityID describes manual battery charge number.
	BatteryChargeEntityID = "number.macs_battery_charge"
	// BatteryStateEntityID describes manual charging switch.
	BatteryStateEntityID = "switch.macs_charging"
	// AnimationsEntityID describes animations switch.
	AnimationsEntityID = "switch.macs_animations_enabled"
	// DebugEntityID describes debug selection.
	DebugEntityID = "select.macs_debug"
	// ConversationEntityID describes conversation entity used as turn trigger.
	ConversationEntityID = "conversation.home_assistant"
	// ConditionEntityPrefix describes prefix of weather condition toggles.
	ConditionEntityPrefix = "switch.macs_weather_conditions_"
)

// PipelineRunsResponse describes pipeline_debug/list response.
type PipelineRunsResponse struct {
	PipelineRuns []*PipelineRun `json:"pipeline_runs"`
}

// PipelineRun describes single listed run.
type PipelineRun struct {
	PipelineRunID string `json:"pipeline_run_id"`
	Timestamp     string `json:"timestamp"`
}

// PipelineRunDetails describes pipeline_debug/get response.
type PipelineRunDetails struct {
	Events []json.RawMessage `json:"events"`
}

// PipelineListResponse describes pipeline/list response.
type PipelineListResponse struct {
	Pipelines         []*Pipeline `json:"pipelines"`
	PreferredPipeline string      `json:"preferred_pipeline"`
}

// Pipeline describes configured assist pipeline.
type Pipeline struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
