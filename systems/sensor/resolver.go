// Package sensor contains resolver of the platform entities into normalized intensities.
package sensor

import (
	"fmt"
	"regexp"
	"strings"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/plugins/helpers"
	"go-home.io/x/macs/plugins/platform"
	"go-home.io/x/macs/providers"
)

const (
	logSystem = "sensor"
	traceNS   = "sensor"
)

var (
	reWhitespace  = regexp.MustCompile(`\s+`)
	reCompact     = regexp.MustCompile(`[\s-]+`)
	reSpaced      = regexp.MustCompile(`[_-]+`)
	unusableTexts = []string{"", "unknown", "unavailable"}
)

// Resolver reads platform entities and produces sensor payload.
// It holds no state between ticks.
type Resolver struct {
	platform platform.IPlatform
	logger   common.ILoggerProvider
	tracer   common.IDebugTracer
}

// ConstructResolver has data required for a new resolver.
type ConstructResolver struct {
	Platform platform.IPlatform
	Logger   common.ILoggerProvider
	Tracer   common.IDebugTracer
}

// NewResolver constructs a new sensor resolver.
func NewResolver(ctor *ConstructResolver) *Resolver {
	return &Resolver{
		platform: ctor.Platform,
		logger:   ctor.Logger,
		tracer:   ctor.Tracer,
	}
}

// Resolve computes the whole payload for the current platform snapshot.
func (r *Resolver) Resolve(cfg *providers.CardConfig) *common.SensorPayload {
	p := &common.SensorPayload{
		Temperature:       r.ResolveSensor(TemperatureSpec, cfg).Normalized,
		WindSpeed:         r.ResolveSensor(WindSpec, cfg).Normalized,
		Precipitation:     r.ResolveSensor(PrecipitationSpec, cfg).Normalized,
		Battery:           r.ResolveSensor(BatterySpec, cfg).Normalized,
		BatteryState:      r.ResolveBatteryState(cfg),
		WeatherConditions: r.ResolveConditions(cfg),
	}

	return p
}

// ResolveSensor resolves single numeric quantity.
// Normalized value is nil if entity is absent or unreadable.
func (r *Resolver) ResolveSensor(spec *SensorSpec, cfg *providers.CardConfig) *common.NormalizedSensor {
	if !cfg.LookupBool(spec.EnabledConfigKey) {
		return r.readManual(spec)
	}

	entityID := cfg.LookupString(spec.EntityConfigKey)
	reading := r.readSensor(entityID)
	if nil == reading {
		r.trace("Sensor unavailable", common.LogSensorToken, spec.Key, common.LogEntityToken, entityID)
		return &common.NormalizedSensor{}
	}

	configUnit := cfg.LookupString(spec.UnitConfigKey)
	min := cfg.LookupFloat(spec.MinConfigKey)
	max := cfg.LookupFloat(spec.MaxConfigKey)
	unit := helpers.ResolveUnit(spec.Kind, configUnit, reading.Unit)

	result := &common.NormalizedSensor{
		Value:      reading.Value,
		Unit:       unit.String(),
		Min:        min,
		Max:        max,
		Normalized: spec.Normalize(spec.Kind, reading.Value, reading.Unit, configUnit, min, max),
	}

	if nil != result.Normalized {
		r.trace("Sensor normalized", common.LogSensorToken, spec.Key, common.LogEntityToken, entityID,
			"value", fmt.Sprintf("%v", reading.Value), "unit", result.Unit,
			"normalized", fmt.Sprintf("%v", *result.Normalized))
	}

	return result
}

// ResolveBatteryState resolves charging flag.
// Attributes are probed first, primary state is the fallback.
func (r *Resolver) ResolveBatteryState(cfg *providers.CardConfig) *bool {
	entityID := platform.BatteryStateEntityID
	if cfg.BatteryStateSensorEnabled {
		entityID = strings.TrimSpace(cfg.BatteryStateSensorEntity)
	}

	if "" == entityID {
		return nil
	}

	st := r.platform.GetEntityState(entityID)
	if nil == st {
		return nil
	}

	for _, v := range chargingAttributes {
		attr, ok := st.Attribute(v)
		if !ok {
			continue
		}

		if b := helpers.TruthyToken(attr); nil != b {
			r.trace("Charging state from attribute", common.LogEntityToken, entityID, "attribute", v)
			return b
		}
	}

	return helpers.ChargingState(st.State)
}

// ResolveConditions resolves weather flags.
// Text mode is used when enabled, otherwise per-condition toggles are aggregated.
func (r *Resolver) ResolveConditions(cfg *providers.CardConfig) common.WeatherConditions {
	if cfg.WeatherConditionsEnabled {
		entityID := strings.TrimSpace(cfg.WeatherConditions)
		if "" == entityID {
			return common.NewWeatherConditions()
		}

		st := r.platform.GetEntityState(entityID)
		if nil == st {
			return common.NewWeatherConditions()
		}

		text := ConditionText(st)
		flags := ParseConditionText(text)
		r.trace("Weather conditions parsed", common.LogEntityToken, entityID, "text", text)
		return flags
	}

	flags := common.NewWeatherConditions()
	for _, k := range enums.ConditionKeys {
		st := r.platform.GetEntityState(platform.ConditionEntityPrefix + k.String())
		if nil == st {
			continue
		}

		b := helpers.TruthyToken(st.State)
		flags[k] = nil != b && *b
	}

	flags.ApplyDerived()
	return flags
}

// Entities returns every entity the payload depends on.
func (r *Resolver) Entities(cfg *providers.CardConfig) []string {
	result := make([]string, 0)
	for _, v := range Specs {
		if cfg.LookupBool(v.EnabledConfigKey) {
			result = appendID(result, cfg.LookupString(v.EntityConfigKey))
		} else {
			result = appendID(result, v.ManualEntityID)
		}
	}

	if cfg.BatteryStateSensorEnabled {
		result = appendID(result, strings.TrimSpace(cfg.BatteryStateSensorEntity))
	} else {
		result = appendID(result, platform.BatteryStateEntityID)
	}

	if cfg.WeatherConditionsEnabled {
		result = appendID(result, strings.TrimSpace(cfg.WeatherConditions))
	} else {
		for _, k := range enums.ConditionKeys {
			result = appendID(result, platform.ConditionEntityPrefix+k.String())
		}
	}

	return result
}

// ConditionText picks free-text condition from attributes or state.
func ConditionText(st *platform.EntityState) string {
	for _, v := range conditionAttributes {
		attr, ok := st.Attribute(v)
		if !ok {
			continue
		}

		switch t := attr.(type) {
		case []interface{}:
			if 0 == len(t) {
				continue
			}
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprintf("%v", p))
			}
			return strings.Join(parts, ", ")
		case []string:
			if 0 == len(t) {
				continue
			}
			return strings.Join(t, ", ")
		case string:
			if s := strings.TrimSpace(t); "" != s {
				return s
			}
		}
	}

	return strings.TrimSpace(st.State)
}

// ParseConditionText matches free text against keyword table.
func ParseConditionText(raw string) common.WeatherConditions {
	flags := common.NewWeatherConditions()
	text := strings.ToLower(strings.TrimSpace(raw))
	if helpers.SliceContainsString(unusableTexts, text) {
		return flags
	}

	normalized := strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
	compact := reCompact.ReplaceAllString(normalized, "_")
	spaced := reSpaced.ReplaceAllString(normalized, " ")

	hasToken := func(token string) bool {
		if strings.Contains(normalized, token) {
			return true
		}
		if strings.Contains(compact, reCompact.ReplaceAllString(token, "_")) {
			return true
		}
		return strings.Contains(spaced, reSpaced.ReplaceAllString(token, " "))
	}

	for _, rule := range conditionRules {
		for _, token := range rule.tokens {
			if !hasToken(token) {
				continue
			}

			for _, k := range rule.keys {
				flags[k] = true
			}
			break
		}
	}

	return flags
}

// Reads manual entity as pre-normalized value.
func (r *Resolver) readManual(spec *SensorSpec) *common.NormalizedSensor {
	st := r.platform.GetEntityState(spec.ManualEntityID)
	if nil == st {
		return &common.NormalizedSensor{}
	}

	v := helpers.ClampPercent(st.State)
	if nil == v {
		return &common.NormalizedSensor{}
	}

	return &common.NormalizedSensor{
		Value:      *v,
		Unit:       enums.UnitNormalized.String(),
		Min:        helpers.Float64Ptr(0),
		Max:        helpers.Float64Ptr(100),
		Normalized: v,
	}
}

// Reads numeric state of the entity.
func (r *Resolver) readSensor(entityID string) *Reading {
	if "" == entityID {
		return nil
	}

	st := r.platform.GetEntityState(entityID)
	if nil == st {
		return nil
	}

	v, ok := helpers.ToNumber(st.State)
	if !ok {
		return nil
	}

	return &Reading{
		Value: v,
		Unit:  st.UnitOfMeasurement(),
	}
}

// Sends diagnostic line.
func (r *Resolver) trace(msg string, fields ...string) {
	if nil == r.tracer {
		if nil != r.logger {
			r.logger.Debug(msg, append(fields, common.LogSystemToken, logSystem)...)
		}
		return
	}

	r.tracer.Trace(traceNS, msg, fields...)
}

// Appends non-empty unique entity ID.
func appendID(ids []string, id string) []string {
	if "" == id || helpers.SliceContainsString(ids, id) {
		return ids
	}

	return append(ids, id)
}
