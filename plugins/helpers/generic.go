// Package helpers contains value normalization helpers shared by host and surface.
package helpers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber converts raw state or attribute into finite float.
func ToNumber(raw interface{}) (float64, bool) {
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		s := strings.TrimSpace(t)
		if "" == s {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if !isFinite(v) {
		return 0, false
	}

	return v, true
}

// TruthyToken normalizes boolean-like values.
// Returns nil if value is neither truthy nor falsy.
func TruthyToken(raw interface{}) *bool {
	switch t := raw.(type) {
	case bool:
		return boolPtr(t)
	case float64:
		if 1 == t {
			return boolPtr(true)
		}
		if 0 == t {
			return boolPtr(false)
		}
		return nil
	case int:
		return TruthyToken(float64(t))
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "true", "1", "yes":
			return boolPtr(true)
		case "off", "false", "0", "no":
			return boolPtr(false)
		}
	}

	return nil
}

// ChargingState normalizes primary state of the charging entity.
func ChargingState(raw interface{}) *bool {
	if b, ok := raw.(bool); ok {
		return boolPtr(b)
	}

	if n, ok := raw.(float64); ok {
		if math.IsNaN(n) {
			return nil
		}
		return boolPtr(0 != n)
	}

	s, ok := raw.(string)
	if !ok {
		return nil
	}

	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "charging", "on", "true", "plugged":
		return boolPtr(true)
	case "off", "false", "unplugged":
		return boolPtr(false)
	case "", "unknown", "unavailable":
		return nil
	}

	if n, ok := ToNumber(s); ok {
		return boolPtr(0 != n)
	}

	return nil
}

// IsUnavailableState checks whether state string carries no data.
func IsUnavailableState(state string) bool {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "", "unknown", "unavailable":
		return true
	}

	return false
}

// GetNameFromID converts entity ID to readable name.
func GetNameFromID(entityID string) string {
	parts := strings.Split(entityID, ".")
	return strings.Replace(parts[len(parts)-1], "_", " ", -1)
}

// SliceContainsString slice.contains implementation for strings.
func SliceContainsString(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// Float64Ptr returns pointer to a copy of the value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Returns pointer to a copy of the value.
func boolPtr(v bool) *bool {
	return &v
}

// BoolPtr returns pointer to a copy of the value.
func BoolPtr(v bool) *bool {
	return boolPtr(v)
}
