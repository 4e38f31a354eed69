package particle

import (
	"math"
	"math/rand"
)

const (
	// EffectRain describes rain drops.
	EffectRain = "rain"
	// EffectSnow describes snow flakes.
	EffectSnow = "snow"
	// EffectLeaves describes blowing leaves.
	EffectLeaves = "leaves"

	// Leaves appear only in dry wind.
	leavesWindThreshold          = 0.35
	leavesPrecipitationThreshold = 0.1
)

// Range describes uniform distribution.
type Range struct {
	Min float64
	Max float64
}

// Pick returns random value in range.
func (r Range) Pick(rnd *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}

	return r.Min + rnd.Float64()*(r.Max-r.Min)
}

// Spec parametrizes engine per effect.
// Sizes are in px, speed in px per second, delays in seconds, tilt in degrees.
type Spec struct {
	Name          string
	MaxCount      int
	CountExponent float64
	Size          Range
	Opacity       Range
	Speed         Range
	Jitter        float64
	WindTilt      float64
	TiltJitter    float64
	SpawnDelay    Range
	RespawnDelay  Range
	Restartable   bool
	Variants      []string
}

// Count returns live particle count for intensity in [0,1].
func (s *Spec) Count(intensity float64) int {
	if intensity <= 0 || s.MaxCount <= 0 {
		return 0
	}

	exp := s.CountExponent
	if exp <= 0 {
		exp = 1
	}

	n := int(math.Round(float64(s.MaxCount) * math.Pow(math.Min(1, intensity), exp)))
	if n > s.MaxCount {
		return s.MaxCount
	}

	return n
}

// RainSpec returns rain effect parameters.
// Exponent keeps drizzle sparse.
func RainSpec() *Spec {
	return &Spec{
		Name:          EffectRain,
		MaxCount:      120,
		CountExponent: 1.6,
		Size:          Range{Min: 1, Max: 2.5},
		Opacity:       Range{Min: 0.35, Max: 0.7},
		Speed:         Range{Min: 700, Max: 1100},
		Jitter:        0.15,
		WindTilt:      25,
		TiltJitter:    2,
		SpawnDelay:    Range{Min: 0, Max: 1.5},
		RespawnDelay:  Range{Min: 0, Max: 0.3},
		Restartable:   true,
	}
}

// SnowSpec returns snow effect parameters.
func SnowSpec() *Spec {
	return &Spec{
		Name:          EffectSnow,
		MaxCount:      80,
		CountExponent: 1.2,
		Size:          Range{Min: 2, Max: 6},
		Opacity:       Range{Min: 0.5, Max: 0.95},
		Speed:         Range{Min: 40, Max: 110},
		Jitter:        0.25,
		WindTilt:      35,
		TiltJitter:    8,
		SpawnDelay:    Range{Min: 0, Max: 6},
		RespawnDelay:  Range{Min: 0, Max: 1},
		Restartable:   true,
	}
}

// LeavesSpec returns leaves effect parameters.
func LeavesSpec() *Spec {
	return &Spec{
		Name:          EffectLeaves,
		MaxCount:      14,
		CountExponent: 1,
		Size:          Range{Min: 14, Max: 28},
		Opacity:       Range{Min: 0.8, Max: 1},
		Speed:         Range{Min: 90, Max: 180},
		Jitter:        0.3,
		WindTilt:      60,
		TiltJitter:    10,
		SpawnDelay:    Range{Min: 0, Max: 4},
		RespawnDelay:  Range{Min: 0.5, Max: 3},
		Restartable:   true,
		Variants:      []string{"leaf-1", "leaf-2", "leaf-3", "leaf-4"},
	}
}

// LeavesIntensity returns leaves intensity for wind and precipitation in [0,1].
func LeavesIntensity(wind float64, precipitation float64) float64 {
	if math.IsNaN(wind) || wind < leavesWindThreshold || precipitation >= leavesPrecipitationThreshold {
		return 0
	}

	return math.Min(1, (wind-leavesWindThreshold)/(1-leavesWindThreshold))
}
