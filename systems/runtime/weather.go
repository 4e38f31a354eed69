package runtime

import (
	"math"
	"math/rand"
	"time"

	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/plugins/enums"
	"go-home.io/x/macs/systems/particle"
)

// Intensity floors applied when a condition flag is set.
var conditionPrecipitation = map[enums.ConditionKey]float64{
	enums.CondPouring: 1,
	enums.CondRainy:   0.5,
	enums.CondStormy:  0.6,
	enums.CondHail:    0.6,
	enums.CondSnowy:   0.5,
}

const windyFloor = 0.6

// ConstructWeather has data required for a new weather effects set.
type ConstructWeather struct {
	Rand   *rand.Rand
	Now    func() time.Time
	Width  float64
	Height float64
}

// Weather maps sensor intensities to particle engines.
// Nil input suppresses its effect.
type Weather struct {
	rain   *particle.Engine
	snow   *particle.Engine
	leaves *particle.Engine

	temperature   *float64
	windSpeed     *float64
	precipitation *float64
	conditions    common.WeatherConditions
	paused        bool
}

// NewWeather constructs a new weather effects set.
func NewWeather(ctor *ConstructWeather) *Weather {
	newEngine := func(spec *particle.Spec) *particle.Engine {
		return particle.NewEngine(&particle.ConstructEngine{
			Spec:   spec,
			Rand:   ctor.Rand,
			Now:    ctor.Now,
			Width:  ctor.Width,
			Height: ctor.Height,
		})
	}

	return &Weather{
		rain:       newEngine(particle.RainSpec()),
		snow:       newEngine(particle.SnowSpec()),
		leaves:     newEngine(particle.LeavesSpec()),
		conditions: common.NewWeatherConditions(),
	}
}

// SetTemperature applies temperature intensity.
func (w *Weather) SetTemperature(v *float64) {
	w.temperature = copyFloat(v)
}

// SetWindSpeed applies wind intensity. In-flight particles keep their path.
func (w *Weather) SetWindSpeed(v *float64) {
	w.windSpeed = copyFloat(v)
	w.apply(false)
}

// SetPrecipitation applies precipitation intensity.
func (w *Weather) SetPrecipitation(v *float64) {
	w.precipitation = copyFloat(v)
	w.apply(false)
}

// SetConditions replaces condition flags.
func (w *Weather) SetConditions(c common.WeatherConditions) {
	n := common.NewWeatherConditions()
	for k, v := range c {
		n[k] = v
	}
	n.ApplyDerived()
	w.conditions = n
	w.apply(false)
}

// SetViewSize updates viewport and re-spawns particles.
func (w *Weather) SetViewSize(width float64, height float64) {
	for _, e := range w.engines() {
		e.SetViewSize(width, height)
	}
	w.apply(true)
}

// SetPaused stops or resumes particle animation.
// Resume re-randomizes paths against the current viewport.
func (w *Weather) SetPaused(paused bool) {
	if w.paused == paused {
		return
	}

	w.paused = paused
	if paused {
		w.Reset()
		return
	}

	w.apply(true)
}

// Reset deactivates every particle.
func (w *Weather) Reset() {
	for _, e := range w.engines() {
		e.Reset()
	}
}

// Temperature returns temperature intensity.
func (w *Weather) Temperature() *float64 {
	return copyFloat(w.temperature)
}

// WindSpeed returns wind intensity.
func (w *Weather) WindSpeed() *float64 {
	return copyFloat(w.windSpeed)
}

// Precipitation returns precipitation intensity.
func (w *Weather) Precipitation() *float64 {
	return copyFloat(w.precipitation)
}

// Conditions returns copy of condition flags.
func (w *Weather) Conditions() common.WeatherConditions {
	return w.conditions.Copy()
}

// Active returns live particle count per effect.
func (w *Weather) Active() map[string]int {
	out := make(map[string]int)
	for _, e := range w.engines() {
		out[e.Name()] = e.Active()
	}
	return out
}

// Frames returns visible particles per effect.
func (w *Weather) Frames() map[string][]common.ParticleFrame {
	out := make(map[string][]common.ParticleFrame)
	if w.paused {
		return out
	}

	for _, e := range w.engines() {
		if f := e.Frames(); len(f) > 0 {
			out[e.Name()] = f
		}
	}

	return out
}

// Wind returns wind intensity in [0,1].
func (w *Weather) Wind() float64 {
	wind := 0.0
	if nil != w.windSpeed {
		wind = *w.windSpeed / 100
	}
	if w.conditions[enums.CondWindy] {
		wind = math.Max(wind, windyFloor)
	}

	return math.Max(0, math.Min(1, wind))
}

// Rain returns precipitation intensity in [0,1].
func (w *Weather) Rain() float64 {
	p := 0.0
	if nil != w.precipitation {
		p = *w.precipitation / 100
	}
	for k, v := range conditionPrecipitation {
		if w.conditions[k] {
			p = math.Max(p, v)
		}
	}

	return math.Max(0, math.Min(1, p))
}

// Pushes intensities into engines.
func (w *Weather) apply(force bool) {
	wind := w.Wind()
	for _, e := range w.engines() {
		e.SetWindIntensity(wind)
	}

	if w.paused {
		return
	}

	p := w.Rain()
	rain, snow := p, 0.0
	if w.conditions[enums.CondSnowy] {
		rain, snow = 0, p
	}

	w.rain.Update(rain, force)
	w.snow.Update(snow, force)
	w.leaves.Update(particle.LeavesIntensity(wind, p), force)
}

func (w *Weather) engines() []*particle.Engine {
	return []*particle.Engine{w.rain, w.snow, w.leaves}
}

func copyFloat(v *float64) *float64 {
	if nil == v {
		return nil
	}

	c := *v
	return &c
}
