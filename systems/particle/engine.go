// Package particle contains pool-based animation driver shared by weather effects.
package particle

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"go-home.io/x/macs/plugins/common"
)

// Particle describes single pooled element.
// Inactive particles keep their slot and are re-randomized on activation.
type Particle struct {
	Index      int
	Active     bool
	Size       float64
	Opacity    float64
	Speed      float64
	Tilt       float64
	SpawnDelay time.Duration
	PathLength float64
	Variant    string

	x0      float64
	dx      float64
	dy      float64
	startAt time.Time
}

// ConstructEngine has data required for a new engine.
type ConstructEngine struct {
	Spec   *Spec
	Rand   *rand.Rand
	Now    func() time.Time
	Width  float64
	Height float64
}

// Engine drives a fixed-capacity pool of particles.
type Engine struct {
	sync.Mutex

	spec *Spec
	rnd  *rand.Rand
	now  func() time.Time

	pool      []*Particle
	active    int
	intensity float64
	width     float64
	height    float64
	wind      float64
}

// NewEngine constructs a new particle engine.
func NewEngine(ctor *ConstructEngine) *Engine {
	e := &Engine{
		spec:   ctor.Spec,
		rnd:    ctor.Rand,
		now:    ctor.Now,
		width:  math.Max(1, ctor.Width),
		height: math.Max(1, ctor.Height),
		pool:   make([]*Particle, ctor.Spec.MaxCount),
	}

	if nil == e.rnd {
		e.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if nil == e.now {
		e.now = time.Now
	}

	for ii := range e.pool {
		e.pool[ii] = &Particle{Index: ii}
	}

	return e
}

// Name returns effect name.
func (e *Engine) Name() string {
	return e.spec.Name
}

// Capacity returns pool size.
func (e *Engine) Capacity() int {
	return len(e.pool)
}

// Update sets live particle count from intensity in [0,1].
// force re-randomizes every active particle even if count is unchanged.
func (e *Engine) Update(intensity float64, force bool) int {
	e.Lock()
	defer e.Unlock()

	if math.IsNaN(intensity) {
		intensity = 0
	}
	intensity = math.Max(0, math.Min(1, intensity))
	e.intensity = intensity

	target := e.spec.Count(intensity)
	if target == e.active && !force {
		return e.active
	}

	now := e.now()
	if force {
		for ii := 0; ii < e.active && ii < target; ii++ {
			e.spawnAt(e.pool[ii], now, true)
		}
	}

	for ii := e.active; ii < target; ii++ {
		e.spawnAt(e.pool[ii], now, true)
	}

	for ii := target; ii < e.active; ii++ {
		e.deactivate(e.pool[ii])
	}

	e.active = target
	return e.active
}

// Reset deactivates every particle, pool is kept.
func (e *Engine) Reset() {
	e.Lock()
	defer e.Unlock()

	for _, v := range e.pool {
		e.deactivate(v)
	}
	e.active = 0
}

// Refresh re-applies last intensity.
func (e *Engine) Refresh(force bool) int {
	e.Lock()
	intensity := e.intensity
	e.Unlock()

	return e.Update(intensity, force)
}

// SetViewSize updates viewport used by subsequently spawned particles.
func (e *Engine) SetViewSize(width float64, height float64) {
	e.Lock()
	defer e.Unlock()

	e.width = math.Max(1, width)
	e.height = math.Max(1, height)
}

// SetWindIntensity updates wind in [0,1] used by subsequently spawned particles.
func (e *Engine) SetWindIntensity(wind float64) {
	e.Lock()
	defer e.Unlock()

	if math.IsNaN(wind) {
		wind = 0
	}
	e.wind = math.Max(0, math.Min(1, wind))
}

// Active returns number of live particles.
func (e *Engine) Active() int {
	e.Lock()
	defer e.Unlock()

	return e.active
}

// Particles returns copy of the active particles.
func (e *Engine) Particles() []Particle {
	e.Lock()
	defer e.Unlock()

	out := make([]Particle, 0, e.active)
	for ii := 0; ii < e.active; ii++ {
		out = append(out, *e.pool[ii])
	}

	return out
}

// Frames returns visible particles at the current time.
// Finished particles of restartable effects are respawned after a jittered delay.
func (e *Engine) Frames() []common.ParticleFrame {
	e.Lock()
	defer e.Unlock()

	now := e.now()
	out := make([]common.ParticleFrame, 0, e.active)
	for ii := 0; ii < e.active; ii++ {
		p := e.pool[ii]
		if !p.Active {
			continue
		}

		progress := e.progress(p, now)
		if progress >= 1 {
			if !e.spec.Restartable {
				continue
			}
			e.spawnAt(p, p.startAt.Add(e.duration(p)), false)
			progress = e.progress(p, now)
			if progress >= 1 {
				e.spawnAt(p, now, false)
				progress = e.progress(p, now)
			}
		}

		if progress < 0 {
			continue
		}

		out = append(out, common.ParticleFrame{
			Index:   p.Index,
			X:       round2(p.x0 + p.dx*progress),
			Y:       round2(-p.Size + p.dy*progress),
			Size:    round2(p.Size),
			Opacity: round2(p.Opacity),
			Tilt:    round2(p.Tilt),
			Variant: p.Variant,
		})
	}

	return out
}

// Fraction of the path travelled. Negative while spawn delay is pending.
func (e *Engine) progress(p *Particle, now time.Time) float64 {
	if p.PathLength <= 0 || p.Speed <= 0 {
		return 1
	}

	return now.Sub(p.startAt).Seconds() * p.Speed / p.PathLength
}

// Time required to travel the path.
func (e *Engine) duration(p *Particle) time.Duration {
	if p.Speed <= 0 {
		return 0
	}

	return time.Duration(p.PathLength / p.Speed * float64(time.Second))
}

// Randomizes particle kinematics relative to the given time. Must be called under lock.
// Initial spawn uses per-slot stagger, respawn uses respawn delay.
func (e *Engine) spawnAt(p *Particle, base time.Time, initial bool) {
	s := e.spec
	p.Active = true
	p.Size = s.Size.Pick(e.rnd)
	p.Opacity = s.Opacity.Pick(e.rnd)
	p.Speed = s.Speed.Pick(e.rnd) * (1 + s.Jitter*(e.rnd.Float64()*2-1))
	p.Tilt = s.WindTilt*e.wind + s.TiltJitter*(e.rnd.Float64()*2-1)
	p.Variant = ""
	if len(s.Variants) > 0 {
		p.Variant = s.Variants[e.rnd.Intn(len(s.Variants))]
	}

	delay := s.RespawnDelay.Pick(e.rnd)
	if initial {
		delay = s.SpawnDelay.Pick(e.rnd)
	}
	p.SpawnDelay = time.Duration(delay * float64(time.Second))

	p.dy = e.height + 2*p.Size
	p.dx = p.dy * math.Tan(p.Tilt*math.Pi/180)
	p.PathLength = math.Hypot(p.dx, p.dy)

	low := math.Min(0, -p.dx)
	high := e.width + math.Max(0, -p.dx)
	p.x0 = low + e.rnd.Float64()*(high-low)
	p.startAt = base.Add(p.SpawnDelay)
}

// Hides particle keeping its slot. Must be called under lock.
func (e *Engine) deactivate(p *Particle) {
	idx := p.Index
	*p = Particle{Index: idx}
}

// Rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
