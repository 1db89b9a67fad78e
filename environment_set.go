package corridor

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EnvironmentSet is one scrollable stretch of scenery the manager rotates
// through.
type EnvironmentSet interface {
	// Update advances the set and reports whether it still has road left.
	Update(delta float32) bool
	Reset()
	UpdateSettings(settings Settings)
	// SetAsNext prepares the set to take over once a transition starts.
	SetAsNext()
	IsActive() bool
	SetActive(active bool)
	LastUsed() int
	SetLastUsed(n int)
	// NotInitial sets are never picked to open a run.
	NotInitial() bool
	// Transition is the transition slot to play when this set hands over.
	Transition() (int, bool)
}

type LightAllocator interface {
	GetAvailableLight() (*PoolLight, bool)
}

// SetFactory builds the environment sets once the light pool exists.
type SetFactory func(lights LightAllocator) []EnvironmentSet

type SegmentTemplate struct {
	Name       string  `yaml:"name"`
	Length     float32 `yaml:"length"`
	NotInitial bool    `yaml:"notInitial"`
	Transition *int    `yaml:"transition"`
	// Lamps are the positions lamps get lit at when the segment comes into view.
	Lamps []mgl32.Vec3 `yaml:"lamps"`
}

// Segment is an environment set of fixed length that lights its lamps from
// the shared pool when it becomes active.
type Segment struct {
	template SegmentTemplate
	lights   LightAllocator
	motion   MotionSource

	active     bool
	lastUsed   int
	travelled  float32
	lampStride int
	lit        []litLamp
}

type litLamp struct {
	light *PoolLight
	lease uint64
}

func NewSegment(template SegmentTemplate, lights LightAllocator, motion MotionSource, settings Settings) *Segment {
	s := &Segment{
		template: template,
		lights:   lights,
		motion:   motion,
	}
	s.UpdateSettings(settings)
	return s
}

// SegmentFactory builds one Segment per template.
func SegmentFactory(templates []SegmentTemplate, motion MotionSource, settings Settings) SetFactory {
	return func(lights LightAllocator) []EnvironmentSet {
		sets := make([]EnvironmentSet, 0, len(templates))
		for _, tmpl := range templates {
			sets = append(sets, NewSegment(tmpl, lights, motion, settings))
		}
		return sets
	}
}

func (s *Segment) Name() string       { return s.template.Name }
func (s *Segment) Travelled() float32 { return s.travelled }

// LitLamps returns the lights this segment lit that still burn on its behalf.
// A light that went dark or was handed out again since is left out.
func (s *Segment) LitLamps() []*PoolLight {
	var res []*PoolLight
	for _, l := range s.lit {
		if l.light.IsActive() && l.light.Lease() == l.lease {
			res = append(res, l.light)
		}
	}
	return res
}

func (s *Segment) Update(delta float32) bool {
	if !s.active {
		return false
	}
	s.travelled += s.motion.MovingSpeed() * delta
	return s.travelled < s.template.Length
}

func (s *Segment) Reset() {
	s.active = false
	s.lastUsed = 0
	s.travelled = 0
	s.lit = nil
}

// UpdateSettings thins out the lamps under the low preset.
func (s *Segment) UpdateSettings(settings Settings) {
	s.lampStride = 1
	if settings.GraphicsPreset == GraphicsLow {
		s.lampStride = 2
	}
}

func (s *Segment) SetAsNext() {
	s.SetActive(true)
}

func (s *Segment) IsActive() bool { return s.active }

func (s *Segment) SetActive(active bool) {
	if active == s.active {
		return
	}
	s.active = active
	if active {
		s.travelled = 0
		s.lightLamps()
	}
}

func (s *Segment) LastUsed() int     { return s.lastUsed }
func (s *Segment) SetLastUsed(n int) { s.lastUsed = n }
func (s *Segment) NotInitial() bool  { return s.template.NotInitial }

func (s *Segment) Transition() (int, bool) {
	if s.template.Transition == nil {
		return 0, false
	}
	return *s.template.Transition, true
}

// lightLamps takes a pool light per lamp until the pool runs dry. Lamps left
// without a light simply stay dark.
func (s *Segment) lightLamps() {
	s.lit = s.lit[:0]
	for i := 0; i < len(s.template.Lamps); i += s.lampStride {
		light, ok := s.lights.GetAvailableLight()
		if !ok {
			return
		}
		light.Activate(s.template.Lamps[i])
		s.lit = append(s.lit, litLamp{light: light, lease: light.Lease()})
	}
}
