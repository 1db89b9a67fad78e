package corridor

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe offsets the animated node from its rest position at Time seconds.
type Keyframe struct {
	Time   float32    `yaml:"time"`
	Offset mgl32.Vec3 `yaml:"offset"`
}

type AnimationClip struct {
	Name      string
	Duration  float32
	Keyframes []Keyframe
}

func NewAnimationClip(name string, keyframes []Keyframe) *AnimationClip {
	kfs := slices.Clone(keyframes)
	slices.SortStableFunc(kfs, func(a, b Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	clip := &AnimationClip{Name: name, Keyframes: kfs}
	if len(kfs) > 0 {
		clip.Duration = kfs[len(kfs)-1].Time
	}
	return clip
}

// Sample interpolates the offset at t, holding the first and last keys
// outside the keyed range.
func (c *AnimationClip) Sample(t float32) mgl32.Vec3 {
	if len(c.Keyframes) == 0 {
		return mgl32.Vec3{}
	}
	if t <= c.Keyframes[0].Time {
		return c.Keyframes[0].Offset
	}
	for i := 1; i < len(c.Keyframes); i++ {
		next := c.Keyframes[i]
		if t <= next.Time {
			prev := c.Keyframes[i-1]
			span := next.Time - prev.Time
			if span <= 0 {
				return next.Offset
			}
			f := (t - prev.Time) / span
			return prev.Offset.Add(next.Offset.Sub(prev.Offset).Mul(f))
		}
	}
	return c.Keyframes[len(c.Keyframes)-1].Offset
}

// AnimationMixer drives the actions bound to one model.
type AnimationMixer struct {
	TimeScale float32
	actions   []*AnimationAction
}

func NewAnimationMixer() *AnimationMixer {
	return &AnimationMixer{TimeScale: 1}
}

// ClipAction binds clip to target. Binding the same pair twice returns the
// existing action.
func (m *AnimationMixer) ClipAction(clip *AnimationClip, target *Node) *AnimationAction {
	for _, a := range m.actions {
		if a.clip == clip && a.target == target {
			return a
		}
	}
	action := &AnimationAction{
		clip:   clip,
		target: target,
		rest:   target.Position,
	}
	m.actions = append(m.actions, action)
	return action
}

func (m *AnimationMixer) Update(delta float32) {
	dt := delta * m.TimeScale
	for _, a := range m.actions {
		if a.running {
			a.advance(dt)
		}
	}
}

// AnimationAction plays its clip once. With ClampWhenFinished the target
// holds the last frame, otherwise it snaps back to rest.
type AnimationAction struct {
	ClampWhenFinished bool

	clip     *AnimationClip
	target   *Node
	rest     mgl32.Vec3
	time     float32
	running  bool
	finished bool
}

func (a *AnimationAction) Clip() *AnimationClip { return a.clip }
func (a *AnimationAction) Target() *Node        { return a.target }
func (a *AnimationAction) Time() float32        { return a.time }
func (a *AnimationAction) IsRunning() bool      { return a.running }
func (a *AnimationAction) IsFinished() bool     { return a.finished }

// Play starts the action. Playing a running or finished action does nothing;
// Stop rewinds it.
func (a *AnimationAction) Play() {
	if a.running || a.finished {
		return
	}
	a.running = true
	a.apply()
}

// Stop rewinds the action and puts its target back at rest.
func (a *AnimationAction) Stop() {
	a.running = false
	a.finished = false
	a.time = 0
	a.target.Position = a.rest
}

func (a *AnimationAction) advance(dt float32) {
	a.time += dt
	if a.time >= a.clip.Duration {
		a.time = a.clip.Duration
		a.running = false
		a.finished = true
		if !a.ClampWhenFinished {
			a.target.Position = a.rest
			return
		}
	}
	a.apply()
}

func (a *AnimationAction) apply() {
	a.target.Position = a.rest.Add(a.clip.Sample(a.time))
}
