package corridor

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	transitionStartZ  float32 = -65
	transitionFinishZ float32 = 20
	// Sub-parts start animating once they scroll past this depth.
	animationTriggerZ   float32 = -5
	transitionTimeScale float32 = 0.5
)

type TransitionState int

const (
	TransitionDormant TransitionState = iota
	TransitionActivating
	TransitionPlaying
)

func (s TransitionState) String() string {
	switch s {
	case TransitionDormant:
		return "dormant"
	case TransitionActivating:
		return "activating"
	case TransitionPlaying:
		return "playing"
	}
	return "unknown"
}

// TransitionAnimation is one animated part of a transition and the action
// that moves it.
type TransitionAnimation struct {
	Part   *Node
	Action *AnimationAction
	active bool
}

func (a *TransitionAnimation) IsActive() bool { return a.active }

// Transition is a set piece that scrolls through between two environment
// sets.
type Transition struct {
	Name string

	model      *Node
	motion     MotionSource
	mixer      *AnimationMixer
	animations []*TransitionAnimation
	state      TransitionState
	size       mgl32.Vec3
}

// NewTransition pairs every direct child of the model with the clip named
// after it. Clip names may carry one extra "." that the part name lacks.
func NewTransition(name string, model *ModelAsset, motion MotionSource) *Transition {
	t := &Transition{
		Name:   name,
		model:  model.Root,
		motion: motion,
		mixer:  NewAnimationMixer(),
	}
	t.mixer.TimeScale = transitionTimeScale

	for _, child := range model.Root.Children() {
		clip := clipForPart(model.Clips, child.Name)
		if clip == nil {
			continue
		}
		action := t.mixer.ClipAction(clip, child)
		action.ClampWhenFinished = true
		t.animations = append(t.animations, &TransitionAnimation{Part: child, Action: action})
	}

	t.size = model.Root.WorldBounds().Size()
	return t
}

func clipForPart(clips []*AnimationClip, part string) *AnimationClip {
	for _, clip := range clips {
		if strings.Replace(clip.Name, ".", "", 1) == part {
			return clip
		}
	}
	return nil
}

func (t *Transition) Model() *Node                       { return t.model }
func (t *Transition) State() TransitionState             { return t.state }
func (t *Transition) IsActive() bool                     { return t.state != TransitionDormant }
func (t *Transition) Animations() []*TransitionAnimation { return t.animations }

// Size is the extent of the model as loaded.
func (t *Transition) Size() mgl32.Vec3 { return t.size }

// Bounds is the live world box while active. Inactive transitions report a
// box at negative infinity so no range check ever matches them.
func (t *Transition) Bounds() Box3 {
	if !t.IsActive() {
		return FarBox3()
	}
	return t.model.WorldBounds()
}

// Activate shows the transition at its start depth with every part rewound.
// Activating a playing transition restarts it.
func (t *Transition) Activate() {
	t.state = TransitionActivating
	t.model.Position = mgl32.Vec3{t.model.Position.X(), t.model.Position.Y(), transitionStartZ}
	t.model.Visible = true
	for _, anim := range t.animations {
		anim.Action.Stop()
		anim.active = false
	}
}

func (t *Transition) Update(delta float32) {
	if !t.IsActive() {
		return
	}
	t.state = TransitionPlaying

	t.mixer.Update(delta)
	pos := t.model.Position
	t.model.Position = mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + t.motion.MovingSpeed()*delta}

	for _, anim := range t.animations {
		if anim.Part.WorldPosition().Z() >= animationTriggerZ {
			anim.active = true
			anim.Action.Play()
		}
	}

	if t.model.Position.Z() >= transitionFinishZ {
		t.state = TransitionDormant
		t.model.Visible = false
	}
}

func (t *Transition) Reset() {
	t.state = TransitionDormant
	t.model.Visible = false
}

// Hide takes the model out of view without touching its state.
func (t *Transition) Hide() {
	t.model.Visible = false
}
