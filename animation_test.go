package corridor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func slideClip(name string) *AnimationClip {
	return NewAnimationClip(name, []Keyframe{
		{Time: 2, Offset: mgl32.Vec3{4, 0, 0}},
		{Time: 0, Offset: mgl32.Vec3{0, 0, 0}},
	})
}

func TestAnimationClip_Sample(t *testing.T) {
	clip := slideClip("slide")

	assert.Equal(t, float32(2), clip.Duration)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, clip.Sample(-1))
	assert.True(t, clip.Sample(1).ApproxEqual(mgl32.Vec3{2, 0, 0}))
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, clip.Sample(5))

	assert.Equal(t, mgl32.Vec3{}, NewAnimationClip("empty", nil).Sample(1))
}

func TestAnimationAction_PlayOnceClamps(t *testing.T) {
	part := NewNode("door")
	part.Position = mgl32.Vec3{1, 0, 0}

	mixer := NewAnimationMixer()
	action := mixer.ClipAction(slideClip("slide"), part)
	action.ClampWhenFinished = true

	mixer.Update(1)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, part.Position, "idle actions do not move their target")

	action.Play()
	mixer.Update(1)
	assert.True(t, part.Position.ApproxEqual(mgl32.Vec3{3, 0, 0}))

	mixer.Update(5)
	assert.True(t, action.IsFinished())
	assert.False(t, action.IsRunning())
	assert.True(t, part.Position.ApproxEqual(mgl32.Vec3{5, 0, 0}))

	// a finished action is not replayed
	action.Play()
	mixer.Update(1)
	assert.True(t, part.Position.ApproxEqual(mgl32.Vec3{5, 0, 0}))

	action.Stop()
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, part.Position)
	assert.Zero(t, action.Time())
	assert.False(t, action.IsFinished())
}

func TestAnimationAction_WithoutClampReturnsToRest(t *testing.T) {
	part := NewNode("door")
	mixer := NewAnimationMixer()
	action := mixer.ClipAction(slideClip("slide"), part)

	action.Play()
	mixer.Update(3)
	assert.True(t, action.IsFinished())
	assert.Equal(t, mgl32.Vec3{}, part.Position)
}

func TestAnimationMixer_TimeScale(t *testing.T) {
	part := NewNode("door")
	mixer := NewAnimationMixer()
	mixer.TimeScale = 0.5
	action := mixer.ClipAction(slideClip("slide"), part)
	action.Play()

	mixer.Update(2)
	assert.InDelta(t, 1, action.Time(), 1e-5)
	assert.True(t, part.Position.ApproxEqual(mgl32.Vec3{2, 0, 0}))
}

func TestAnimationMixer_ClipActionDedupes(t *testing.T) {
	part := NewNode("door")
	clip := slideClip("slide")
	mixer := NewAnimationMixer()

	a := mixer.ClipAction(clip, part)
	b := mixer.ClipAction(clip, part)
	assert.Same(t, a, b)

	a.Play()
	mixer.Update(1)
	assert.InDelta(t, 1, b.Time(), 1e-5, "one action advanced once")
}
