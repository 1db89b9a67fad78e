package corridor

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type fixedMotion float32

func (m fixedMotion) MovingSpeed() float32 { return float32(m) }

type recordingScene struct {
	nodes  []*Node
	lights []*PointLight
}

func (s *recordingScene) Add(node *Node)             { s.nodes = append(s.nodes, node) }
func (s *recordingScene) AddLight(light *PointLight) { s.lights = append(s.lights, light) }

func (s *recordingScene) Remove(node *Node) {
	s.nodes = slices.DeleteFunc(s.nodes, func(n *Node) bool { return n == node })
}

func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

// gateModel is a frame with two sliding doors. The frame has no clip.
func gateModel() *ModelAsset {
	root := NewNode("gate")

	frame := NewNode("frame")
	frame.SetExtent(Box3{Min: mgl32.Vec3{-4, 0, -3}, Max: mgl32.Vec3{4, 6, 3}})
	root.Add(frame)

	left := NewNode("doorleft")
	left.Position = mgl32.Vec3{-1, 0, 0}
	left.SetExtent(Box3{Min: mgl32.Vec3{-1, 0, -0.2}, Max: mgl32.Vec3{1, 5, 0.2}})
	root.Add(left)

	right := NewNode("doorright")
	right.Position = mgl32.Vec3{1, 0, 0}
	right.SetExtent(Box3{Min: mgl32.Vec3{-1, 0, -0.2}, Max: mgl32.Vec3{1, 5, 0.2}})
	root.Add(right)

	return &ModelAsset{
		Root: root,
		Clips: []*AnimationClip{
			NewAnimationClip("door.left", []Keyframe{
				{Time: 0, Offset: mgl32.Vec3{0, 0, 0}},
				{Time: 2, Offset: mgl32.Vec3{-2, 0, 0}},
			}),
			NewAnimationClip("door.right", []Keyframe{
				{Time: 0, Offset: mgl32.Vec3{0, 0, 0}},
				{Time: 2, Offset: mgl32.Vec3{2, 0, 0}},
			}),
			NewAnimationClip("unused", nil),
		},
	}
}

// stubSet keeps going while active until told to stop.
type stubSet struct {
	name       string
	active     bool
	lastUsed   int
	notInitial bool
	transition *int
	stop       bool

	updates         int
	resets          int
	settingsUpdates int
	asNext          int
}

func (s *stubSet) Update(delta float32) bool {
	s.updates++
	return s.active && !s.stop
}

func (s *stubSet) Reset() {
	s.resets++
	s.active = false
	s.stop = false
	s.lastUsed = 0
}

func (s *stubSet) UpdateSettings(settings Settings) { s.settingsUpdates++ }

func (s *stubSet) SetAsNext() {
	s.asNext++
	s.active = true
}

func (s *stubSet) IsActive() bool        { return s.active }
func (s *stubSet) SetActive(active bool) { s.active = active }
func (s *stubSet) LastUsed() int         { return s.lastUsed }
func (s *stubSet) SetLastUsed(n int)     { s.lastUsed = n }
func (s *stubSet) NotInitial() bool      { return s.notInitial }

func (s *stubSet) Transition() (int, bool) {
	if s.transition == nil {
		return 0, false
	}
	return *s.transition, true
}

func slot(n int) *int { return &n }
