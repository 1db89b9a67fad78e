package corridor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_WorldTransformHierarchy(t *testing.T) {
	parent := NewNode("parent")
	parent.Position = mgl32.Vec3{10, 0, 0}

	child := NewNode("child")
	child.Position = mgl32.Vec3{0, 5, 0}
	parent.Add(child)

	grandchild := NewNode("grandchild")
	grandchild.Position = mgl32.Vec3{0, 0, 2}
	child.Add(grandchild)

	assert.True(t, child.WorldPosition().ApproxEqual(mgl32.Vec3{10, 5, 0}))
	assert.True(t, grandchild.WorldPosition().ApproxEqual(mgl32.Vec3{10, 5, 2}))
}

func TestNode_WorldTransformRotationAndScale(t *testing.T) {
	parent := NewNode("parent")
	parent.Position = mgl32.Vec3{0, 0, 0}
	parent.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	parent.Scale = mgl32.Vec3{2, 2, 2}

	child := NewNode("child")
	child.Position = mgl32.Vec3{1, 0, 0}
	parent.Add(child)

	pos, _, scale := child.WorldTransform()
	assertVec3InDelta(t, mgl32.Vec3{0, 0, -2}, pos, 1e-5)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, scale)
}

func TestNode_AddReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	child := NewNode("child")

	a.Add(child)
	b.Add(child)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{child}, b.Children())
	assert.Same(t, b, child.Parent())
}

func TestNode_Find(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	root.Add(mid)
	mid.Add(leaf)

	assert.Same(t, leaf, root.Find("leaf"))
	assert.Nil(t, root.Find("missing"))
}

func TestNode_WorldBounds(t *testing.T) {
	root := NewNode("root")
	root.Position = mgl32.Vec3{0, 0, -65}

	part := NewNode("part")
	part.Position = mgl32.Vec3{0, 0, 4}
	part.SetExtent(Box3{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}})
	root.Add(part)

	bounds := root.WorldBounds()
	assert.True(t, bounds.Min.ApproxEqual(mgl32.Vec3{-1, 0, -65}), "min %v", bounds.Min)
	assert.True(t, bounds.Max.ApproxEqual(mgl32.Vec3{1, 2, -60}), "max %v", bounds.Max)
}

func TestBox3_EmptyAndFar(t *testing.T) {
	empty := EmptyBox3()
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, empty.Size())

	p := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, Box3{Min: p, Max: p}, empty.ExpandByPoint(p))

	far := FarBox3()
	require.True(t, math.IsInf(float64(far.Min.Z()), -1))
	for _, z := range []float32{-1e9, -65, 0, 10, 1e9} {
		assert.False(t, far.SpansZ(z, 1.5), "z=%v", z)
	}
}

func TestBox3_SpansZ(t *testing.T) {
	b := Box3{Min: mgl32.Vec3{0, 0, -70}, Max: mgl32.Vec3{0, 0, -60}}

	assert.True(t, b.SpansZ(-65, 1.5))
	assert.True(t, b.SpansZ(-58.5, 1.5))
	assert.True(t, b.SpansZ(-71.5, 1.5))
	assert.False(t, b.SpansZ(-58.4, 1.5))
	assert.False(t, b.SpansZ(-71.6, 1.5))
}

func TestBox3_Union(t *testing.T) {
	a := Box3{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := Box3{Min: mgl32.Vec3{-1, 2, 0}, Max: mgl32.Vec3{0, 3, 5}}

	u := a.Union(b)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{1, 3, 5}, u.Max)
	assert.Equal(t, a, a.Union(EmptyBox3()))
}
