package corridor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// Box3 is an axis-aligned box in world space.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox3 contains nothing; expanding it by a point yields that point.
func EmptyBox3() Box3 {
	return Box3{
		Min: mgl32.Vec3{posInf, posInf, posInf},
		Max: mgl32.Vec3{negInf, negInf, negInf},
	}
}

// FarBox3 sits entirely at negative infinity. Range checks against it never
// match, which makes it a safe stand-in for geometry that is not in the world.
func FarBox3() Box3 {
	return Box3{
		Min: mgl32.Vec3{negInf, negInf, negInf},
		Max: mgl32.Vec3{negInf, negInf, negInf},
	}
}

func (b Box3) IsEmpty() bool {
	return b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() || b.Max.Z() < b.Min.Z()
}

func (b Box3) ExpandByPoint(p mgl32.Vec3) Box3 {
	return Box3{
		Min: mgl32.Vec3{min(b.Min.X(), p.X()), min(b.Min.Y(), p.Y()), min(b.Min.Z(), p.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), p.X()), max(b.Max.Y(), p.Y()), max(b.Max.Z(), p.Z())},
	}
}

func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

func (b Box3) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b Box3) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

// SpansZ reports whether z lies within the box's depth range padded by margin
// on both ends.
func (b Box3) SpansZ(z, margin float32) bool {
	return z <= b.Max.Z()+margin && z >= b.Min.Z()-margin
}

// Node is a scene graph element with a local transform relative to its parent.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Visible  bool

	extent    Box3
	hasExtent bool
	parent    *Node
	children  []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
		extent:   EmptyBox3(),
	}
}

// Add reparents child under n.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// SetExtent sets the node's own geometry bounds in local space.
func (n *Node) SetExtent(b Box3) {
	n.extent = b
	n.hasExtent = !b.IsEmpty()
}

func (n *Node) Extent() (Box3, bool) {
	return n.extent, n.hasExtent
}

// WorldTransform composes the transforms from the root down to n.
func (n *Node) WorldTransform() (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if n.parent == nil {
		return n.Position, n.Rotation, n.Scale
	}

	parentPos, parentRot, parentScale := n.parent.WorldTransform()

	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		n.Position.X() * parentScale.X(),
		n.Position.Y() * parentScale.Y(),
		n.Position.Z() * parentScale.Z(),
	}
	pos := parentPos.Add(parentRot.Rotate(scaledLocalPos))
	rot := parentRot.Mul(n.Rotation).Normalize()
	scale := mgl32.Vec3{
		parentScale.X() * n.Scale.X(),
		parentScale.Y() * n.Scale.Y(),
		parentScale.Z() * n.Scale.Z(),
	}
	return pos, rot, scale
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	pos, _, _ := n.WorldTransform()
	return pos
}

func (n *Node) localToWorld(p mgl32.Vec3) mgl32.Vec3 {
	pos, rot, scale := n.WorldTransform()
	return pos.Add(rot.Rotate(mgl32.Vec3{p.X() * scale.X(), p.Y() * scale.Y(), p.Z() * scale.Z()}))
}

// WorldBounds covers the world position of every node in the subtree plus
// the transformed extents of those that have geometry.
func (n *Node) WorldBounds() Box3 {
	bounds := EmptyBox3()
	n.Walk(func(node *Node) bool {
		bounds = bounds.ExpandByPoint(node.WorldPosition())
		if node.hasExtent {
			bounds = bounds.Union(node.worldExtent())
		}
		return true
	})
	return bounds
}

// worldExtent is the world-aligned box around the node's transformed extent.
func (n *Node) worldExtent() Box3 {
	box := EmptyBox3()
	for _, corner := range n.extent.Corners() {
		box = box.ExpandByPoint(n.localToWorld(corner))
	}
	return box
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}
