package corridor

import "github.com/go-gl/mathgl/mgl32"

const (
	// Lights scrolled to this depth are behind the camera and get recycled.
	lightRecycleZ float32 = 10
	// DefaultLampIntensity is the intensity of a lit lamp.
	DefaultLampIntensity float32 = 5.2
)

// PoolLight is a reusable point light. Inactive members keep their light in
// the scene at zero intensity instead of removing it.
type PoolLight struct {
	light           *PointLight
	activeIntensity float32
	active          bool

	// lease counts activations, so a holder can tell whether the light was
	// recycled and handed out again since it took it.
	lease uint64
}

func NewPoolLight(light *PointLight, activeIntensity float32) *PoolLight {
	return &PoolLight{
		light:           light,
		activeIntensity: activeIntensity,
	}
}

func (p *PoolLight) IsActive() bool { return p.active }

func (p *PoolLight) Light() *PointLight { return p.light }

func (p *PoolLight) Position() mgl32.Vec3 { return p.light.Node.Position }

func (p *PoolLight) Lease() uint64 { return p.lease }

func (p *PoolLight) Activate(position mgl32.Vec3) {
	p.light.Intensity = p.activeIntensity
	p.active = true
	p.lease++
	p.light.Node.Position = position
}

func (p *PoolLight) Deactivate() {
	p.light.Intensity = 0
	p.active = false
}

// MoveBy scrolls the light along z and recycles it once it passes the camera.
func (p *PoolLight) MoveBy(z float32) {
	pos := p.light.Node.Position
	p.light.Node.Position = mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + z}
	if p.light.Node.Position.Z() >= lightRecycleZ {
		p.Deactivate()
	}
}
