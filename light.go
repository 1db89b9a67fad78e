package corridor

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS mirror of a light, refreshed every frame by the
// scene sync system.
type LightComponent struct {
	Type      LightType
	Color     [3]float32 // RGB
	Intensity float32
	Range     float32 // 0 means unlimited
	Decay     float32
	Enabled   bool
}

// PointLight is a light source placed in the scene graph.
type PointLight struct {
	Node       *Node
	Color      [3]float32
	Intensity  float32
	Range      float32
	Decay      float32
	CastShadow bool
}

func NewPointLight(name string, color [3]float32, intensity, lightRange, decay float32) *PointLight {
	return &PointLight{
		Node:      NewNode(name),
		Color:     color,
		Intensity: intensity,
		Range:     lightRange,
		Decay:     decay,
	}
}

func (l *PointLight) Component() LightComponent {
	return LightComponent{
		Type:      LightTypePoint,
		Color:     l.Color,
		Intensity: l.Intensity,
		Range:     l.Range,
		Decay:     l.Decay,
		Enabled:   l.Intensity > 0 && l.Node.Visible,
	}
}
