package corridor

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is where models and lights become visible.
type Scene interface {
	Add(node *Node)
	AddLight(light *PointLight)
	Remove(node *Node)
}

// SceneNode ties an entity to the scene graph root it mirrors.
type SceneNode struct {
	Node *Node
}

type SceneLight struct {
	Light *PointLight
}

// TransformComponent is the world transform of a scene entity, refreshed
// from its node every frame.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Visible  bool
}

// EcsScene registers scene objects as entities.
type EcsScene struct {
	cmd *Commands
}

func NewEcsScene(cmd *Commands) *EcsScene {
	return &EcsScene{cmd: cmd}
}

func (s *EcsScene) Add(node *Node) {
	s.cmd.AddEntity(SceneNode{Node: node}, transformOf(node))
}

func (s *EcsScene) AddLight(light *PointLight) {
	s.cmd.AddEntity(SceneLight{Light: light}, transformOf(light.Node), light.Component())
}

// Remove drops the entity mirroring node. Nodes added in the current stage
// are not visible to the query yet and stay.
func (s *EcsScene) Remove(node *Node) {
	MakeQuery1[SceneNode](s.cmd).Map(func(eid EntityId, sn *SceneNode) bool {
		if sn.Node != node {
			return true
		}
		s.cmd.RemoveEntity(eid)
		return false
	})
}

type SceneModule struct{}

func (SceneModule) Install(app *App, cmd *Commands) {
	app.addResources(NewEcsScene(app.Commands()))
	app.UseSystem(
		System(SceneSyncSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

// SceneSyncSystem copies node transforms and light parameters into their
// entities.
func SceneSyncSystem(cmd *Commands) {
	MakeQuery2[SceneNode, TransformComponent](cmd).Map(func(eid EntityId, node *SceneNode, tr *TransformComponent) bool {
		*tr = transformOf(node.Node)
		return true
	})
	MakeQuery2[SceneLight, TransformComponent](cmd).Map(func(eid EntityId, light *SceneLight, tr *TransformComponent) bool {
		*tr = transformOf(light.Light.Node)
		return true
	})
	MakeQuery2[SceneLight, LightComponent](cmd).Map(func(eid EntityId, light *SceneLight, lc *LightComponent) bool {
		*lc = light.Light.Component()
		return true
	})
}

func transformOf(node *Node) TransformComponent {
	pos, rot, scale := node.WorldTransform()
	return TransformComponent{
		Position: pos,
		Rotation: rot,
		Scale:    scale,
		Visible:  node.Visible,
	}
}
