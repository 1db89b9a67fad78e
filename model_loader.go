package corridor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Model files describe a node tree and its position clips:
//
//	name: arch
//	nodes:
//	  - name: frame
//	    position: [0, 0, 0]
//	    extent: {min: [-3, 0, -4], max: [3, 5, 4]}
//	    children: [...]
//	clips:
//	  - name: door.left
//	    keyframes: [{time: 0, offset: [0, 0, 0]}, {time: 1.5, offset: [-2, 0, 0]}]
type modelFile struct {
	Name  string     `yaml:"name"`
	Nodes []nodeFile `yaml:"nodes"`
	Clips []clipFile `yaml:"clips"`
}

type nodeFile struct {
	Name     string      `yaml:"name"`
	Position mgl32.Vec3  `yaml:"position"`
	Scale    *mgl32.Vec3 `yaml:"scale"`
	Extent   *extentFile `yaml:"extent"`
	Children []nodeFile  `yaml:"children"`
}

type extentFile struct {
	Min mgl32.Vec3 `yaml:"min"`
	Max mgl32.Vec3 `yaml:"max"`
}

type clipFile struct {
	Name      string     `yaml:"name"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// YAMLModelLoader reads model files relative to Root.
type YAMLModelLoader struct {
	Root string
}

func (l YAMLModelLoader) LoadModel(ctx context.Context, path string) (*ModelAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.Root, path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading model %s", path)
	}
	return ParseModel(path, data)
}

func ParseModel(path string, data []byte) (*ModelAsset, error) {
	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing model %s", path)
	}

	name := file.Name
	if name == "" {
		name = filepath.Base(path)
	}
	root := NewNode(name)
	for _, n := range file.Nodes {
		root.Add(buildNode(n))
	}

	model := &ModelAsset{Path: path, Root: root}
	for _, c := range file.Clips {
		if c.Name == "" {
			return nil, errors.Errorf("model %s: clip without a name", path)
		}
		model.Clips = append(model.Clips, NewAnimationClip(c.Name, c.Keyframes))
	}
	return model, nil
}

func buildNode(f nodeFile) *Node {
	node := NewNode(f.Name)
	node.Position = f.Position
	if f.Scale != nil {
		node.Scale = *f.Scale
	}
	if f.Extent != nil {
		node.SetExtent(Box3{Min: f.Extent.Min, Max: f.Extent.Max})
	}
	for _, c := range f.Children {
		node.Add(buildNode(c))
	}
	return node
}
