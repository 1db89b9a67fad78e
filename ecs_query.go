package corridor

import (
	"reflect"
)

type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]       { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] { return Query2[A, B]{ecs: cmd.app.ecs} }

// Map visits every entity carrying A. Returning false from m stops the walk.
func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	id1 := identifyComponent[A](q.ecs)

	for _, arch := range q.ecs.archetypes {
		data, ok := arch.columns[id1]
		if !ok {
			continue
		}
		comps1 := data.([]A)

		for entityId, row := range arch.entities {
			if !m(entityId, &comps1[row]) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)

	for _, arch := range q.ecs.archetypes {
		data1, ok := arch.columns[id1]
		if !ok {
			continue
		}
		data2, ok := arch.columns[id2]
		if !ok {
			continue
		}
		comps1 := data1.([]A)
		comps2 := data2.([]B)

		for entityId, row := range arch.entities {
			if !m(entityId, &comps1[row], &comps2[row]) {
				return
			}
		}
	}
}

func identifyComponent[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}
