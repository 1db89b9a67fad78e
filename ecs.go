package corridor

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int

// Ecs is the archetype store behind the scene container. Entities live in
// the archetype matching their exact component set. It is only touched from
// the tick goroutine.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId
	nextId      EntityId
	components  componentRegistry
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:  make(map[archetypeId]*archetype),
		entityIndex: make(map[EntityId]archetypeId),
		components:  componentRegistry{ids: make(map[reflect.Type]componentId)},
	}
}

// componentRegistry hands out dense ids to component struct types.
type componentRegistry struct {
	ids   map[reflect.Type]componentId
	types []reflect.Type
}

func (r *componentRegistry) idOf(t reflect.Type) componentId {
	if id, ok := r.ids[t]; ok {
		return id
	}
	id := componentId(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	return id
}

func (r *componentRegistry) typeOf(id componentId) reflect.Type {
	return r.types[id]
}

// archetype stores one column per component type. Rows of removed entities
// go to free and are handed out again before a column grows.
type archetype struct {
	id       archetypeId
	key      archetypeKey
	entities map[EntityId]row
	columns  map[componentId]any // []T for the component type T
	free     []row
	rows     int
}

// componentValue unwraps a component passed by value or by pointer. Anything
// that is not a struct is a programming error.
func componentValue(component any) reflect.Value {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic(fmt.Errorf("component must be a struct or a pointer to one, got %T", component))
	}
	return v
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	values := make([]reflect.Value, len(components))
	key := make(archetypeKey, len(components))
	for i, component := range components {
		values[i] = componentValue(component)
		key[i] = ecs.components.idOf(values[i].Type())
	}

	arch := ecs.archetypeFor(normalizeArchetypeKey(key))
	r := arch.takeRow(ecs)
	arch.entities[entityId] = r
	for i, v := range values {
		reflectSliceSet(arch.columns[key[i]], int(r), v)
	}

	ecs.entityIndex[entityId] = arch.id
	return entityId
}

// removeEntity frees the entity's row and zeroes it so removed components
// do not keep their referents alive. Unknown ids are ignored.
func (ecs *Ecs) removeEntity(entityId EntityId) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	arch := ecs.archetypes[archId]

	r := arch.entities[entityId]
	for compId, column := range arch.columns {
		reflectSliceSet(column, int(r), reflect.Zero(ecs.components.typeOf(compId)))
	}
	arch.free = append(arch.free, r)
	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) archetypeFor(key archetypeKey) *archetype {
	id := getArchetypeId(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return arch
	}

	arch := &archetype{
		id:       id,
		key:      key,
		entities: make(map[EntityId]row),
		columns:  make(map[componentId]any, len(key)),
	}
	for _, compId := range key {
		arch.columns[compId] = reflectSliceMake(ecs.components.typeOf(compId))
	}
	ecs.archetypes[id] = arch
	return arch
}

func (arch *archetype) takeRow(ecs *Ecs) row {
	if n := len(arch.free); n > 0 {
		r := arch.free[n-1]
		arch.free = arch.free[:n-1]
		return r
	}

	r := row(arch.rows)
	arch.rows++
	for _, compId := range arch.key {
		arch.columns[compId] = reflectSliceAppend(arch.columns[compId], reflect.Zero(ecs.components.typeOf(compId)))
	}
	return r
}

// normalizeArchetypeKey sorts the component ids and drops duplicates, so the
// same component set always maps to the same archetype.
func normalizeArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	buf := make([]byte, 0, 4*len(key))
	for _, compId := range key {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(compId))
	}
	hash.Write(buf)
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	id := ecs.nextId
	ecs.nextId++
	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	return ecs.components.idOf(componentType)
}

// EntityCount reports the number of live entities.
func (ecs *Ecs) EntityCount() int {
	return len(ecs.entityIndex)
}
