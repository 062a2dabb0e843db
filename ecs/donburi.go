package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for canopy interaction
// events. Subscribe to it in your ECS systems to receive pointer, click,
// drag and key events.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

// ObjectData links an entity to its game object.
type ObjectData struct {
	Object *canopy.GameObject
}

// Object is the component holding the linked game object.
var Object = donburi.NewComponentType[ObjectData]()

// DonburiStore is a canopy.EntityStore backed by a Donburi world.
type DonburiStore struct {
	world  donburi.World
	linked map[uint32]donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by world. Interaction events
// are published to InteractionEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, linked: make(map[uint32]donburi.Entity)}
}

// World returns the backing world.
func (s *DonburiStore) World() donburi.World {
	return s.world
}

// EmitEvent implements canopy.EntityStore.
func (s *DonburiStore) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// Link creates an entity carrying the Object component plus any extra
// components, and stamps obj.EntityID with the entity's id.
func (s *DonburiStore) Link(obj *canopy.GameObject, components ...donburi.IComponentType) donburi.Entity {
	e := s.world.Create(append([]donburi.IComponentType{Object}, components...)...)
	Object.SetValue(s.world.Entry(e), ObjectData{Object: obj})
	id := uint32(e.Id())
	obj.EntityID = id
	s.linked[id] = e
	return e
}

// Unlink removes obj's entity from the world and clears obj.EntityID.
func (s *DonburiStore) Unlink(obj *canopy.GameObject) {
	e, ok := s.linked[obj.EntityID]
	if !ok {
		return
	}
	delete(s.linked, obj.EntityID)
	obj.EntityID = 0
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
}

// Entry returns the live entry for an event's entity.
func (s *DonburiStore) Entry(event canopy.InteractionEvent) (*donburi.Entry, bool) {
	e, ok := s.linked[event.EntityID]
	if !ok || !s.world.Valid(e) {
		return nil, false
	}
	return s.world.Entry(e), true
}
