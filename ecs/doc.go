// Package ecs bridges canopy interaction events into a [Donburi] world.
//
// [NewDonburiStore] publishes every event that hits an object with a
// non-zero EntityID as an [InteractionEventType] event. [DonburiStore.Link]
// creates an entity for a game object and sets the object's EntityID, so
// systems can get back from an event to the entity and its object.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	pipeline.SetEntityStore(store)
//	store.Link(button.Base())
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
