package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	var _ canopy.EntityStore = NewDonburiStore(donburi.NewWorld())
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []canopy.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		received = append(received, e)
	})

	store.EmitEvent(canopy.InteractionEvent{
		Type:     canopy.EventPointerDown,
		EntityID: 42,
		GlobalX:  100,
		GlobalY:  200,
		Button:   canopy.MouseButtonLeft,
	})
	store.EmitEvent(canopy.InteractionEvent{Type: canopy.EventKeyDown, Key: "Space"})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before processing: %d", len(received))
	}
	InteractionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != canopy.EventPointerDown || e0.EntityID != 42 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.GlobalX != 100 || e0.GlobalY != 200 {
		t.Errorf("event 0 position: (%v,%v)", e0.GlobalX, e0.GlobalY)
	}
	if received[1].Key != "Space" {
		t.Errorf("event 1 key = %q", received[1].Key)
	}
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		count1++
	})
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		count2++
	})

	store.EmitEvent(canopy.InteractionEvent{Type: canopy.EventClick})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiStore_LinkAndEntry(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	obj := canopy.NewGameObject("button")

	e := store.Link(obj)
	if obj.EntityID != uint32(e.Id()) {
		t.Fatalf("EntityID = %d, want %d", obj.EntityID, e.Id())
	}

	entry, ok := store.Entry(canopy.InteractionEvent{EntityID: obj.EntityID})
	if !ok {
		t.Fatal("Entry not found for linked object")
	}
	if got := Object.Get(entry).Object; got != obj {
		t.Errorf("Object component = %v, want %v", got, obj)
	}

	store.Unlink(obj)
	if obj.EntityID != 0 {
		t.Errorf("EntityID after Unlink = %d, want 0", obj.EntityID)
	}
	if world.Valid(e) {
		t.Error("entity still valid after Unlink")
	}
	if _, ok := store.Entry(canopy.InteractionEvent{EntityID: uint32(e.Id())}); ok {
		t.Error("Entry found after Unlink")
	}
}

func TestDonburiStore_PipelineForwardsClicks(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	p := canopy.NewPipeline()
	p.SetEntityStore(store)
	btn := canopy.NewShapeObject("btn", &canopy.RectShape{Width: 20, Height: 20})
	btn.SetPosition(10, 10)
	btn.SetInteractive(true)
	btn.EntityID = 7
	p.Add(btn)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	var types []canopy.EventType
	InteractionEventType.Subscribe(world, func(w donburi.World, e canopy.InteractionEvent) {
		if e.EntityID == 7 {
			types = append(types, e.Type)
		}
	})

	p.HandlePointer(canopy.PointerEvent{Kind: canopy.PointerDown, X: 15, Y: 15})
	p.HandlePointer(canopy.PointerEvent{Kind: canopy.PointerUp, X: 15, Y: 15})
	InteractionEventType.ProcessEvents(world)

	var sawClick bool
	for _, tp := range types {
		if tp == canopy.EventClick {
			sawClick = true
		}
	}
	if !sawClick {
		t.Errorf("click not forwarded, got %v", types)
	}
}
