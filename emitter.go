package canopy

// Event carries the data for a single emitted event. Pointer fields are
// zero for key events and Key is empty for pointer events.
type Event struct {
	Type   EventType
	Target *GameObject

	// Pointer position in world space and in Target's local space.
	GlobalX, GlobalY float64
	LocalX, LocalY   float64

	// Pointer position on the surface, before camera mapping.
	ScreenX, ScreenY float64

	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd).
	// StartX/Y and DeltaX/Y are in world space; ScreenDeltaX/Y is the same
	// movement in surface pixels, unaffected by camera zoom or rotation.
	StartX, StartY             float64
	DeltaX, DeltaY             float64
	ScreenDeltaX, ScreenDeltaY float64

	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers

	// Key is the symbolic key code for EventKeyDown and EventKeyUp.
	Key string
}

type handler struct {
	id   uint32
	fn   func(Event)
	once bool
}

// Emitter is a synchronous publish/subscribe registry keyed by EventType.
// Handlers for the same event run in registration order.
type Emitter struct {
	handlers [numEventTypes][]handler
	nextID   uint32
}

// Handle allows removing a registered handler.
type Handle struct {
	id    uint32
	em    *Emitter
	event EventType
}

// Remove unregisters the handler so it no longer fires. Safe to call more
// than once and on the zero Handle.
func (h Handle) Remove() {
	if h.em == nil {
		return
	}
	h.em.off(h.event, h.id)
}

// On registers fn for events of type t.
func (e *Emitter) On(t EventType, fn func(Event)) Handle {
	return e.add(t, fn, false)
}

// Once registers fn to run for the next event of type t only.
func (e *Emitter) Once(t EventType, fn func(Event)) Handle {
	return e.add(t, fn, true)
}

// Emit delivers ev to every handler registered for t. Handlers added or
// removed during dispatch take effect on the next Emit.
func (e *Emitter) Emit(t EventType, ev Event) {
	if t >= numEventTypes || len(e.handlers[t]) == 0 {
		return
	}
	ev.Type = t
	hs := e.handlers[t]
	snapshot := make([]handler, len(hs))
	copy(snapshot, hs)
	for _, h := range snapshot {
		if h.once {
			e.off(t, h.id)
		}
		h.fn(ev)
	}
}

// HasHandlers reports whether any handler is registered for t.
func (e *Emitter) HasHandlers(t EventType) bool {
	return t < numEventTypes && len(e.handlers[t]) > 0
}

// RemoveAllHandlers drops every registered handler.
func (e *Emitter) RemoveAllHandlers() {
	for i := range e.handlers {
		e.handlers[i] = nil
	}
}

func (e *Emitter) add(t EventType, fn func(Event), once bool) Handle {
	if t >= numEventTypes {
		panic("canopy: unknown event type")
	}
	e.nextID++
	id := e.nextID
	e.handlers[t] = append(e.handlers[t], handler{id: id, fn: fn, once: once})
	return Handle{id: id, em: e, event: t}
}

// off removes the entry from the slice to avoid nil iteration waste.
func (e *Emitter) off(t EventType, id uint32) {
	s := e.handlers[t]
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handler{}
			e.handlers[t] = s[:len(s)-1]
			return
		}
	}
}
