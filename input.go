package canopy

import "math"

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// PointerKind distinguishes pointer event phases.
type PointerKind uint8

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is a normalized pointer event in surface coordinates.
// ID 0 is the mouse; 1-9 are touch slots.
type PointerEvent struct {
	ID        int
	Kind      PointerKind
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// KeyEvent is a discrete key press or release identified by a symbolic code
// such as "A", "Space" or "ArrowLeft".
type KeyEvent struct {
	Code      string
	Down      bool
	Modifiers KeyModifiers
}

// EntityStore is the interface for optional ECS integration.
// When set on a Pipeline, interaction events on objects with a non-zero
// EntityID are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
	// Key is set for EventKeyDown and EventKeyUp.
	Key string
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	startSX  float64 // surface-space press position
	startSY  float64
	lastSX   float64 // surface-space last position
	lastSY   float64
	hit      *GameObject
	hover    *GameObject // last object the pointer was hovering over
	dragging bool
	button   MouseButton // button captured at press time
}

// inputState holds pointer resolution state for a Pipeline.
type inputState struct {
	pointers     [maxPointers]pointerState
	captured     [maxPointers]*GameObject
	hitBuf       []*GameObject
	dragDeadZone float64
	focused      *GameObject
}

func (in *inputState) reset() {
	in.pointers = [maxPointers]pointerState{}
	in.captured = [maxPointers]*GameObject{}
	in.hitBuf = in.hitBuf[:0]
	in.focused = nil
}

// CapturePointer routes all events for pointerID to o until release.
func (p *Pipeline) CapturePointer(pointerID int, o Object) {
	if pointerID >= 0 && pointerID < maxPointers && o != nil {
		p.input.captured[pointerID] = o.Base()
	}
}

// ReleasePointer stops routing events for pointerID to a captured object.
func (p *Pipeline) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		p.input.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (p *Pipeline) SetDragDeadZone(pixels float64) {
	p.input.dragDeadZone = pixels
}

// Focused returns the object receiving key events: the target of the most
// recent pointer down, or nil.
func (p *Pipeline) Focused() *GameObject {
	if f := p.input.focused; f != nil && f.disposed {
		p.input.focused = nil
	}
	return p.input.focused
}

// SetFocus makes o the key event target. nil clears focus.
func (p *Pipeline) SetFocus(o Object) {
	if o == nil {
		p.input.focused = nil
		return
	}
	p.input.focused = o.Base()
}

// --- Hit testing ---

// collectInteractive walks the tree in paint order, appending objects that
// can be hit to buf. Hidden or non-interactive subtrees are skipped.
func collectInteractive(o Object, buf []*GameObject) []*GameObject {
	b := o.Base()
	if !b.Visible || !b.interactive || b.disposed {
		return buf
	}
	if b.HitShape != nil || (b.Width > 0 && b.Height > 0) {
		buf = append(buf, b)
	}
	if c := asContainer(o); c != nil {
		for _, child := range c.paintOrder() {
			buf = collectInteractive(child, buf)
		}
	}
	return buf
}

// hitTest finds the topmost object at world (wx, wy), or nil.
func (p *Pipeline) hitTest(wx, wy float64) *GameObject {
	p.input.hitBuf = collectInteractive(p.root, p.input.hitBuf[:0])
	for i := len(p.input.hitBuf) - 1; i >= 0; i-- {
		if g := p.input.hitBuf[i]; g.HitTest(wx, wy) {
			return g
		}
	}
	return nil
}

// ObjectAt returns the topmost interactive object under the surface point
// (sx, sy), or nil.
func (p *Pipeline) ObjectAt(sx, sy float64) *GameObject {
	wx, wy := p.screenToWorld(sx, sy)
	return p.hitTest(wx, wy)
}

// screenToWorld converts surface coordinates to world coordinates using the
// topmost camera whose viewport contains the point, or the first camera.
func (p *Pipeline) screenToWorld(sx, sy float64) (float64, float64) {
	if len(p.cameras) == 0 {
		return sx, sy
	}
	cam := p.cameras[0]
	for i := len(p.cameras) - 1; i >= 0; i-- {
		if p.cameras[i].Viewport.Contains(sx, sy) {
			cam = p.cameras[i]
			break
		}
	}
	return cam.ScreenToWorld(sx, sy)
}

// --- Input processing ---

// HandlePointer resolves a pointer event against the scene and dispatches
// the resulting events. Events are ignored unless the pipeline is running.
func (p *Pipeline) HandlePointer(ev PointerEvent) {
	if !p.Running() || ev.ID < 0 || ev.ID >= maxPointers {
		return
	}
	wx, wy := p.screenToWorld(ev.X, ev.Y)
	ps := &p.input.pointers[ev.ID]
	pressed := ps.down
	switch ev.Kind {
	case PointerDown:
		pressed = true
	case PointerUp:
		pressed = false
	}
	p.processPointer(ev, wx, wy, pressed)
}

// HandleKey dispatches a key event to pipeline handlers and the focused
// object.
func (p *Pipeline) HandleKey(ev KeyEvent) {
	if !p.Running() || ev.Code == "" {
		return
	}
	t := EventKeyUp
	if ev.Down {
		t = EventKeyDown
	}
	p.dispatch(t, p.Focused(), Event{Key: ev.Code, Modifiers: ev.Modifiers})
}

// processPointer runs the pointer state machine for a single pointer.
// pe carries the surface position; wx, wy is the same point in world space.
func (p *Pipeline) processPointer(pe PointerEvent, wx, wy float64, pressed bool) {
	in := &p.input
	pointerID, button := pe.ID, pe.Button
	sx, sy := pe.X, pe.Y
	ps := &in.pointers[pointerID]

	// Determine target object: captured object or hit test.
	var target *GameObject
	if c := in.captured[pointerID]; c != nil && !c.disposed {
		target = c
	} else {
		in.captured[pointerID] = nil
		target = p.hitTest(wx, wy)
	}

	base := Event{
		GlobalX: wx, GlobalY: wy,
		ScreenX: sx, ScreenY: sy,
		PointerID: pointerID,
		Modifiers: pe.Modifiers,
	}

	// Only the top-most hit is hovered. The hovered flag is shared by all
	// pointers, so it clears only when no pointer rests on the object.
	if target != ps.hover {
		old := ps.hover
		ps.hover = target
		if old != nil && old.hovered && !in.hoveredByAny(old) {
			old.hovered = false
			ev := base
			ev.Button = button
			p.dispatch(EventMouseOut, old, ev)
		}
		if target != nil && !target.hovered {
			target.hovered = true
			ev := base
			ev.Button = button
			p.dispatch(EventMouseOver, target, ev)
		}
	}

	switch {
	case pressed && !ps.down:
		// Just pressed; capture button for the duration of this interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.startSX, ps.startSY = sx, sy
		ps.lastSX, ps.lastSY = sx, sy
		ps.hit = target
		ps.dragging = false
		in.focused = target

		ev := base
		ev.Button = ps.button
		p.dispatch(EventPointerDown, target, ev)

	case !pressed && ps.down:
		ev := base
		ev.Button = ps.button
		if ps.dragging {
			drag := ev
			drag.StartX, drag.StartY = ps.startX, ps.startY
			drag.DeltaX, drag.DeltaY = wx-ps.lastX, wy-ps.lastY
			drag.ScreenDeltaX, drag.ScreenDeltaY = sx-ps.lastSX, sy-ps.lastSY
			p.dispatch(EventDragEnd, ps.hit, drag)
		} else if ps.hit != nil && ps.hit == target {
			p.dispatch(EventClick, target, ev)
		}
		p.dispatch(EventPointerUp, target, ev)

		// Auto-release capture.
		in.captured[pointerID] = nil
		ps.down = false
		ps.hit = nil
		ps.dragging = false
		ps.lastX, ps.lastY = wx, wy
		ps.lastSX, ps.lastSY = sx, sy

	case pressed && ps.down:
		if wx == ps.lastX && wy == ps.lastY {
			break
		}
		ev := base
		ev.Button = ps.button
		ev.StartX, ev.StartY = ps.startX, ps.startY
		if !ps.dragging {
			dx := wx - ps.startX
			dy := wy - ps.startY
			if math.Sqrt(dx*dx+dy*dy) > in.dragDeadZone {
				ps.dragging = true
				start := ev
				start.DeltaX, start.DeltaY = dx, dy
				start.ScreenDeltaX, start.ScreenDeltaY = sx-ps.startSX, sy-ps.startSY
				p.dispatch(EventDragStart, ps.hit, start)
			}
		}
		if ps.dragging {
			ev.DeltaX, ev.DeltaY = wx-ps.lastX, wy-ps.lastY
			ev.ScreenDeltaX, ev.ScreenDeltaY = sx-ps.lastSX, sy-ps.lastSY
			p.dispatch(EventDrag, ps.hit, ev)
		}
		ps.lastX, ps.lastY = wx, wy
		ps.lastSX, ps.lastSY = sx, sy

	default:
		// Hover move.
		if wx != ps.lastX || wy != ps.lastY {
			ev := base
			ev.Button = button
			p.dispatch(EventPointerMove, target, ev)
			ps.lastX, ps.lastY = wx, wy
			ps.lastSX, ps.lastSY = sx, sy
		}
	}
}

// hoveredByAny reports whether any pointer currently hovers o.
func (in *inputState) hoveredByAny(o *GameObject) bool {
	for i := range in.pointers {
		if in.pointers[i].hover == o {
			return true
		}
	}
	return false
}

// --- Event dispatch ---

// dispatch delivers ev to pipeline handlers first, then to target, then to
// the ECS bridge.
func (p *Pipeline) dispatch(t EventType, target *GameObject, ev Event) {
	ev.Type = t
	ev.Target = target
	if target != nil && t != EventKeyDown && t != EventKeyUp {
		if lx, ly, ok := target.WorldToLocal(ev.GlobalX, ev.GlobalY); ok {
			ev.LocalX, ev.LocalY = lx, ly
		}
	}
	p.handlers.Emit(t, ev)
	if target != nil && !target.disposed {
		target.Emit(t, ev)
	}
	p.emitInteractionEvent(target, ev)
}

func (p *Pipeline) emitInteractionEvent(target *GameObject, ev Event) {
	if p.store == nil || target == nil || target.EntityID == 0 {
		return
	}
	p.store.EmitEvent(InteractionEvent{
		Type:      ev.Type,
		EntityID:  target.EntityID,
		GlobalX:   ev.GlobalX,
		GlobalY:   ev.GlobalY,
		LocalX:    ev.LocalX,
		LocalY:    ev.LocalY,
		Button:    ev.Button,
		Modifiers: ev.Modifiers,
		StartX:    ev.StartX,
		StartY:    ev.StartY,
		DeltaX:    ev.DeltaX,
		DeltaY:    ev.DeltaY,
		Key:       ev.Key,
	})
}
