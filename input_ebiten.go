package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenInput polls Ebitengine's mouse, touch and keyboard state once per
// tick and feeds it to a Pipeline as normalized events.
type ebitenInput struct {
	mouseDown    bool
	mouseX       int
	mouseY       int
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	touchLast    [maxPointers][2]int
	prevTouchIDs []ebiten.TouchID
	keys         []ebiten.Key
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// poll reads input and dispatches it to p.
func (in *ebitenInput) poll(p *Pipeline) {
	mods := readModifiers()
	in.pollMouse(p, mods)
	in.pollTouches(p, mods)
	in.pollKeys(p, mods)
}

// pollMouse handles mouse input (pointer 0).
func (in *ebitenInput) pollMouse(p *Pipeline, mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}

	ev := PointerEvent{ID: 0, X: float64(mx), Y: float64(my), Button: button, Modifiers: mods}
	moved := mx != in.mouseX || my != in.mouseY
	in.mouseX, in.mouseY = mx, my

	switch {
	case pressed && !in.mouseDown:
		ev.Kind = PointerDown
	case !pressed && in.mouseDown:
		ev.Kind = PointerUp
	case moved:
		ev.Kind = PointerMove
	default:
		return
	}
	in.mouseDown = pressed
	p.HandlePointer(ev)
}

// pollTouches handles touch input (pointers 1-9).
func (in *ebitenInput) pollTouches(p *Pipeline, mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(in.prevTouchIDs[:0])
	in.prevTouchIDs = touchIDs

	var active [maxPointers]bool
	for _, tid := range touchIDs {
		slot, fresh := in.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		ev := PointerEvent{ID: slot, X: float64(tx), Y: float64(ty), Modifiers: mods}
		last := in.touchLast[slot]
		in.touchLast[slot] = [2]int{tx, ty}
		switch {
		case fresh:
			ev.Kind = PointerDown
		case last[0] != tx || last[1] != ty:
			ev.Kind = PointerMove
		default:
			continue
		}
		p.HandlePointer(ev)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && !active[i] {
			last := in.touchLast[i]
			p.HandlePointer(PointerEvent{
				ID: i, Kind: PointerUp,
				X: float64(last[0]), Y: float64(last[1]),
				Modifiers: mods,
			})
			in.touchUsed[i] = false
			in.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). fresh is true
// when a new slot was allocated. Returns -1 if all slots are in use.
func (in *ebitenInput) touchSlot(tid ebiten.TouchID) (slot int, fresh bool) {
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i, false
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !in.touchUsed[i] {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i, true
		}
	}
	return -1, false
}

// pollKeys dispatches key presses and releases that happened this tick.
func (in *ebitenInput) pollKeys(p *Pipeline, mods KeyModifiers) {
	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		p.HandleKey(KeyEvent{Code: k.String(), Down: true, Modifiers: mods})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		p.HandleKey(KeyEvent{Code: k.String(), Modifiers: mods})
	}
}
