package canopy

// syntheticEvent is a queued injected pointer or key event. Surface
// coordinates are used and converted to world coordinates through the
// cameras, identical to real input.
type syntheticEvent struct {
	pointer PointerEvent
	key     KeyEvent
	isKey   bool
}

func (p *Pipeline) injectPointer(kind PointerKind, x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{
		pointer: PointerEvent{Kind: kind, X: x, Y: y, Button: MouseButtonLeft},
	})
}

// InjectPress queues a left-button press at the given surface coordinates.
// Queued events are consumed one per Update.
func (p *Pipeline) InjectPress(x, y float64) {
	p.injectPointer(PointerDown, x, y)
}

// InjectMove queues a pointer move. Between InjectPress and InjectRelease it
// moves with the button held, which drags.
func (p *Pipeline) InjectMove(x, y float64) {
	p.injectPointer(PointerMove, x, y)
}

// InjectRelease queues a pointer release at the given surface coordinates.
func (p *Pipeline) InjectRelease(x, y float64) {
	p.injectPointer(PointerUp, x, y)
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (p *Pipeline) InjectClick(x, y float64) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (p *Pipeline) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	p.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		p.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	p.InjectRelease(toX, toY)
}

// InjectKey queues a key press and release. Consumes two frames.
func (p *Pipeline) InjectKey(code string) {
	p.injectQueue = append(p.injectQueue,
		syntheticEvent{key: KeyEvent{Code: code, Down: true}, isKey: true},
		syntheticEvent{key: KeyEvent{Code: code}, isKey: true},
	)
}

// PendingInjections returns the number of queued synthetic events.
func (p *Pipeline) PendingInjections() int {
	return len(p.injectQueue)
}

// processInjectedInput pops one event from the inject queue and handles it.
// Returns true if an event was consumed.
func (p *Pipeline) processInjectedInput() bool {
	if len(p.injectQueue) == 0 {
		return false
	}
	evt := p.injectQueue[0]
	copy(p.injectQueue, p.injectQueue[1:])
	p.injectQueue = p.injectQueue[:len(p.injectQueue)-1]

	if evt.isKey {
		p.HandleKey(evt.key)
	} else {
		p.HandlePointer(evt.pointer)
	}
	return true
}
