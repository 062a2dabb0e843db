package canopy

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phanxgames/canopy/fsm"
	"github.com/phanxgames/canopy/internal/logging"
)

// DefaultMaxDelta caps the dt passed to Update, so that a long pause (for
// example a backgrounded tab) does not produce one huge simulation step.
const DefaultMaxDelta = 0.1

// Pipeline lifecycle states.
const (
	StateCreated     = "created"
	StateInitialized = "initialized"
	StateRunning     = "running"
	StateStopped     = "stopped"
)

// Pipeline owns the top-level scene of one running instance. It drives the
// update and render passes, resolves input against the scene and hosts the
// cameras.
//
// The lifecycle is created → initialized → running → stopped. Stopping does
// not dispose objects; starting again re-runs Init.
type Pipeline struct {
	root *Scene

	log   *slog.Logger
	debug bool
	stats frameStats

	lifecycle *fsm.Machine[*Pipeline]
	maxDelta  float64

	cameras  []*Camera2D
	surfaceW float64
	surfaceH float64

	handlers    Emitter
	store       EntityStore
	input       inputState
	injectQueue []syntheticEvent
	testRunner  *TestRunner
	updateFunc  func() error

	screenshots   []string
	screenshotDir string
}

// NewPipeline creates a pipeline with an empty interactive root scene.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		root:          NewScene("root"),
		log:           logging.NewNop(),
		maxDelta:      DefaultMaxDelta,
		screenshotDir: DefaultScreenshotDir,
	}
	p.input.dragDeadZone = defaultDragDeadZone
	p.lifecycle = fsm.New(p, map[string]fsm.State[*Pipeline]{
		StateCreated:     {},
		StateInitialized: {},
		StateRunning:     {Enter: (*Pipeline).enterRunning},
		StateStopped:     {Enter: (*Pipeline).enterStopped},
	})
	p.lifecycle.OnTransition(func(from, to string) {
		p.log.Debug("pipeline state", slog.String("from", from), slog.String("to", to))
	})
	p.lifecycle.MustSetState(StateCreated)
	return p
}

// Root returns the root scene.
func (p *Pipeline) Root() *Scene {
	return p.root
}

// Add appends o to the root scene.
func (p *Pipeline) Add(o Object) {
	p.root.Add(o)
}

// Remove detaches o from the root scene.
func (p *Pipeline) Remove(o Object) {
	p.root.Remove(o)
}

// SetLogger sets the logger used for lifecycle and debug output. nil
// restores the no-op logger.
func (p *Pipeline) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.NewNop()
	}
	p.log = l
	globalLogger = l
}

// Logger returns the pipeline logger.
func (p *Pipeline) Logger() *slog.Logger {
	return p.log
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-object
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (p *Pipeline) SetDebugMode(enabled bool) {
	p.debug = enabled
	globalDebug = enabled
	globalLogger = p.log
}

// SetMaxDelta sets the upper clamp for Update's dt. Non-positive values
// restore DefaultMaxDelta.
func (p *Pipeline) SetMaxDelta(seconds float64) {
	if seconds <= 0 {
		seconds = DefaultMaxDelta
	}
	p.maxDelta = seconds
}

// SetEntityStore sets the optional ECS bridge.
func (p *Pipeline) SetEntityStore(store EntityStore) {
	p.store = store
}

// SetUpdateFunc sets a callback run at the end of every Update. Returning
// an error from it when running under Run ends the loop with that error;
// ebiten.Termination ends it cleanly.
func (p *Pipeline) SetUpdateFunc(fn func() error) {
	p.updateFunc = fn
}

// On registers a pipeline-level handler. Pipeline handlers see every
// resolved event, including pointer events that hit nothing, before the
// target object's own handlers.
func (p *Pipeline) On(t EventType, fn func(Event)) Handle {
	return p.handlers.On(t, fn)
}

// --- Lifecycle ---

// State returns the lifecycle state name.
func (p *Pipeline) State() string {
	return p.lifecycle.State()
}

// Running reports whether the pipeline is running.
func (p *Pipeline) Running() bool {
	return p.lifecycle.Is(StateRunning)
}

// Init performs one-time setup: input state is reset and every object
// implementing Initializer is initialized in tree order. All Init errors
// are joined; the pipeline is initialized only when there are none.
func (p *Pipeline) Init() error {
	if p.Running() {
		return ErrRunning
	}
	p.input.reset()
	p.injectQueue = p.injectQueue[:0]

	var errs []error
	walk(p.root, func(o Object) bool {
		if in, ok := o.(Initializer); ok {
			if err := in.Init(); err != nil {
				errs = append(errs, fmt.Errorf("init %q: %w", o.Base().Name, err))
			}
		}
		return true
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if p.surfaceW > 0 && p.surfaceH > 0 {
		p.applyAnchors(true)
	}
	p.lifecycle.MustSetState(StateInitialized)
	return nil
}

// Start initializes the pipeline if needed and begins running. Starting a
// running pipeline is a no-op.
func (p *Pipeline) Start() error {
	switch p.State() {
	case StateRunning:
		return nil
	case StateCreated, StateStopped:
		if err := p.Init(); err != nil {
			return err
		}
	}
	p.lifecycle.MustSetState(StateRunning)
	return nil
}

// Stop halts updates and input. Objects are not disposed.
func (p *Pipeline) Stop() {
	if p.Running() {
		p.lifecycle.MustSetState(StateStopped)
	}
}

func (p *Pipeline) enterRunning() {
	p.log.Info("pipeline started", slog.Int("cameras", len(p.cameras)))
}

func (p *Pipeline) enterStopped() {
	p.log.Info("pipeline stopped")
}

// OnResize records the new surface size, refits cameras with FitSurface and
// repositions anchored objects. It never changes the lifecycle state.
func (p *Pipeline) OnResize(width, height float64) {
	p.surfaceW, p.surfaceH = width, height
	for _, cam := range p.cameras {
		if cam.FitSurface {
			cam.Viewport = Rect{Width: width, Height: height}
			cam.MarkDirty()
		}
	}
	p.applyAnchors(true)
}

// SurfaceSize returns the size recorded by the last OnResize.
func (p *Pipeline) SurfaceSize() (w, h float64) {
	return p.surfaceW, p.surfaceH
}

// applyAnchors positions anchored objects. Without force only objects whose
// target rectangle moved are repositioned.
func (p *Pipeline) applyAnchors(force bool) {
	surface := Rect{Width: p.surfaceW, Height: p.surfaceH}
	walk(p.root, func(o Object) bool {
		o.Base().applyAnchor(surface, force)
		return true
	})
}

// --- Frame ---

// Update advances one frame by dt seconds. dt is clamped to [0, max delta].
// Queued synthetic input is handled first, then the scene tree is updated
// depth-first, then the cameras, then anchors relative to moved objects.
// Update is a no-op unless the pipeline is running.
func (p *Pipeline) Update(dt float64) error {
	if !p.Running() {
		return nil
	}
	var t0 time.Time
	if p.debug {
		t0 = time.Now()
	}

	if dt < 0 {
		dt = 0
	} else if dt > p.maxDelta {
		dt = p.maxDelta
	}

	if p.testRunner != nil {
		p.testRunner.step(p)
	}
	p.processInjectedInput()

	if p.root.Active {
		p.root.Update(dt)
	}
	for _, cam := range p.cameras {
		cam.Update(dt)
	}
	p.applyAnchors(false)

	var err error
	if p.updateFunc != nil {
		err = p.updateFunc()
	}
	if p.debug {
		p.stats.updateTime = time.Since(t0)
	}
	return err
}

// Render draws the scene into s once per camera, clipped to each camera's
// viewport, or once with an identity view when there are no cameras.
// Render does not change simulation state.
func (p *Pipeline) Render(s Surface) RenderStats {
	var t0 time.Time
	if p.debug {
		t0 = time.Now()
	}

	var total RenderStats
	if len(p.cameras) == 0 {
		total = p.renderView(NewDrawContext(s, IdentityAffine))
	}
	for _, cam := range p.cameras {
		dc := NewDrawContext(s.Sub(cam.Viewport), cam.ViewMatrix())
		if cam.CullEnabled {
			dc.setCull(cam.Viewport)
		}
		st := p.renderView(dc)
		total.DrawCalls += st.DrawCalls
		total.ObjectsVisited += st.ObjectsVisited
	}

	if p.debug {
		p.stats.renderTime = time.Since(t0)
		p.stats.render = total
		p.stats.sortPasses = countSortPasses(p.root)
		debugLog(p.log, p.stats)
	}
	return total
}

func (p *Pipeline) renderView(dc *DrawContext) RenderStats {
	r := p.root
	if r.Visible && !r.disposed {
		r.Draw(dc.child(r.placement().matrix(), r.Alpha, r.BlendMode))
	}
	return dc.Stats()
}

// --- Cameras ---

// NewCamera creates a camera with the given viewport and adds it to the
// pipeline. A zero viewport fits the surface.
func (p *Pipeline) NewCamera(viewport Rect) *Camera2D {
	cam := NewCamera2D(viewport)
	if viewport == (Rect{}) {
		cam.FitSurface = true
		cam.Viewport = Rect{Width: p.surfaceW, Height: p.surfaceH}
	}
	p.cameras = append(p.cameras, cam)
	return cam
}

// AddCamera adds an existing camera.
func (p *Pipeline) AddCamera(cam *Camera2D) {
	p.cameras = append(p.cameras, cam)
}

// RemoveCamera removes a camera from the pipeline.
func (p *Pipeline) RemoveCamera(cam *Camera2D) {
	for i, c := range p.cameras {
		if c == cam {
			p.cameras = append(p.cameras[:i], p.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the camera list. The returned slice MUST NOT be mutated.
func (p *Pipeline) Cameras() []*Camera2D {
	return p.cameras
}
