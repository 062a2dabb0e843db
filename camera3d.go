package canopy

import (
	"fmt"
	"math"

	"github.com/phanxgames/canopy/fsm"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera3D defaults, used for zero-valued options.
const (
	DefaultPerspective     = 800.0
	DefaultFriction        = 0.95
	DefaultSensitivity     = 0.01
	DefaultAutoRotateSpeed = 0.5
	DefaultReturnDuration  = 1.0
)

// inertiaStop is the angular velocity (radians per update) below which a
// coasting camera stops.
const inertiaStop = 1e-5

// Camera3D control states.
const (
	camIdle      = "idle"
	camDragging  = "dragging"
	camCoasting  = "coasting"
	camReturning = "returning"
)

// Camera3DOptions configures a Camera3D. Zero numeric values and an empty
// axis take the documented defaults.
type Camera3DOptions struct {
	// Perspective is the eye distance; larger values flatten the view.
	// Default DefaultPerspective. Must not be negative.
	Perspective float64 `yaml:"perspective"`
	// RotationX and RotationY are the initial (and home) rotation in radians.
	RotationX float64 `yaml:"rotation_x"`
	RotationY float64 `yaml:"rotation_y"`
	// MinRotationX and MaxRotationX clamp RotationX when Min < Max.
	MinRotationX float64 `yaml:"min_rotation_x"`
	MaxRotationX float64 `yaml:"max_rotation_x"`
	// AutoRotate spins the camera while idle at AutoRotateSpeed radians per
	// second around AutoRotateAxis ("x" or "y", default "y").
	AutoRotate      bool    `yaml:"auto_rotate"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"`
	AutoRotateAxis  string  `yaml:"auto_rotate_axis"`
	// Inertia keeps the camera spinning after a drag is released, decaying
	// by Friction (in [0, 1), default DefaultFriction) every update.
	Inertia  bool    `yaml:"inertia"`
	Friction float64 `yaml:"friction"`
	// Sensitivity converts drag pixels to radians. Default DefaultSensitivity.
	Sensitivity float64 `yaml:"sensitivity"`
	// ReturnDelay is the idle time in seconds after which the camera eases
	// back to its home rotation. Zero disables returning. Ignored while
	// AutoRotate is on.
	ReturnDelay float64 `yaml:"return_delay"`
	// ReturnDuration is the length of the return animation in seconds.
	// Default DefaultReturnDuration.
	ReturnDuration float64 `yaml:"return_duration"`
}

// withDefaults fills unset values and validates the rest.
func (o Camera3DOptions) withDefaults() (Camera3DOptions, error) {
	if o.Perspective < 0 {
		return o, fmt.Errorf("%w: perspective %v must be positive", ErrInvalidOption, o.Perspective)
	}
	if o.Perspective == 0 {
		o.Perspective = DefaultPerspective
	}
	if o.Friction < 0 || o.Friction >= 1 {
		return o, fmt.Errorf("%w: friction %v must be in [0, 1)", ErrInvalidOption, o.Friction)
	}
	if o.Friction == 0 {
		o.Friction = DefaultFriction
	}
	if o.Sensitivity < 0 {
		return o, fmt.Errorf("%w: sensitivity %v must not be negative", ErrInvalidOption, o.Sensitivity)
	}
	if o.Sensitivity == 0 {
		o.Sensitivity = DefaultSensitivity
	}
	switch o.AutoRotateAxis {
	case "":
		o.AutoRotateAxis = "y"
	case "x", "y":
	default:
		return o, fmt.Errorf("%w: auto-rotate axis %q must be \"x\" or \"y\"", ErrInvalidOption, o.AutoRotateAxis)
	}
	if o.AutoRotateSpeed == 0 {
		o.AutoRotateSpeed = DefaultAutoRotateSpeed
	}
	if o.ReturnDelay < 0 || o.ReturnDuration < 0 {
		return o, fmt.Errorf("%w: return delay and duration must not be negative", ErrInvalidOption)
	}
	if o.ReturnDuration == 0 {
		o.ReturnDuration = DefaultReturnDuration
	}
	return o, nil
}

// Projection is the screen-space result of projecting a 3D point.
type Projection struct {
	X, Y float64
	// Scale is the depth scale factor. Zero means the point is at or behind
	// the camera plane and must not be drawn.
	Scale float64
	// Depth is the rotated z; larger is farther away.
	Depth float64
}

// Visible reports whether the point is in front of the camera.
func (p Projection) Visible() bool {
	return p.Scale > 0
}

// Camera3D is a pseudo-3D perspective camera rotating around the X and Y
// axes, with optional drag control, inertia, auto-rotation and an eased
// return to its home rotation.
type Camera3D struct {
	RotationX, RotationY float64
	Perspective          float64

	MinRotationX, MaxRotationX float64

	AutoRotate      bool
	AutoRotateSpeed float64
	AutoRotateAxis  string

	Inertia     bool
	Friction    float64
	Sensitivity float64

	ReturnDelay    float64
	ReturnDuration float64

	homeX, homeY float64
	velX, velY   float64
	idle         float64

	returnX, returnY *gween.Tween

	control *fsm.Machine[*Camera3D]
	handles []Handle
}

// NewCamera3D creates a camera from opts. Invalid options are reported as
// errors wrapping ErrInvalidOption.
func NewCamera3D(opts Camera3DOptions) (*Camera3D, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	c := &Camera3D{
		RotationX:       o.RotationX,
		RotationY:       o.RotationY,
		Perspective:     o.Perspective,
		MinRotationX:    o.MinRotationX,
		MaxRotationX:    o.MaxRotationX,
		AutoRotate:      o.AutoRotate,
		AutoRotateSpeed: o.AutoRotateSpeed,
		AutoRotateAxis:  o.AutoRotateAxis,
		Inertia:         o.Inertia,
		Friction:        o.Friction,
		Sensitivity:     o.Sensitivity,
		ReturnDelay:     o.ReturnDelay,
		ReturnDuration:  o.ReturnDuration,
		homeX:           o.RotationX,
		homeY:           o.RotationY,
	}
	c.clampX()
	c.control = fsm.New(c, map[string]fsm.State[*Camera3D]{
		camIdle: {
			Enter:  (*Camera3D).enterIdle,
			Update: (*Camera3D).updateIdle,
		},
		camDragging: {
			Enter: (*Camera3D).enterDragging,
		},
		camCoasting: {
			Update: (*Camera3D).updateCoasting,
		},
		camReturning: {
			Enter:  (*Camera3D).enterReturning,
			Update: (*Camera3D).updateReturning,
			Exit:   (*Camera3D).exitReturning,
		},
	})
	c.control.MustSetState(camIdle)
	return c, nil
}

// Project rotates (x, y, z) around the X axis by RotationX, then around the
// Y axis by RotationY, and applies the perspective divide
// scale = Perspective / (Perspective + z'). Points at or behind the camera
// plane return a zero Scale.
func (c *Camera3D) Project(x, y, z float64) Projection {
	sinX, cosX := math.Sincos(c.RotationX)
	y1 := y*cosX - z*sinX
	z1 := y*sinX + z*cosX

	sinY, cosY := math.Sincos(c.RotationY)
	x2 := x*cosY + z1*sinY
	z2 := -x*sinY + z1*cosY

	denom := c.Perspective + z2
	if denom <= 0 {
		return Projection{Depth: z2}
	}
	scale := c.Perspective / denom
	return Projection{X: x2 * scale, Y: y1 * scale, Scale: scale, Depth: z2}
}

// State returns the control state: "idle", "dragging", "coasting" or
// "returning".
func (c *Camera3D) State() string {
	return c.control.State()
}

// Velocity returns the current angular velocity in radians per update.
func (c *Camera3D) Velocity() (vx, vy float64) {
	return c.velX, c.velY
}

// SetHome sets the rotation the camera returns to after ReturnDelay.
func (c *Camera3D) SetHome(rx, ry float64) {
	c.homeX, c.homeY = rx, ry
}

// Home returns the home rotation.
func (c *Camera3D) Home() (rx, ry float64) {
	return c.homeX, c.homeY
}

// BeginDrag stops any coasting or returning and enters the dragging state.
func (c *Camera3D) BeginDrag() {
	c.control.MustSetState(camDragging)
}

// Drag rotates by a pointer delta in pixels: dx turns around Y, dy around X.
func (c *Camera3D) Drag(dx, dy float64) {
	if !c.control.Is(camDragging) {
		c.BeginDrag()
	}
	c.velX = dy * c.Sensitivity
	c.velY = dx * c.Sensitivity
	c.RotationX += c.velX
	c.RotationY += c.velY
	c.clampX()
}

// EndDrag releases the drag. With inertia the last velocity carries on and
// decays by Friction every update.
func (c *Camera3D) EndDrag() {
	if !c.control.Is(camDragging) {
		return
	}
	if c.Inertia && (math.Abs(c.velX) >= inertiaStop || math.Abs(c.velY) >= inertiaStop) {
		c.control.MustSetState(camCoasting)
		return
	}
	c.control.MustSetState(camIdle)
}

// Stop cancels drag, inertia and return animations.
func (c *Camera3D) Stop() {
	c.control.MustSetState(camIdle)
}

// EnableMouseControl subscribes to the pipeline's drag events so that
// dragging anywhere rotates the camera. Drag deltas are read in surface
// pixels, so a zoomed Camera2D does not change the sensitivity. Calling it
// again replaces the previous subscription.
func (c *Camera3D) EnableMouseControl(p *Pipeline) {
	c.DisableMouseControl()
	c.handles = append(c.handles,
		p.On(EventDragStart, func(Event) { c.BeginDrag() }),
		p.On(EventDrag, func(e Event) { c.Drag(e.ScreenDeltaX, e.ScreenDeltaY) }),
		p.On(EventDragEnd, func(Event) { c.EndDrag() }),
	)
}

// DisableMouseControl removes the subscriptions made by EnableMouseControl.
func (c *Camera3D) DisableMouseControl() {
	for _, h := range c.handles {
		h.Remove()
	}
	c.handles = c.handles[:0]
}

// MouseControlEnabled reports whether EnableMouseControl is active.
func (c *Camera3D) MouseControlEnabled() bool {
	return len(c.handles) > 0
}

// Update advances auto-rotation, inertia and the return animation.
func (c *Camera3D) Update(dt float64) {
	c.control.Update(dt)
}

func (c *Camera3D) clampX() {
	if c.MinRotationX < c.MaxRotationX {
		c.RotationX = math.Max(c.MinRotationX, math.Min(c.RotationX, c.MaxRotationX))
	}
}

func (c *Camera3D) atHome() bool {
	return c.RotationX == c.homeX && c.RotationY == c.homeY
}

// --- control states ---

func (c *Camera3D) enterIdle() {
	c.velX, c.velY = 0, 0
	c.idle = 0
}

func (c *Camera3D) updateIdle(dt float64) {
	if c.AutoRotate {
		if c.AutoRotateAxis == "x" {
			c.RotationX += c.AutoRotateSpeed * dt
			c.clampX()
		} else {
			c.RotationY += c.AutoRotateSpeed * dt
		}
		return
	}
	if c.ReturnDelay <= 0 || c.atHome() {
		return
	}
	c.idle += dt
	if c.idle >= c.ReturnDelay {
		c.control.MustSetState(camReturning)
	}
}

func (c *Camera3D) enterDragging() {
	c.velX, c.velY = 0, 0
}

func (c *Camera3D) updateCoasting(float64) {
	c.RotationX += c.velX
	c.RotationY += c.velY
	prevX := c.RotationX
	c.clampX()
	if c.RotationX != prevX {
		c.velX = 0
	}
	c.velX *= c.Friction
	c.velY *= c.Friction
	if math.Abs(c.velX) < inertiaStop && math.Abs(c.velY) < inertiaStop {
		c.control.MustSetState(camIdle)
	}
}

func (c *Camera3D) enterReturning() {
	d := float32(c.ReturnDuration)
	c.returnX = gween.New(float32(c.RotationX), float32(c.homeX), d, ease.InOutQuad)
	c.returnY = gween.New(float32(c.RotationY), float32(c.homeY), d, ease.InOutQuad)
}

func (c *Camera3D) updateReturning(dt float64) {
	x, doneX := c.returnX.Update(float32(dt))
	y, doneY := c.returnY.Update(float32(dt))
	c.RotationX, c.RotationY = float64(x), float64(y)
	if doneX && doneY {
		// Land exactly; the tween runs in float32.
		c.RotationX, c.RotationY = c.homeX, c.homeY
		c.control.MustSetState(camIdle)
	}
}

func (c *Camera3D) exitReturning() {
	c.returnX, c.returnY = nil, nil
}
