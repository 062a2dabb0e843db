package canopy

import (
	"math"
	"math/rand/v2"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultSnapEpsilon is the distance below which a following camera snaps
// onto its target.
const DefaultSnapEpsilon = 0.01

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera2D controls the view into the scene: position, zoom, rotation,
// viewport, smoothed follow and shake.
//
// Follow smoothing is a fixed fraction per Update call and is not scaled by
// dt, so smoothness depends on the frame rate while shake and scroll
// durations do not.
type Camera2D struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect
	// FitSurface makes the viewport track the surface size on resize.
	FitSurface bool

	// CullEnabled skips leaf objects whose bounds don't intersect the
	// viewport.
	CullEnabled bool

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	// SnapEpsilon is the follow distance below which the camera lands
	// exactly on its target.
	SnapEpsilon float64

	target        *GameObject
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	shakeIntensity float64
	shakeDuration  float64
	shakeRemaining float64
	shakeX, shakeY float64
	rng            *rand.Rand

	viewMatrix    Affine
	invViewMatrix Affine
	dirty         bool

	scrollTween *scrollAnim
}

// NewCamera2D creates a camera with default values and the given viewport.
func NewCamera2D(viewport Rect) *Camera2D {
	return &Camera2D{
		Zoom:        1.0,
		Viewport:    viewport,
		CullEnabled: true,
		SnapEpsilon: DefaultSnapEpsilon,
		dirty:       true,
	}
}

// Follow makes the camera track target's pivot plus an offset. lerp is the
// fraction of the remaining distance covered per update; values outside
// (0, 1] are treated as 1 (snap).
func (c *Camera2D) Follow(target Object, offsetX, offsetY, lerp float64) {
	if target == nil {
		c.Unfollow()
		return
	}
	if lerp <= 0 || lerp > 1 {
		lerp = 1
	}
	c.target = target.Base()
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera2D) Unfollow() {
	c.target = nil
}

// Target returns the followed object, or nil.
func (c *Camera2D) Target() *GameObject {
	return c.target
}

// Shake overlays a random offset of up to intensity world units that decays
// linearly to zero over duration seconds. A new call replaces any shake in
// progress.
func (c *Camera2D) Shake(intensity, duration float64) {
	if intensity <= 0 || duration <= 0 {
		c.StopShake()
		return
	}
	c.shakeIntensity = intensity
	c.shakeDuration = duration
	c.shakeRemaining = duration
}

// StopShake cancels any shake in progress.
func (c *Camera2D) StopShake() {
	c.shakeIntensity = 0
	c.shakeDuration = 0
	c.shakeRemaining = 0
	if c.shakeX != 0 || c.shakeY != 0 {
		c.shakeX, c.shakeY = 0, 0
		c.dirty = true
	}
}

// Shaking reports whether a shake is in progress.
func (c *Camera2D) Shaking() bool {
	return c.shakeRemaining > 0
}

// SetRand sets the random source used for shake offsets. A nil source uses
// the global generator.
func (c *Camera2D) SetRand(r *rand.Rand) {
	c.rng = r
}

// Offset returns the effective view center including the shake offset.
func (c *Camera2D) Offset() Vec2 {
	return Vec2{c.X + c.shakeX, c.Y + c.shakeY}
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera2D) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera2D) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera2D) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera2D) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position so the visible area
// stays within Bounds. No-op if BoundsEnabled is false.
func (c *Camera2D) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
		c.dirty = true
	}
}

// Update advances follow, scroll, bounds clamping and shake by dt seconds.
// The Pipeline calls it after the scene tree has been updated.
func (c *Camera2D) Update(dt float64) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	if c.target != nil {
		if c.target.IsDisposed() {
			c.target = nil
		} else {
			c.follow()
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(float32(dt))
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(float32(dt))
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}

	c.updateShake(dt)

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

func (c *Camera2D) follow() {
	p := c.target.WorldPosition()
	tx := p.X + c.followOffsetX
	ty := p.Y + c.followOffsetY
	c.X += (tx - c.X) * c.followLerp
	c.Y += (ty - c.Y) * c.followLerp
	if math.Abs(tx-c.X) <= c.SnapEpsilon && math.Abs(ty-c.Y) <= c.SnapEpsilon {
		c.X, c.Y = tx, ty
	}
}

func (c *Camera2D) updateShake(dt float64) {
	if c.shakeRemaining <= 0 {
		return
	}
	c.shakeRemaining -= dt
	if c.shakeRemaining <= 0 {
		c.StopShake()
		return
	}
	mag := c.shakeIntensity * c.shakeRemaining / c.shakeDuration
	c.shakeX = (c.randFloat()*2 - 1) * mag
	c.shakeY = (c.randFloat()*2 - 1) * mag
	c.dirty = true
}

func (c *Camera2D) randFloat() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera2D) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// If bounds are smaller than visible area, center the camera.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera2D) MarkDirty() {
	c.dirty = true
}

// ViewMatrix returns the world-to-screen matrix:
//
//	Translate(cx, cy) · Scale(zoom) · Rotate(-rotation) · Translate(-X, -Y)
//
// where (cx, cy) is the viewport center and (X, Y) includes the shake offset.
func (c *Camera2D) ViewMatrix() Affine {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	ox, oy := c.X+c.shakeX, c.Y+c.shakeY

	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom

	c.viewMatrix = Affine{
		z * cos, z * sin,
		-z * sin, z * cos,
		cx + z*(-cos*ox+sin*oy),
		cy + z*(-sin*ox-cos*oy),
	}
	c.invViewMatrix, _ = c.viewMatrix.Invert()
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera2D) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.ViewMatrix().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera2D) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.ViewMatrix()
	return c.invViewMatrix.Apply(sx, sy)
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's visible
// area in world space.
func (c *Camera2D) VisibleBounds() Rect {
	c.ViewMatrix()
	// Shift to the viewport origin, then map the viewport rectangle.
	m := c.invViewMatrix.Multiply(Affine{1, 0, 0, 1, c.Viewport.X, c.Viewport.Y})
	return aabb(m, c.Viewport.Width, c.Viewport.Height)
}
