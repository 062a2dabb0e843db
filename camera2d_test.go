package canopy

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCamera2DDefaults(t *testing.T) {
	c := NewCamera2D(Rect{Width: 800, Height: 600})
	if c.Zoom != 1 || !c.CullEnabled || c.SnapEpsilon != DefaultSnapEpsilon {
		t.Errorf("defaults = %+v", c)
	}
	// The viewport center shows the world origin.
	x, y := c.WorldToScreen(0, 0)
	assertNear(t, "x", x, 400)
	assertNear(t, "y", y, 300)
}

func TestCamera2DFollowConverges(t *testing.T) {
	c := NewCamera2D(Rect{Width: 100, Height: 100})
	target := NewGameObject("target")
	target.SetPosition(100, -40)
	c.Follow(target, 0, 0, 0.2)

	prev := math.Inf(1)
	for i := 0; i < 200; i++ {
		c.Update(1.0 / 60)
		if c.X > 100 || c.Y < -40 {
			t.Fatalf("update %d: overshoot to (%v,%v)", i, c.X, c.Y)
		}
		d := math.Hypot(100-c.X, -40-c.Y)
		if d > prev {
			t.Fatalf("update %d: distance grew from %v to %v", i, prev, d)
		}
		prev = d
	}
	if c.X != 100 || c.Y != -40 {
		t.Errorf("camera = (%v,%v), want snapped onto (100,-40)", c.X, c.Y)
	}
}

func TestCamera2DFollowOffsetAndPivot(t *testing.T) {
	c := NewCamera2D(Rect{Width: 100, Height: 100})
	target := NewGameObject("target")
	target.SetSize(20, 20)
	target.SetOrigin(0.5, 0.5)
	target.SetPosition(50, 50)
	c.Follow(target, 10, -5, 1)
	c.Update(0)
	if c.X != 60 || c.Y != 45 {
		t.Errorf("camera = (%v,%v), want (60,45)", c.X, c.Y)
	}
}

func TestCamera2DFollowLerpOutOfRangeSnaps(t *testing.T) {
	for _, lerp := range []float64{0, -1, 2} {
		c := NewCamera2D(Rect{})
		target := NewGameObject("target")
		target.SetPosition(30, 30)
		c.Follow(target, 0, 0, lerp)
		c.Update(0)
		if c.X != 30 || c.Y != 30 {
			t.Errorf("lerp %v: camera = (%v,%v), want (30,30)", lerp, c.X, c.Y)
		}
	}
}

func TestCamera2DFollowDisposedTarget(t *testing.T) {
	c := NewCamera2D(Rect{})
	target := NewGameObject("target")
	c.Follow(target, 0, 0, 1)
	target.Dispose()
	c.Update(0)
	if c.Target() != nil {
		t.Error("camera still follows a disposed target")
	}
	c.Follow(nil, 0, 0, 1)
	if c.Target() != nil {
		t.Error("Follow(nil) should unfollow")
	}
}

func TestCamera2DShakeDecays(t *testing.T) {
	c := NewCamera2D(Rect{Width: 100, Height: 100})
	c.SetRand(rand.New(rand.NewPCG(7, 11)))
	c.Shake(10, 1)

	for i := 0; i < 10; i++ {
		c.Update(0.09)
		off := c.Offset()
		limit := 10 * (1 - 0.09*float64(i+1))
		if math.Abs(off.X) > limit+1e-9 || math.Abs(off.Y) > limit+1e-9 {
			t.Fatalf("update %d: offset (%v,%v) exceeds %v", i, off.X, off.Y, limit)
		}
	}
	c.Update(0.2)
	if c.Shaking() {
		t.Error("shake did not end")
	}
	if off := c.Offset(); off.X != c.X || off.Y != c.Y {
		t.Errorf("offset after shake = %+v, want camera position", off)
	}
}

func TestCamera2DShakeLastCallWins(t *testing.T) {
	c := NewCamera2D(Rect{})
	c.SetRand(rand.New(rand.NewPCG(1, 1)))
	c.Shake(100, 10)
	c.Shake(1, 0.5)
	c.Update(0.1)
	if off := c.Offset(); math.Abs(off.X) > 1 || math.Abs(off.Y) > 1 {
		t.Errorf("offset %+v exceeds the latest intensity", off)
	}
	c.Update(0.5)
	if c.Shaking() {
		t.Error("latest shake duration not honored")
	}

	c.Shake(5, 1)
	c.Shake(0, 1)
	if c.Shaking() {
		t.Error("zero intensity should stop the shake")
	}
}

func TestCamera2DScreenWorldRoundTrip(t *testing.T) {
	c := NewCamera2D(Rect{X: 20, Y: 10, Width: 640, Height: 480})
	c.X, c.Y = 150, -75
	c.Zoom = 2.5
	c.Rotation = 0.6
	c.MarkDirty()

	for _, p := range []Vec2{{0, 0}, {150, -75}, {-300, 420}} {
		sx, sy := c.WorldToScreen(p.X, p.Y)
		wx, wy := c.ScreenToWorld(sx, sy)
		assertNear(t, "x", wx, p.X)
		assertNear(t, "y", wy, p.Y)
	}
	// The camera position maps to the viewport center.
	sx, sy := c.WorldToScreen(150, -75)
	assertNear(t, "center x", sx, 340)
	assertNear(t, "center y", sy, 250)
}

func TestCamera2DZoomScalesDistances(t *testing.T) {
	c := NewCamera2D(Rect{Width: 100, Height: 100})
	c.Zoom = 2
	c.MarkDirty()
	x0, _ := c.WorldToScreen(0, 0)
	x1, _ := c.WorldToScreen(10, 0)
	assertNear(t, "distance", x1-x0, 20)
}

func TestCamera2DVisibleBounds(t *testing.T) {
	c := NewCamera2D(Rect{Width: 200, Height: 100})
	c.X, c.Y = 50, 50
	c.Zoom = 2
	c.MarkDirty()
	b := c.VisibleBounds()
	assertNear(t, "x", b.X, 0)
	assertNear(t, "y", b.Y, 25)
	assertNear(t, "w", b.Width, 100)
	assertNear(t, "h", b.Height, 50)
}

func TestCamera2DBounds(t *testing.T) {
	c := NewCamera2D(Rect{Width: 100, Height: 100})
	c.SetBounds(Rect{X: 0, Y: 0, Width: 500, Height: 300})
	c.X, c.Y = -100, 1000
	c.Update(0)
	if c.X != 50 || c.Y != 250 {
		t.Errorf("camera = (%v,%v), want clamped to (50,250)", c.X, c.Y)
	}

	// Bounds smaller than the view center the camera.
	c.SetBounds(Rect{X: 10, Y: 10, Width: 40, Height: 40})
	c.ClampToBounds()
	if c.X != 30 || c.Y != 30 {
		t.Errorf("camera = (%v,%v), want centered at (30,30)", c.X, c.Y)
	}

	c.ClearBounds()
	c.X = -1000
	c.Update(0)
	if c.X != -1000 {
		t.Error("cleared bounds still clamp")
	}
}

func TestCamera2DScrollTo(t *testing.T) {
	c := NewCamera2D(Rect{})
	c.ScrollTo(100, 50, 1, ease.Linear)
	if !c.Scrolling() {
		t.Fatal("not scrolling")
	}
	c.Update(0.5)
	assertNear(t, "mid x", c.X, 50)
	assertNear(t, "mid y", c.Y, 25)
	c.Update(0.5)
	c.Update(0.1)
	if c.Scrolling() {
		t.Error("scroll did not finish")
	}
	assertNear(t, "x", c.X, 100)
	assertNear(t, "y", c.Y, 50)
}
