package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to four float64 fields of one object together.
// Build one with TweenPosition, TweenScale, TweenRotation, TweenAlpha or
// TweenColor and call Update(dt) each frame, typically from the object's
// OnUpdate. A group whose target is disposed finishes without writing.
type TweenGroup struct {
	tweens [4]*gween.Tween
	fields [4]*float64
	count  int
	target *GameObject
	done   bool

	// OnComplete, if set, runs once when the group finishes normally.
	OnComplete func()
}

func newTweenGroup(target *GameObject, duration float64, fn ease.TweenFunc, to []float64, fields ...*float64) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(fields), target: target}
	for i, f := range fields {
		g.fields[i] = f
		g.tweens[i] = gween.New(float32(*f), float32(to[i]), float32(duration), fn)
	}
	return g
}

// Update advances every tween by dt seconds and writes the results.
func (g *TweenGroup) Update(dt float64) {
	if g.done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.done = true
		return
	}

	finished := true
	for i := 0; i < g.count; i++ {
		v, ok := g.tweens[i].Update(float32(dt))
		*g.fields[i] = float64(v)
		if !ok {
			finished = false
		}
	}
	if finished {
		g.done = true
		if g.OnComplete != nil {
			g.OnComplete()
		}
	}
}

// Done reports whether the group has finished or its target was disposed.
func (g *TweenGroup) Done() bool {
	return g.done
}

// Stop ends the group where it is.
func (g *TweenGroup) Stop() {
	g.done = true
}

// TweenPosition moves o to (toX, toY) over duration seconds. A nil easing
// function means linear.
func TweenPosition(o *GameObject, toX, toY, duration float64, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(o, duration, fn, []float64{toX, toY}, &o.X, &o.Y)
}

// TweenScale scales o to (toSX, toSY) over duration seconds.
func TweenScale(o *GameObject, toSX, toSY, duration float64, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(o, duration, fn, []float64{toSX, toSY}, &o.ScaleX, &o.ScaleY)
}

// TweenRotation rotates o to the given angle in radians.
func TweenRotation(o *GameObject, to, duration float64, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(o, duration, fn, []float64{to}, &o.Rotation)
}

// TweenAlpha fades o to the given alpha.
func TweenAlpha(o *GameObject, to, duration float64, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(o, duration, fn, []float64{to}, &o.Alpha)
}

// TweenColor animates the four channels of c, usually a shape's fill, owned
// by o.
func TweenColor(o *GameObject, c *Color, to Color, duration float64, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(o, duration, fn, []float64{to.R, to.G, to.B, to.A}, &c.R, &c.G, &c.B, &c.A)
}
