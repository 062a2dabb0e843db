package canopy

import "math"

// HitShape overrides an object's Width×Height box for hit testing. Points
// are given in the object's local space, origin at its top-left corner.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is a box hit region, edges included.
type HitRect Rect

func (r HitRect) Contains(x, y float64) bool {
	return Rect(r).Contains(x, y)
}

// HitCircle is a disc of Radius around (CenterX, CenterY), rim included.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

func (c HitCircle) Contains(x, y float64) bool {
	return math.Hypot(x-c.CenterX, y-c.CenterY) <= c.Radius
}

// HitPolygon is a convex region. Winding order does not matter; concave
// outlines give wrong answers.
type HitPolygon struct {
	Points []Vec2
}

// Contains checks that (x, y) is on the same side of every edge.
func (p HitPolygon) Contains(x, y float64) bool {
	if len(p.Points) < 3 {
		return false
	}
	side := 0
	prev := p.Points[len(p.Points)-1]
	for _, cur := range p.Points {
		cross := (cur.X-prev.X)*(y-prev.Y) - (cur.Y-prev.Y)*(x-prev.X)
		s := 0
		if cross > 0 {
			s = 1
		} else if cross < 0 {
			s = -1
		}
		if s != 0 {
			if side != 0 && s != side {
				return false
			}
			side = s
		}
		prev = cur
	}
	return true
}

// maxChainDepth bounds the ancestor chain kept on the stack.
const maxChainDepth = 32

// chain returns g and its ancestors ordered root first.
func chain(g *GameObject, buf []*GameObject) []*GameObject {
	buf = buf[:0]
	for p := g; p != nil; {
		buf = append(buf, p)
		if p.parent == nil {
			break
		}
		p = p.parent.Base()
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// placementOf resolves where o sits in its parent's local space.
func placementOf(o *GameObject) (placement, bool) {
	if o.parent == nil {
		return o.placement(), true
	}
	return o.parent.childPlacement(o)
}

// WorldToLocal maps a world-space point into g's local space by inverting
// every placement from the root down to g. ok is false when any element of
// the chain has a zero scale axis or cannot be placed by its container.
func (g *GameObject) WorldToLocal(wx, wy float64) (lx, ly float64, ok bool) {
	var stack [maxChainDepth]*GameObject
	lx, ly = wx, wy
	for _, o := range chain(g, stack[:0]) {
		pl, placed := placementOf(o)
		if !placed {
			return 0, 0, false
		}
		lx, ly, ok = pl.inverse(lx, ly)
		if !ok {
			return 0, 0, false
		}
	}
	return lx, ly, true
}

// WorldMatrix composes every placement from the root down to g. ok is false
// when some container cannot place an element of the chain.
func (g *GameObject) WorldMatrix() (Affine, bool) {
	var stack [maxChainDepth]*GameObject
	m := IdentityAffine
	for _, o := range chain(g, stack[:0]) {
		pl, placed := placementOf(o)
		if !placed {
			return IdentityAffine, false
		}
		m = m.Multiply(pl.matrix())
	}
	return m, true
}

// LocalToWorld maps a local point into world space.
func (g *GameObject) LocalToWorld(lx, ly float64) (wx, wy float64) {
	m, _ := g.WorldMatrix()
	return m.Apply(lx, ly)
}

// WorldPosition returns the world-space location of g's pivot.
func (g *GameObject) WorldPosition() Vec2 {
	x, y := g.LocalToWorld(g.Pivot())
	return Vec2{x, y}
}

// HitTest reports whether the world-space point (x, y) falls inside g.
// Objects that are not interactive or not visible, or that have a
// non-interactive or hidden ancestor, never hit. Zero-size objects
// without a HitShape never hit. HitTest does not change any state.
func (g *GameObject) HitTest(x, y float64) bool {
	if !g.interactive || !g.Visible || g.disposed {
		return false
	}
	for p := g.parent; p != nil; p = p.Base().parent {
		b := p.Base()
		if !b.interactive || !b.Visible {
			return false
		}
	}
	lx, ly, ok := g.WorldToLocal(x, y)
	if !ok {
		return false
	}
	return g.containsLocal(lx, ly)
}

// containsLocal tests a local point against HitShape or the size rectangle.
func (g *GameObject) containsLocal(lx, ly float64) bool {
	if g.HitShape != nil {
		return g.HitShape.Contains(lx, ly)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return false
	}
	return lx >= 0 && lx <= g.Width && ly >= 0 && ly <= g.Height
}
