package canopy

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// Multiply returns m * child (child is applied first).
func (m Affine) Multiply(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse of m. ok is false when m is singular
// (determinant ≈ 0), in which case the identity is returned.
func (m Affine) Invert() (inv Affine, ok bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Transformable holds the local transform of an object relative to its
// parent. Position is where the object's pivot lands in parent space; the
// pivot is Origin × Size, so Origin (0, 0) means the top-left corner.
//
// The zero value has zero scale; use NewTransformable or an object
// constructor to get scale 1.
type Transformable struct {
	X, Y, Z          float64
	Rotation         float64 // radians, unbounded
	ScaleX, ScaleY   float64
	OriginX, OriginY float64 // normalized pivot within Width × Height
	Width, Height    float64
}

// NewTransformable returns a Transformable at the origin with unit scale.
func NewTransformable() Transformable {
	return Transformable{ScaleX: 1, ScaleY: 1}
}

// Pivot returns the pivot point in local coordinates.
func (t *Transformable) Pivot() (px, py float64) {
	return t.Width * t.OriginX, t.Height * t.OriginY
}

// SetPosition sets X and Y.
func (t *Transformable) SetPosition(x, y float64) {
	t.X = x
	t.Y = y
}

// SetScale sets ScaleX and ScaleY.
func (t *Transformable) SetScale(sx, sy float64) {
	t.ScaleX = sx
	t.ScaleY = sy
}

// SetRotation sets the rotation in radians.
func (t *Transformable) SetRotation(r float64) {
	t.Rotation = r
}

// SetOrigin sets the normalized pivot.
func (t *Transformable) SetOrigin(ox, oy float64) {
	t.OriginX = ox
	t.OriginY = oy
}

// SetSize sets Width and Height. Negative values are clamped to zero.
func (t *Transformable) SetSize(w, h float64) {
	t.Width = math.Max(0, w)
	t.Height = math.Max(0, h)
}

// Position returns X and Y as a vector.
func (t *Transformable) Position() Vec2 {
	return Vec2{t.X, t.Y}
}

// LocalMatrix returns the matrix mapping local coordinates to parent space:
//
//	Translate(X, Y) · Rotate(Rotation) · Scale(ScaleX, ScaleY) · Translate(-pivot)
func (t *Transformable) LocalMatrix() Affine {
	return t.placement().matrix()
}

// LocalBounds returns the parent-space axis-aligned bounds of the object's
// [0, Width] × [0, Height] rectangle.
func (t *Transformable) LocalBounds() Rect {
	return aabb(t.LocalMatrix(), t.Width, t.Height)
}

// Transform returns a fluent facade that writes through to t.
func (t *Transformable) Transform() TransformBuilder {
	return TransformBuilder{t: t}
}

func (t *Transformable) placement() placement {
	px, py := t.Pivot()
	return placement{
		x: t.X, y: t.Y,
		rotation: t.Rotation,
		scaleX:   t.ScaleX, scaleY: t.ScaleY,
		pivotX: px, pivotY: py,
	}
}

// placement is the resolved local transform of an object inside its
// container. Rendering composes placement.matrix(); hit-testing applies
// placement.inverse(). Both read the same values so they cannot diverge.
type placement struct {
	x, y           float64
	rotation       float64
	scaleX, scaleY float64
	pivotX, pivotY float64
}

func (p placement) matrix() Affine {
	sin, cos := math.Sincos(p.rotation)
	a := cos * p.scaleX
	b := sin * p.scaleX
	c := -sin * p.scaleY
	d := cos * p.scaleY
	return Affine{
		a, b, c, d,
		p.x - (a*p.pivotX + c*p.pivotY),
		p.y - (b*p.pivotX + d*p.pivotY),
	}
}

// inverse maps a parent-space point into local space. ok is false when
// either scale axis is zero.
func (p placement) inverse(x, y float64) (lx, ly float64, ok bool) {
	if p.scaleX == 0 || p.scaleY == 0 {
		return 0, 0, false
	}
	dx := x - p.x
	dy := y - p.y
	sin, cos := math.Sincos(-p.rotation)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	return rx/p.scaleX + p.pivotX, ry/p.scaleY + p.pivotY, true
}

// aabb computes the bounds of the rectangle (0,0)-(w,h) under m.
func aabb(m Affine, w, h float64) Rect {
	x0, y0 := m.Apply(0, 0)
	x1, y1 := m.Apply(w, 0)
	x2, y2 := m.Apply(w, h)
	x3, y3 := m.Apply(0, h)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// TransformBuilder is a chainable view over a Transformable. It holds no
// state of its own.
//
//	obj.Transform().Position(10, 20).Rotate(math.Pi / 4).Scale(2, 2)
type TransformBuilder struct {
	t *Transformable
}

// Position sets X and Y.
func (b TransformBuilder) Position(x, y float64) TransformBuilder {
	b.t.SetPosition(x, y)
	return b
}

// Move offsets X and Y.
func (b TransformBuilder) Move(dx, dy float64) TransformBuilder {
	b.t.X += dx
	b.t.Y += dy
	return b
}

// Depth sets Z.
func (b TransformBuilder) Depth(z float64) TransformBuilder {
	b.t.Z = z
	return b
}

// Rotation sets the rotation in radians.
func (b TransformBuilder) Rotation(r float64) TransformBuilder {
	b.t.Rotation = r
	return b
}

// Rotate adds dr radians to the rotation.
func (b TransformBuilder) Rotate(dr float64) TransformBuilder {
	b.t.Rotation += dr
	return b
}

// Scale sets ScaleX and ScaleY.
func (b TransformBuilder) Scale(sx, sy float64) TransformBuilder {
	b.t.SetScale(sx, sy)
	return b
}

// Origin sets the normalized pivot.
func (b TransformBuilder) Origin(ox, oy float64) TransformBuilder {
	b.t.SetOrigin(ox, oy)
	return b
}

// Size sets Width and Height.
func (b TransformBuilder) Size(w, h float64) TransformBuilder {
	b.t.SetSize(w, h)
	return b
}

// Target returns the Transformable being edited.
func (b TransformBuilder) Target() *Transformable {
	return b.t
}
