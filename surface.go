package canopy

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Surface is the abstract 2D drawing sink the pipeline renders into.
// Every call receives the full local-to-surface matrix. Implementations
// never need to read pixels back.
type Surface interface {
	// FillPath fills the polygon pts. Polygons are filled as a triangle fan
	// around the first point, so they must be convex or star-shaped about it.
	FillPath(pts []Vec2, m Affine, c Color, blend BlendMode)
	// StrokePath outlines pts with the given line width.
	StrokePath(pts []Vec2, closed bool, width float64, m Affine, c Color, blend BlendMode)
	// DrawImage blits img with its top-left corner at local (0, 0).
	DrawImage(img *ebiten.Image, m Affine, alpha float64, blend BlendMode)
	// DrawText draws s with its top-left corner at local (0, 0).
	DrawText(s string, face text.Face, lineSpacing float64, m Affine, c Color, blend BlendMode)
	// Size returns the drawable size in pixels.
	Size() (w, h int)
	// Sub returns a surface clipped to r. Coordinates are unchanged.
	Sub(r Rect) Surface
}

// RenderStats counts work done by one render pass.
type RenderStats struct {
	DrawCalls      int
	ObjectsVisited int
}

// DrawContext carries the accumulated transform, alpha and blend mode of the
// object being drawn. Objects receive one from their parent and issue draw
// calls through it.
type DrawContext struct {
	Surface   Surface
	Transform Affine
	Alpha     float64
	Blend     BlendMode

	stats   *RenderStats
	cull    Rect
	culling bool
}

// NewDrawContext creates a root context drawing into s through view.
func NewDrawContext(s Surface, view Affine) *DrawContext {
	return &DrawContext{Surface: s, Transform: view, Alpha: 1, stats: &RenderStats{}}
}

// Stats returns the counters shared by every context derived from the root.
func (dc *DrawContext) Stats() RenderStats {
	if dc.stats == nil {
		return RenderStats{}
	}
	return *dc.stats
}

// child derives the context for an object placed by m.
func (dc *DrawContext) child(m Affine, alpha float64, blend BlendMode) *DrawContext {
	if dc.stats != nil {
		dc.stats.ObjectsVisited++
	}
	return &DrawContext{
		Surface:   dc.Surface,
		Transform: dc.Transform.Multiply(m),
		Alpha:     dc.Alpha * alpha,
		Blend:     blend,
		stats:     dc.stats,
		cull:      dc.cull,
		culling:   dc.culling,
	}
}

// setCull enables culling against r in surface space.
func (dc *DrawContext) setCull(r Rect) {
	dc.cull = r
	dc.culling = true
}

// culled reports whether a leaf object placed by m lies entirely outside
// the cull rectangle. Containers and objects without a size are never
// culled.
func (dc *DrawContext) culled(o Object, m Affine) bool {
	if !dc.culling || asContainer(o) != nil {
		return false
	}
	b := o.Base()
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	return !aabb(dc.Transform.Multiply(m), b.Width, b.Height).Intersects(dc.cull)
}

func (dc *DrawContext) countDraw() {
	if dc.stats != nil {
		dc.stats.DrawCalls++
	}
}

// FillPath fills pts in local coordinates.
func (dc *DrawContext) FillPath(pts []Vec2, c Color) {
	if len(pts) < 3 || dc.Alpha <= 0 {
		return
	}
	dc.countDraw()
	dc.Surface.FillPath(pts, dc.Transform, c.WithAlpha(dc.Alpha), dc.Blend)
}

// StrokePath outlines pts in local coordinates.
func (dc *DrawContext) StrokePath(pts []Vec2, closed bool, width float64, c Color) {
	if len(pts) < 2 || width <= 0 || dc.Alpha <= 0 {
		return
	}
	dc.countDraw()
	dc.Surface.StrokePath(pts, closed, width, dc.Transform, c.WithAlpha(dc.Alpha), dc.Blend)
}

// DrawImage blits img at local (0, 0).
func (dc *DrawContext) DrawImage(img *ebiten.Image) {
	if img == nil || dc.Alpha <= 0 {
		return
	}
	dc.countDraw()
	dc.Surface.DrawImage(img, dc.Transform, dc.Alpha, dc.Blend)
}

// DrawText draws s at local (0, 0).
func (dc *DrawContext) DrawText(s string, face text.Face, lineSpacing float64, c Color) {
	if s == "" || face == nil || dc.Alpha <= 0 {
		return
	}
	dc.countDraw()
	dc.Surface.DrawText(s, face, lineSpacing, dc.Transform, c.WithAlpha(dc.Alpha), dc.Blend)
}

// --- Ebitengine surface ---

// EbitenSurface draws into an *ebiten.Image.
type EbitenSurface struct {
	img   *ebiten.Image
	verts []ebiten.Vertex
	inds  []uint32
}

// NewEbitenSurface wraps img.
func NewEbitenSurface(img *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{img: img}
}

// Image returns the wrapped image.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.img
}

// Size implements Surface.
func (s *EbitenSurface) Size() (w, h int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sub implements Surface.
func (s *EbitenSurface) Sub(r Rect) Surface {
	sub := s.img.SubImage(image.Rect(
		int(r.X), int(r.Y),
		int(r.X+r.Width), int(r.Y+r.Height),
	)).(*ebiten.Image)
	return &EbitenSurface{img: sub}
}

// FillPath implements Surface.
func (s *EbitenSurface) FillPath(pts []Vec2, m Affine, c Color, blend BlendMode) {
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]
	for _, p := range pts {
		s.appendVertex(m, p.X, p.Y, c)
	}
	for i := 1; i+1 < len(pts); i++ {
		s.inds = append(s.inds, 0, uint32(i), uint32(i+1))
	}
	s.flush(blend)
}

// StrokePath implements Surface. Each segment is drawn as a quad; joints
// are not mitred.
func (s *EbitenSurface) StrokePath(pts []Vec2, closed bool, width float64, m Affine, c Color, blend BlendMode) {
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	// Stroke width is applied in surface space so scaled objects keep a
	// constant line thickness.
	half := width / 2
	for i := 0; i < segs; i++ {
		ax, ay := m.Apply(pts[i].X, pts[i].Y)
		j := (i + 1) % n
		bx, by := m.Apply(pts[j].X, pts[j].Y)
		dx, dy := bx-ax, by-ay
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		base := uint32(len(s.verts))
		s.appendVertex(IdentityAffine, ax+nx, ay+ny, c)
		s.appendVertex(IdentityAffine, bx+nx, by+ny, c)
		s.appendVertex(IdentityAffine, ax-nx, ay-ny, c)
		s.appendVertex(IdentityAffine, bx-nx, by-ny, c)
		s.inds = append(s.inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	s.flush(blend)
}

// DrawImage implements Surface.
func (s *EbitenSurface) DrawImage(img *ebiten.Image, m Affine, alpha float64, blend BlendMode) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM(m)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Blend = blend.EbitenBlend()
	s.img.DrawImage(img, op)
}

// DrawText implements Surface.
func (s *EbitenSurface) DrawText(str string, face text.Face, lineSpacing float64, m Affine, c Color, blend BlendMode) {
	op := &text.DrawOptions{}
	op.GeoM = geoM(m)
	op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), 1)
	op.ColorScale.ScaleAlpha(float32(c.A))
	op.Blend = blend.EbitenBlend()
	op.LineSpacing = lineSpacing
	text.Draw(s.img, str, face, op)
}

func (s *EbitenSurface) appendVertex(m Affine, x, y float64, c Color) {
	dx, dy := m.Apply(x, y)
	a := float32(clamp01(c.A))
	s.verts = append(s.verts, ebiten.Vertex{
		DstX:   float32(dx),
		DstY:   float32(dy),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(clamp01(c.R)) * a,
		ColorG: float32(clamp01(c.G)) * a,
		ColorB: float32(clamp01(c.B)) * a,
		ColorA: a,
	})
}

func (s *EbitenSurface) flush(blend BlendMode) {
	if len(s.inds) == 0 {
		return
	}
	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	triOp.AntiAlias = true
	s.img.DrawTriangles32(s.verts, s.inds, WhitePixel, &triOp)
}

// geoM converts an Affine to an ebiten.GeoM.
func geoM(m Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}
