package canopy

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// Drawable is a visual primitive attached to a GameObject. Draw receives a
// context already positioned at the object's local origin.
type Drawable interface {
	Draw(dc *DrawContext)
	// Bounds returns the local-space extent of what Draw paints.
	Bounds() Rect
}

// Fill and stroke colors with zero alpha are skipped.

// RectShape is a filled and/or stroked rectangle at (0, 0).
type RectShape struct {
	Width, Height float64
	Fill          Color
	Stroke        Color
	StrokeWidth   float64
}

// Draw implements Drawable.
func (r *RectShape) Draw(dc *DrawContext) {
	pts := []Vec2{{0, 0}, {r.Width, 0}, {r.Width, r.Height}, {0, r.Height}}
	if r.Fill.A > 0 {
		dc.FillPath(pts, r.Fill)
	}
	if r.Stroke.A > 0 {
		dc.StrokePath(pts, true, r.StrokeWidth, r.Stroke)
	}
}

// Bounds implements Drawable.
func (r *RectShape) Bounds() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// defaultCircleSegments is used when CircleShape.Segments is unset.
const defaultCircleSegments = 32

// CircleShape is a circle whose bounding box starts at (0, 0), so its
// center is at (Radius, Radius).
type CircleShape struct {
	Radius      float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
	Segments    int
}

// Draw implements Drawable.
func (c *CircleShape) Draw(dc *DrawContext) {
	if c.Radius <= 0 {
		return
	}
	n := c.Segments
	if n < 3 {
		n = defaultCircleSegments
	}
	pts := make([]Vec2, n)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = Vec2{c.Radius + cos*c.Radius, c.Radius + sin*c.Radius}
	}
	if c.Fill.A > 0 {
		dc.FillPath(pts, c.Fill)
	}
	if c.Stroke.A > 0 {
		dc.StrokePath(pts, true, c.StrokeWidth, c.Stroke)
	}
}

// Bounds implements Drawable.
func (c *CircleShape) Bounds() Rect {
	return Rect{Width: 2 * c.Radius, Height: 2 * c.Radius}
}

// PolygonShape is a polygon or polyline through Points. Fill requires a
// convex polygon.
type PolygonShape struct {
	Points      []Vec2
	Closed      bool
	Fill        Color
	Stroke      Color
	StrokeWidth float64
}

// Draw implements Drawable.
func (p *PolygonShape) Draw(dc *DrawContext) {
	if p.Fill.A > 0 {
		dc.FillPath(p.Points, p.Fill)
	}
	if p.Stroke.A > 0 {
		dc.StrokePath(p.Points, p.Closed, p.StrokeWidth, p.Stroke)
	}
}

// Bounds implements Drawable.
func (p *PolygonShape) Bounds() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	minX, minY := p.Points[0].X, p.Points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p.Points[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ImageShape blits an image at (0, 0).
type ImageShape struct {
	Image *ebiten.Image
}

// Draw implements Drawable.
func (s *ImageShape) Draw(dc *DrawContext) {
	dc.DrawImage(s.Image)
}

// Bounds implements Drawable.
func (s *ImageShape) Bounds() Rect {
	if s.Image == nil {
		return Rect{}
	}
	b := s.Image.Bounds()
	return Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// DefaultFace is the bitmap face used by text shapes without a Face.
var DefaultFace text.Face = text.NewGoXFace(basicfont.Face7x13)

// TextShape draws a string with its top-left corner at (0, 0).
type TextShape struct {
	Text        string
	Face        text.Face
	Color       Color
	LineSpacing float64
}

// NewTextShape creates a white text shape using DefaultFace.
func NewTextShape(s string) *TextShape {
	return &TextShape{Text: s, Color: ColorWhite}
}

func (t *TextShape) face() text.Face {
	if t.Face != nil {
		return t.Face
	}
	return DefaultFace
}

func (t *TextShape) lineSpacing() float64 {
	if t.LineSpacing > 0 {
		return t.LineSpacing
	}
	m := t.face().Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// Draw implements Drawable.
func (t *TextShape) Draw(dc *DrawContext) {
	dc.DrawText(t.Text, t.face(), t.lineSpacing(), t.Color)
}

// Bounds implements Drawable.
func (t *TextShape) Bounds() Rect {
	w, h := text.Measure(t.Text, t.face(), t.lineSpacing())
	return Rect{Width: w, Height: h}
}
