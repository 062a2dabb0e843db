package canopy

import (
	"fmt"
	"math"
	"strings"
)

// Anchor names one of the nine standard attachment points of a rectangle.
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorTop
	AnchorTopRight
	AnchorLeft
	AnchorCenter
	AnchorRight
	AnchorBottomLeft
	AnchorBottom
	AnchorBottomRight
)

var anchorNames = [...]string{
	"top-left", "top", "top-right",
	"left", "center", "right",
	"bottom-left", "bottom", "bottom-right",
}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", uint8(a))
}

// ParseAnchor parses an anchor name such as "top-left", "TopLeft" or
// "bottom_right". Unknown names return an error wrapping ErrUnknownAnchor.
func ParseAnchor(s string) (Anchor, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for i, name := range anchorNames {
		if key == strings.ReplaceAll(name, "-", "") {
			return Anchor(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAnchor, s)
}

// factors returns the normalized anchor point (0, 0.5 or 1 on each axis).
func (a Anchor) factors() (fx, fy float64) {
	return float64(a%3) / 2, float64(a/3) / 2
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// AnchorConfig pins an object to a point of the surface or of another object.
type AnchorConfig struct {
	Anchor Anchor
	// Margin insets the object from the anchored edges. It has no effect on
	// a centered axis.
	Margin float64
	// OffsetX and OffsetY are added after the margin.
	OffsetX, OffsetY float64
	// Relative anchors to this object's world bounds instead of the surface.
	Relative Object
}

// SetAnchor attaches an anchor. The Pipeline positions the object on the
// next resize or update.
func (g *GameObject) SetAnchor(cfg AnchorConfig) {
	c := cfg
	g.anchor = &c
	g.anchorSource = Rect{Width: -1}
}

// ClearAnchor removes the anchor; the object keeps its current position.
func (g *GameObject) ClearAnchor() {
	g.anchor = nil
}

// AnchorConfig returns the current anchor, or nil.
func (g *GameObject) AnchorConfig() *AnchorConfig {
	return g.anchor
}

// anchorTarget resolves the rectangle g is anchored to. ok is false when
// the relative object can no longer be placed.
func (g *GameObject) anchorTarget(surface Rect) (Rect, bool) {
	rel := g.anchor.Relative
	if rel == nil {
		return surface, true
	}
	rb := rel.Base()
	if rb.disposed {
		return Rect{}, false
	}
	m, ok := rb.WorldMatrix()
	if !ok {
		return Rect{}, false
	}
	return aabb(m, rb.Width, rb.Height), true
}

// applyAnchor positions g against its target when the target changed or
// force is set.
func (g *GameObject) applyAnchor(surface Rect, force bool) {
	if g.anchor == nil {
		return
	}
	target, ok := g.anchorTarget(surface)
	if !ok || (!force && target == g.anchorSource) {
		return
	}
	g.anchorSource = target

	cfg := g.anchor
	fx, fy := cfg.Anchor.factors()
	ow := g.Width * math.Abs(g.ScaleX)
	oh := g.Height * math.Abs(g.ScaleY)

	left := target.X + fx*(target.Width-ow) + (1-2*fx)*cfg.Margin + cfg.OffsetX
	top := target.Y + fy*(target.Height-oh) + (1-2*fy)*cfg.Margin + cfg.OffsetY

	// Position is where the pivot lands.
	wx := left + g.OriginX*ow
	wy := top + g.OriginY*oh

	if g.parent == nil {
		g.X, g.Y = wx, wy
		return
	}
	lx, ly, ok := g.parent.Base().WorldToLocal(wx, wy)
	if !ok {
		return
	}
	if s := sceneOf(g.parent); s != nil {
		lx -= s.ContentOffset.X
		ly -= s.ContentOffset.Y
	}
	g.X, g.Y = lx, ly
}
