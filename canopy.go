package canopy

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Version is the library version reported by the canopy command.
const Version = "0.1.0"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGBA converts the color to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(math.Round(clamp01(c.R) * a * 255)),
		G: uint8(math.Round(clamp01(c.G) * a * 255)),
		B: uint8(math.Round(clamp01(c.B) * a * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// WhitePixel is a 1x1 white image used as the source texture for solid fills.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(color.White)
}

// Rect is a box in screen-style coordinates: Y grows downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) is in r. Edges count as inside.
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.Right() && r.Y <= y && y <= r.Bottom()
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether r and other share any point, so boxes that
// only touch along an edge intersect.
func (r Rect) Intersects(other Rect) bool {
	if r.Right() < other.X || other.Right() < r.X {
		return false
	}
	return r.Bottom() >= other.Y && other.Bottom() >= r.Y
}

// BlendMode picks how a draw call combines with what is already on the
// surface.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // src over dst
	BlendAdd                       // src + dst
	BlendMultiply                  // src × dst
	BlendScreen                    // 1 − (1−src)(1−dst)
	BlendErase                     // dst out
	BlendBelow                     // dst over src
	BlendNone                      // src replaces dst
	numBlendModes
)

var ebitenBlends = [numBlendModes]ebiten.Blend{
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendMultiply: {
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendScreen: {
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendErase: ebiten.BlendDestinationOut,
	BlendBelow: ebiten.BlendDestinationOver,
	BlendNone:  ebiten.BlendCopy,
}

// EbitenBlend returns the ebiten.Blend for b. Unknown modes draw as
// BlendNormal.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	if b >= numBlendModes {
		return ebiten.BlendSourceOver
	}
	return ebitenBlends[b]
}

// EventType identifies a kind of event delivered through an Emitter.
type EventType uint8

const (
	EventPointerDown EventType = iota // fires when a pointer button is pressed
	EventPointerUp                    // fires when a pointer button is released
	EventPointerMove                  // fires when the pointer moves (hover, no button)
	EventClick                        // fires on press then release over the same object
	EventDragStart                    // fires when movement exceeds the drag dead zone
	EventDrag                         // fires each event while dragging
	EventDragEnd                      // fires when the pointer is released after dragging
	EventMouseOver                    // fires when the pointer starts hovering an object
	EventMouseOut                     // fires when a hovered object loses the pointer
	EventKeyDown                      // fires when a key is pressed
	EventKeyUp                        // fires when a key is released

	numEventTypes
)

var eventTypeNames = [numEventTypes]string{
	"pointerdown", "pointerup", "pointermove", "click",
	"dragstart", "drag", "dragend", "mouseover", "mouseout",
	"keydown", "keyup",
}

func (t EventType) String() string {
	if t < numEventTypes {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
