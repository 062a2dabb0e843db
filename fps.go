package canopy

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const fpsRefreshInterval = 0.5

// NewFPSWidget creates an object that shows the current FPS and TPS,
// refreshed about twice a second. It paints above its siblings.
func NewFPSWidget() *Scene {
	label := NewTextShape("FPS: --\nTPS: --")
	w := NewScene("fps_widget")
	w.SetShape(&RectShape{Width: 100, Height: 32, Fill: Color{0, 0, 0, 0.5}})
	w.SetZIndex(math.MaxInt32)

	txt := NewShapeObject("fps_text", label)
	txt.SetPosition(4, 2)
	w.Add(txt)

	var elapsed float64
	w.OnUpdate = func(dt float64) {
		elapsed += dt
		if elapsed < fpsRefreshInterval {
			return
		}
		elapsed = 0
		label.Text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	return w
}
