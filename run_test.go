package canopy

import (
	"errors"
	"testing"
)

func TestRunRejectsBadWindowSize(t *testing.T) {
	for _, cfg := range []RunConfig{{Width: 0, Height: 10}, {Width: 10, Height: -1}} {
		if err := Run(NewPipeline(), cfg); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Run(%+v) = %v, want ErrInvalidOption", cfg, err)
		}
	}
}

func TestGameLayoutResizesPipeline(t *testing.T) {
	p := NewPipeline()
	cam := p.NewCamera(Rect{})
	g := &game{p: p, w: 100, h: 100}

	w, h := g.Layout(320, 240)
	if w != 320 || h != 240 {
		t.Errorf("layout = %dx%d", w, h)
	}
	if sw, sh := p.SurfaceSize(); sw != 320 || sh != 240 {
		t.Errorf("surface = %vx%v, want 320x240", sw, sh)
	}
	if cam.Viewport.Width != 320 {
		t.Error("fit camera not resized")
	}
}
