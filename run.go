package canopy

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultTPS is the tick rate Run uses when RunConfig.TPS is zero.
const DefaultTPS = 60

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Background Color
	ShowFPS    bool
	Resizable  bool
	// TPS is the fixed update rate. Each Update receives dt = 1/TPS.
	TPS int
}

// Run opens a window, starts p and drives it until the window is closed or
// the pipeline's update func returns ebiten.Termination, which is reported
// as a nil error. Run blocks and must be called from the main goroutine.
func Run(p *Pipeline, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidOption, cfg.Width, cfg.Height)
	}
	if cfg.TPS <= 0 {
		cfg.TPS = DefaultTPS
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.TPS)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if cfg.ShowFPS {
		p.Add(NewFPSWidget())
	}
	p.OnResize(float64(cfg.Width), float64(cfg.Height))
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()

	g := &game{p: p, cfg: cfg, dt: 1 / float64(cfg.TPS), w: cfg.Width, h: cfg.Height}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// game adapts a Pipeline to ebiten.Game.
type game struct {
	p     *Pipeline
	cfg   RunConfig
	input ebitenInput
	dt    float64
	w, h  int
}

func (g *game) Update() error {
	g.input.poll(g.p)
	return g.p.Update(g.dt)
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.Background.A > 0 {
		screen.Fill(g.cfg.Background.RGBA())
	}
	g.p.Render(NewEbitenSurface(screen))
	g.p.flushScreenshots(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.p.OnResize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
