package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
	"github.com/phanxgames/canopy/internal/logging"
	"github.com/tanema/gween/ease"
)

const (
	gridCols  = 8
	gridRows  = 5
	tileSize  = 64
	tileGap   = 16
	orbitSize = 90
)

var (
	tileFill   = canopy.Color{R: 0.24, G: 0.30, B: 0.42, A: 1}
	tileHover  = canopy.Color{R: 0.36, G: 0.62, B: 0.86, A: 1}
	tileStroke = canopy.Color{R: 0.80, G: 0.85, B: 0.95, A: 0.6}
	playerFill = canopy.Color{R: 0.95, G: 0.55, B: 0.25, A: 1}
	orbitFill  = canopy.Color{R: 0.55, G: 0.90, B: 0.60, A: 1}
)

// demo is the scene opened by "canopy run": a hoverable tile grid followed
// by a 2D camera, and a draggable 3D orbit of points.
type demo struct {
	cfg      config.Config
	log      *slog.Logger
	pipeline *canopy.Pipeline
	cam      *canopy.Camera2D
	cam3d    *canopy.Camera3D
	player   *canopy.GameObject
	tweens   []*canopy.TweenGroup
	pending  []*canopy.TweenGroup
	watcher  *config.Watcher
	quit     bool
}

func newDemo(cfg config.Config, log *slog.Logger) (*demo, error) {
	if log == nil {
		log = logging.NewNop()
	}
	p := canopy.NewPipeline()
	p.SetLogger(log)
	cfg.ApplyPipeline(p)

	cam3d, err := canopy.NewCamera3D(cfg.Camera3DOptions())
	if err != nil {
		return nil, err
	}
	d := &demo{cfg: cfg, log: log, pipeline: p, cam3d: cam3d}

	world := canopy.NewScene("world")
	world.OnUpdate = d.updateTweens
	p.Add(world)
	d.buildGrid(world)
	if err := d.buildOrbit(world); err != nil {
		return nil, err
	}
	d.buildPlayer(world)

	d.cam = p.NewCamera(canopy.Rect{})
	cfg.ApplyCamera2D(d.cam)
	d.cam.Follow(d.player, 0, 0, cfg.Camera2D.FollowLerp)
	cam3d.EnableMouseControl(p)

	p.On(canopy.EventKeyDown, d.onKey)
	p.SetUpdateFunc(d.update)
	return d, nil
}

func (d *demo) buildGrid(world *canopy.Scene) {
	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			shape := &canopy.RectShape{
				Width: tileSize, Height: tileSize,
				Fill: tileFill, Stroke: tileStroke, StrokeWidth: 2,
			}
			tile := canopy.NewShapeObject(fmt.Sprintf("tile_%d_%d", col, row), shape)
			tile.SetOrigin(0.5, 0.5)
			tile.SetPosition(
				float64(col*(tileSize+tileGap))+tileSize/2,
				float64(row*(tileSize+tileGap))+tileSize/2,
			)
			tile.SetInteractive(true)

			var fade *canopy.TweenGroup
			fadeTo := func(c canopy.Color, dur float64) {
				if fade != nil {
					fade.Stop()
				}
				fade = canopy.TweenColor(tile, &shape.Fill, c, dur, ease.OutQuad)
				d.play(fade)
			}
			tile.On(canopy.EventMouseOver, func(canopy.Event) { fadeTo(tileHover, 0.15) })
			tile.On(canopy.EventMouseOut, func(canopy.Event) { fadeTo(tileFill, 0.3) })
			tile.On(canopy.EventClick, func(e canopy.Event) {
				d.cam.Shake(6, 0.3)
				pop := canopy.TweenScale(tile, 1.25, 1.25, 0.08, ease.OutQuad)
				pop.OnComplete = func() {
					d.play(canopy.TweenScale(tile, 1, 1, 0.2, ease.OutBounce))
				}
				d.play(pop)
				d.log.Debug("tile clicked", slog.String("tile", tile.Name),
					slog.Float64("x", e.LocalX), slog.Float64("y", e.LocalY))
			})
			world.Add(tile)
		}
	}
}

func (d *demo) buildOrbit(world *canopy.Scene) error {
	orbit, err := canopy.NewScene3D("orbit", d.cam3d)
	if err != nil {
		return err
	}
	orbit.SetPosition(float64(gridCols*(tileSize+tileGap))+200, float64(gridRows*(tileSize+tileGap))/2)
	for i := 0; i < 8; i++ {
		x := float64(i&1*2-1) * orbitSize
		y := float64(i>>1&1*2-1) * orbitSize
		z := float64(i>>2&1*2-1) * orbitSize
		dot := canopy.NewShapeObject(fmt.Sprintf("corner_%d", i), &canopy.CircleShape{Radius: 10, Fill: orbitFill})
		dot.SetOrigin(0.5, 0.5)
		dot.X, dot.Y, dot.Z = x, y, z
		dot.SetInteractive(true)
		dot.On(canopy.EventClick, func(canopy.Event) {
			d.play(canopy.TweenAlpha(dot, 0.3, 0.2, ease.Linear))
		})
		orbit.Add(dot)
	}
	world.Add(orbit)
	return nil
}

func (d *demo) buildPlayer(world *canopy.Scene) {
	d.player = canopy.NewShapeObject("player", &canopy.CircleShape{Radius: 14, Fill: playerFill})
	d.player.SetOrigin(0.5, 0.5)
	d.player.SetZIndex(10)

	cx := float64(gridCols*(tileSize+tileGap)) / 2
	cy := float64(gridRows*(tileSize+tileGap)) / 2
	var t float64
	d.player.OnUpdate = func(dt float64) {
		t += dt
		d.player.SetPosition(cx+math.Cos(t*0.6)*cx*0.8, cy+math.Sin(t*1.2)*cy*0.6)
	}
	world.Add(d.player)

	label := canopy.NewShapeObject("player_label", canopy.NewTextShape("you"))
	label.SetZIndex(11)
	label.SetAnchor(canopy.AnchorConfig{Anchor: canopy.AnchorTop, OffsetY: -18, Relative: d.player})
	world.Add(label)
}

// play queues g; it starts on the next world update.
func (d *demo) play(g *canopy.TweenGroup) {
	d.pending = append(d.pending, g)
}

func (d *demo) onKey(e canopy.Event) {
	switch e.Key {
	case "Space":
		d.cam3d.AutoRotate = !d.cam3d.AutoRotate
		d.log.Info("auto-rotate", slog.Bool("on", d.cam3d.AutoRotate))
	case "R":
		d.cam3d.Stop()
		d.cam3d.RotationX, d.cam3d.RotationY = d.cam3d.Home()
	case "Equal", "KPAdd":
		d.cam.Zoom *= 1.1
		d.cam.MarkDirty()
	case "Minus", "KPSubtract":
		d.cam.Zoom /= 1.1
		d.cam.MarkDirty()
	case "F12":
		d.pipeline.Screenshot("demo")
	case "Escape":
		d.quit = true
	}
}

func (d *demo) updateTweens(dt float64) {
	d.tweens = append(d.tweens, d.pending...)
	clear(d.pending)
	d.pending = d.pending[:0]

	live := d.tweens[:0]
	for _, g := range d.tweens {
		g.Update(dt)
		if !g.Done() {
			live = append(live, g)
		}
	}
	clear(d.tweens[len(live):])
	d.tweens = live
}

func (d *demo) update() error {
	d.reload()
	if d.quit {
		return ebiten.Termination
	}
	return nil
}

// reload applies any config the watcher has produced since the last frame.
func (d *demo) reload() {
	if d.watcher == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-d.watcher.Events:
			if !ok {
				d.watcher = nil
				return
			}
			d.apply(cfg)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				d.watcher = nil
				return
			}
			d.log.Warn("config reload failed", slog.Any("error", err))
		default:
			return
		}
	}
}

func (d *demo) apply(cfg config.Config) {
	d.cfg = cfg
	cfg.ApplyPipeline(d.pipeline)
	cfg.ApplyCamera2D(d.cam)
	d.cam.Follow(d.player, 0, 0, cfg.Camera2D.FollowLerp)

	// NewCamera3D fills defaults; Parse has already validated the options.
	if fresh, err := canopy.NewCamera3D(cfg.Camera3DOptions()); err == nil {
		d.cam3d.Perspective = fresh.Perspective
		d.cam3d.MinRotationX, d.cam3d.MaxRotationX = fresh.MinRotationX, fresh.MaxRotationX
		d.cam3d.AutoRotate = fresh.AutoRotate
		d.cam3d.AutoRotateSpeed = fresh.AutoRotateSpeed
		d.cam3d.AutoRotateAxis = fresh.AutoRotateAxis
		d.cam3d.Inertia = fresh.Inertia
		d.cam3d.Friction = fresh.Friction
		d.cam3d.Sensitivity = fresh.Sensitivity
		d.cam3d.ReturnDelay = fresh.ReturnDelay
		d.cam3d.ReturnDuration = fresh.ReturnDuration
	}
	d.log.Info("config reloaded")
}
