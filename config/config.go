// Package config loads canopy settings from YAML files.
//
// A file has four optional sections; anything left out keeps the value
// from Default:
//
//	window:
//	  title: Demo
//	  width: 960
//	  height: 540
//	  background: "#1d2331"
//	pipeline:
//	  max_delta: 0.1
//	  log_level: info
//	  screenshot_dir: screenshots
//	camera2d:
//	  zoom: 1
//	  follow_lerp: 0.15
//	camera3d:
//	  perspective: 800
//	  inertia: true
//
// Use Watch to receive a freshly parsed Config whenever the file changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/internal/logging"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the top-level settings document.
type Config struct {
	Window   Window                 `yaml:"window"`
	Pipeline Pipeline               `yaml:"pipeline"`
	Camera2D Camera2D               `yaml:"camera2d"`
	Camera3D canopy.Camera3DOptions `yaml:"camera3d"`
}

// Window configures the window opened by canopy.Run.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// Background is "#rrggbb" or "#rrggbbaa". Empty means transparent.
	Background string `yaml:"background"`
	ShowFPS    bool   `yaml:"show_fps"`
	Resizable  bool   `yaml:"resizable"`
	TPS        int    `yaml:"tps"`
}

// Pipeline configures a canopy.Pipeline.
type Pipeline struct {
	MaxDelta      float64 `yaml:"max_delta"`
	DragDeadZone  float64 `yaml:"drag_dead_zone"`
	Debug         bool    `yaml:"debug"`
	LogLevel      string  `yaml:"log_level"`
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// Camera2D configures a canopy.Camera2D.
type Camera2D struct {
	Zoom        float64      `yaml:"zoom"`
	FollowLerp  float64      `yaml:"follow_lerp"`
	SnapEpsilon float64      `yaml:"snap_epsilon"`
	Cull        bool         `yaml:"cull"`
	Bounds      *canopy.Rect `yaml:"bounds"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Window: Window{
			Title:      "canopy",
			Width:      960,
			Height:     540,
			Background: "#1d2331",
			TPS:        canopy.DefaultTPS,
		},
		Pipeline: Pipeline{
			MaxDelta:      canopy.DefaultMaxDelta,
			DragDeadZone:  4,
			LogLevel:      "info",
			ScreenshotDir: canopy.DefaultScreenshotDir,
		},
		Camera2D: Camera2D{
			Zoom:        1,
			FollowLerp:  0.15,
			SnapEpsilon: canopy.DefaultSnapEpsilon,
			Cull:        true,
		},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML (or JSON) document over Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid value, joined.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS < 0 {
		bad("window.tps %d must not be negative", c.Window.TPS)
	}
	if _, err := ParseColor(c.Window.Background); err != nil {
		errs = append(errs, err)
	}
	if c.Pipeline.MaxDelta < 0 {
		bad("pipeline.max_delta %v must not be negative", c.Pipeline.MaxDelta)
	}
	if c.Pipeline.DragDeadZone < 0 {
		bad("pipeline.drag_dead_zone %v must not be negative", c.Pipeline.DragDeadZone)
	}
	switch strings.ToLower(c.Pipeline.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		bad("pipeline.log_level %q is not a level", c.Pipeline.LogLevel)
	}
	if c.Camera2D.Zoom <= 0 {
		bad("camera2d.zoom %v must be positive", c.Camera2D.Zoom)
	}
	if c.Camera2D.FollowLerp <= 0 || c.Camera2D.FollowLerp > 1 {
		bad("camera2d.follow_lerp %v must be in (0, 1]", c.Camera2D.FollowLerp)
	}
	if c.Camera2D.SnapEpsilon < 0 {
		bad("camera2d.snap_epsilon %v must not be negative", c.Camera2D.SnapEpsilon)
	}
	if b := c.Camera2D.Bounds; b != nil && (b.Width < 0 || b.Height < 0) {
		bad("camera2d.bounds size must not be negative")
	}
	if _, err := canopy.NewCamera3D(c.Camera3D); err != nil {
		errs = append(errs, fmt.Errorf("%w: camera3d: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured slog level.
func (c Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Pipeline.LogLevel)
}

// RunConfig returns the window settings for canopy.Run.
func (c Config) RunConfig() canopy.RunConfig {
	bg, _ := ParseColor(c.Window.Background)
	return canopy.RunConfig{
		Title:      c.Window.Title,
		Width:      c.Window.Width,
		Height:     c.Window.Height,
		Background: bg,
		ShowFPS:    c.Window.ShowFPS,
		Resizable:  c.Window.Resizable,
		TPS:        c.Window.TPS,
	}
}

// ApplyPipeline copies the pipeline settings onto p.
func (c Config) ApplyPipeline(p *canopy.Pipeline) {
	p.SetMaxDelta(c.Pipeline.MaxDelta)
	p.SetDragDeadZone(c.Pipeline.DragDeadZone)
	p.SetDebugMode(c.Pipeline.Debug)
	p.SetScreenshotDir(c.Pipeline.ScreenshotDir)
}

// ApplyCamera2D copies the 2D camera settings onto cam.
func (c Config) ApplyCamera2D(cam *canopy.Camera2D) {
	cam.Zoom = c.Camera2D.Zoom
	cam.SnapEpsilon = c.Camera2D.SnapEpsilon
	cam.CullEnabled = c.Camera2D.Cull
	if b := c.Camera2D.Bounds; b != nil {
		cam.SetBounds(*b)
	} else {
		cam.ClearBounds()
	}
	cam.MarkDirty()
}

// Camera3DOptions returns the 3D camera options.
func (c Config) Camera3DOptions() canopy.Camera3DOptions {
	return c.Camera3D
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is the zero
// (transparent) color.
func ParseColor(s string) (canopy.Color, error) {
	if s == "" {
		return canopy.Color{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return canopy.Color{}, fmt.Errorf("%w: color %q must be #rrggbb or #rrggbbaa", ErrInvalid, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return canopy.Color{}, fmt.Errorf("%w: color %q: %w", ErrInvalid, s, err)
	}
	return canopy.Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
