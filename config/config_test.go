package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
window:
  title: Orbit
  width: 640
pipeline:
  max_delta: 0.05
  debug: true
camera2d:
  zoom: 2
  bounds: {x: 0, y: 0, width: 2000, height: 1000}
camera3d:
  perspective: 600
  inertia: true
  auto_rotate_axis: x
`))
	require.NoError(t, err)

	assert.Equal(t, "Orbit", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 540, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, 0.05, cfg.Pipeline.MaxDelta)
	assert.True(t, cfg.Pipeline.Debug)
	assert.Equal(t, 2.0, cfg.Camera2D.Zoom)
	require.NotNil(t, cfg.Camera2D.Bounds)
	assert.Equal(t, canopy.Rect{Width: 2000, Height: 1000}, *cfg.Camera2D.Bounds)

	opts := cfg.Camera3DOptions()
	assert.Equal(t, 600.0, opts.Perspective)
	assert.True(t, opts.Inertia)
	assert.Equal(t, "x", opts.AutoRotateAxis)
}

func TestParseAcceptsJSON(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"window": {"title": "json", "width": 320, "height": 200}}`))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Window.Title)
	assert.Equal(t, 320, cfg.Window.Width)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"window size", "window: {width: 0}"},
		{"negative tps", "window: {tps: -1}"},
		{"background", `window: {background: "red"}`},
		{"max delta", "pipeline: {max_delta: -1}"},
		{"log level", "pipeline: {log_level: loud}"},
		{"zoom", "camera2d: {zoom: -2}"},
		{"follow lerp", "camera2d: {follow_lerp: 1.5}"},
		{"friction", "camera3d: {friction: 1}"},
		{"axis", "camera3d: {auto_rotate_axis: z}"},
		{"perspective", "camera3d: {perspective: -10}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestValidateJoinsAllErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width = 0
	cfg.Camera2D.Zoom = 0
	err := cfg.Validate()
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := config.Parse([]byte("window: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseColor(t *testing.T) {
	c, err := config.ParseColor("#ff8000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 128.0/255, c.G, 1e-9)
	assert.InDelta(t, 0.0, c.B, 1e-9)
	assert.InDelta(t, 1.0, c.A, 1e-9)

	c, err = config.ParseColor("00000080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)

	c, err = config.ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, canopy.Color{}, c)

	_, err = config.ParseColor("#12345")
	assert.ErrorIs(t, err, config.ErrInvalid)
	_, err = config.ParseColor("#gggggg")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestApplyPipelineAndCamera(t *testing.T) {
	cfg := config.Default()
	cfg.Camera2D.Zoom = 3
	cfg.Camera2D.Cull = false
	cfg.Camera2D.Bounds = &canopy.Rect{Width: 100, Height: 100}

	p := canopy.NewPipeline()
	cfg.ApplyPipeline(p)
	cam := p.NewCamera(canopy.Rect{Width: 50, Height: 50})
	cfg.ApplyCamera2D(cam)

	assert.Equal(t, 3.0, cam.Zoom)
	assert.False(t, cam.CullEnabled)
	assert.True(t, cam.BoundsEnabled)
	assert.Equal(t, canopy.Rect{Width: 100, Height: 100}, cam.Bounds)

	cfg.Camera2D.Bounds = nil
	cfg.ApplyCamera2D(cam)
	assert.False(t, cam.BoundsEnabled)
}

func TestRunConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Window.ShowFPS = true
	rc := cfg.RunConfig()
	assert.Equal(t, cfg.Window.Width, rc.Width)
	assert.Equal(t, cfg.Window.Height, rc.Height)
	assert.True(t, rc.ShowFPS)
	assert.InDelta(t, 1.0, rc.Background.A, 1e-9)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: {title: one}\n"), 0o644))

	w, err := config.Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("window: {title: two}\n"), 0o644))

	select {
	case cfg := <-w.Events:
		assert.Equal(t, "two", cfg.Window.Title)
	case err := <-w.Errors:
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatchReportsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: {title: ok}\n"), 0o644))

	w, err := config.Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("camera2d: {zoom: -1}\n"), 0o644))

	select {
	case cfg := <-w.Events:
		t.Fatalf("unexpected config: %+v", cfg)
	case err := <-w.Errors:
		assert.ErrorIs(t, err, config.ErrInvalid)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	w, err := config.Watch(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")

	_, ok := <-w.Events
	assert.False(t, ok)
	_, ok = <-w.Errors
	assert.False(t, ok)
}
