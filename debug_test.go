package canopy

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/phanxgames/canopy/internal/logging"
)

func debugPipeline(t *testing.T, buf *bytes.Buffer) *Pipeline {
	t.Helper()
	p := NewPipeline()
	p.SetLogger(logging.NewWriter(buf, slog.LevelDebug))
	p.SetDebugMode(true)
	t.Cleanup(func() {
		p.SetDebugMode(false)
		p.SetLogger(nil)
	})
	return p
}

func TestDebugDisposedAddPanics(t *testing.T) {
	var buf bytes.Buffer
	p := debugPipeline(t, &buf)
	g := NewGameObject("ghost")
	g.Dispose()
	expectPanic(t, `Add (child) on disposed object "ghost"`, func() { p.Add(g) })
}

func TestDebugChildCountWarning(t *testing.T) {
	var buf bytes.Buffer
	p := debugPipeline(t, &buf)
	for i := 0; i <= debugMaxChildCount; i++ {
		p.Add(NewGameObject("o"))
	}
	if !strings.Contains(buf.String(), "child count exceeds threshold") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestDebugFrameStats(t *testing.T) {
	var buf bytes.Buffer
	p := debugPipeline(t, &buf)
	p.Add(tagged("o", 0.1, 5, 5))
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	p.Update(0.016)
	p.Render(newRecordingSurface(10, 10))

	out := buf.String()
	for _, want := range []string{"msg=frame", "draw_calls=1", "sort_passes=1", "pipeline started", "to=running"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestDebugOffIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPipeline()
	p.SetLogger(logging.NewWriter(&buf, slog.LevelDebug))
	t.Cleanup(func() { p.SetLogger(nil) })
	p.Render(newRecordingSurface(10, 10))
	if strings.Contains(buf.String(), "msg=frame") {
		t.Error("frame stats logged without debug mode")
	}
}

func TestFPSWidget(t *testing.T) {
	w := NewFPSWidget()
	if w.ZIndex != math.MaxInt32 {
		t.Errorf("z = %d, want top", w.ZIndex)
	}
	if w.NumChildren() != 1 || w.ChildAt(0).Base().Name != "fps_text" {
		t.Fatal("missing text child")
	}
	w.Update(1)
	txt := w.ChildAt(0).Base().Shape.(*TextShape)
	if strings.Contains(txt.Text, "--") {
		t.Errorf("text = %q", txt.Text)
	}
}
