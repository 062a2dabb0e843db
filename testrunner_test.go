package canopy

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/phanxgames/canopy/internal/logging"
)

func TestLoadTestScript(t *testing.T) {
	data := []byte(`
steps:
  - action: log
    label: initial
  - action: click
    x: 100
    y: 200
  - action: wait
    frames: 3
  - action: key
    key: Escape
`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "log" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].Key != "Escape" {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScriptJSON(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "drag", "fromX": 1, "fromY": 2, "toX": 3, "toY": 4, "frames": 5}]}`))
	if err != nil {
		t.Fatal(err)
	}
	st := runner.steps[0]
	if st.FromX != 1 || st.FromY != 2 || st.ToX != 3 || st.ToY != 4 || st.Frames != 5 {
		t.Errorf("step = %+v", st)
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	cases := map[string]string{
		"malformed":       `steps: [`,
		"empty":           `steps: []`,
		"unknown action":  `steps: [{action: teleport}]`,
		"key without key": `steps: [{action: key}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadTestScript([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunnerStepClick(t *testing.T) {
	p := startedPipeline(t)
	box := newBox("box", 0, 0, 200, 200)
	p.Add(box)

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "click", "x": 50, "y": 50}]}`))
	if err != nil {
		t.Fatal(err)
	}
	p.SetTestRunner(runner)

	var clicked bool
	box.On(EventClick, func(Event) { clicked = true })

	// Frame 1: the runner queues the click and the press is handled.
	p.Update(1.0 / 60)
	if clicked {
		t.Error("click should not fire on the press frame")
	}
	// Frame 2: release.
	p.Update(1.0 / 60)
	if !clicked {
		t.Error("click should fire on the release frame")
	}
	if runner.Done() {
		t.Error("runner finished before its queue drained on a frame boundary")
	}
	// Frame 3: nothing left.
	p.Update(1.0 / 60)
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerWait(t *testing.T) {
	p := startedPipeline(t)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "wait", "frames": 3}, {"action": "key", "key": "A"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	p.SetTestRunner(runner)
	var keyFrame int
	frame := 0
	p.On(EventKeyDown, func(Event) { keyFrame = frame })

	for frame = 1; frame <= 10 && keyFrame == 0; frame++ {
		p.Update(1.0 / 60)
	}
	// Frames 1-3 wait, frame 4 queues and handles the key press.
	if keyFrame != 4 {
		t.Errorf("key pressed on frame %d, want 4", keyFrame)
	}
}

func TestRunnerLogStep(t *testing.T) {
	var buf bytes.Buffer
	p := startedPipeline(t)
	p.SetLogger(logging.NewWriter(&buf, slog.LevelInfo))
	t.Cleanup(func() { p.SetLogger(nil) })

	runner, err := LoadTestScript([]byte(`steps: [{action: log, label: checkpoint}]`))
	if err != nil {
		t.Fatal(err)
	}
	p.SetTestRunner(runner)
	p.Update(1.0 / 60)
	if !strings.Contains(buf.String(), "label=checkpoint") {
		t.Errorf("log output = %q", buf.String())
	}
	if !runner.Done() {
		t.Error("single log step should finish immediately")
	}
}

func TestRunnerScreenshotStep(t *testing.T) {
	p := startedPipeline(t)
	runner, err := LoadTestScript([]byte(`steps: [{action: screenshot, label: after-click}]`))
	if err != nil {
		t.Fatal(err)
	}
	p.SetTestRunner(runner)
	p.Update(1.0 / 60)
	if p.PendingScreenshots() != 1 {
		t.Errorf("pending screenshots = %d, want 1", p.PendingScreenshots())
	}
}
