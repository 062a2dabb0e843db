// Package canopy is a retained-mode scene graph and render pipeline for
// [Ebitengine].
//
// Canopy keeps a tree of game objects, paints it through one or more
// cameras, routes pointer and keyboard input to the topmost object under
// the pointer, and runs the per-frame update loop.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the pipeline for you:
//
//	p := canopy.NewPipeline()
//	box := canopy.NewShapeObject("box", &canopy.RectShape{
//		Width: 80, Height: 40, Fill: canopy.Color{R: 0.3, G: 0.7, B: 1, A: 1},
//	})
//	box.SetPosition(100, 50)
//	p.Add(box)
//	canopy.Run(p, canopy.RunConfig{Title: "Demo", Width: 640, Height: 480})
//
// For full control, drive the pipeline from your own [ebiten.Game] by calling
// [Pipeline.Start], [Pipeline.Update], [Pipeline.Render] and
// [Pipeline.OnResize].
//
// # Scene graph
//
// Every element is an [Object]; [GameObject] is the base implementation and
// [Scene] is the container. Children inherit their parent's placement and
// alpha. Within a scene, children update in insertion order and paint in
// ascending [GameObject.ZIndex] order, ties broken by insertion order.
//
//	ui := canopy.NewScene("ui")
//	p.Add(ui)
//	ui.Add(button)
//
// A [Scene3D] projects its children's (X, Y, Z) through a [Camera3D] and
// paints them far to near.
//
// # Placement
//
// An object's local matrix is translate(position) · rotate · scale ·
// translate(−pivot), where the pivot is (OriginX·Width, OriginY·Height).
// Use [GameObject.Transform] for chained edits.
//
// # Input
//
// Pointer and key events are delivered through [GameObject.On] and
// [Pipeline.On]. Only objects with [GameObject.SetInteractive] enabled, and
// whose ancestors are all interactive and visible, can be hit.
//
// # Cameras
//
// [Camera2D] provides smoothed follow, bounds clamping, scroll-to tweens
// (via [gween]) and decaying shake. [Camera3D] provides perspective
// projection with mouse drag, inertia, auto-rotation and return-to-home.
//
// # Automated testing
//
// [Pipeline.InjectClick], [Pipeline.InjectDrag] and [Pipeline.InjectKey]
// queue synthetic input consumed one event per frame. [LoadTestScript]
// reads a YAML or JSON script of such actions. Under [Run],
// [Pipeline.Screenshot] writes the next frame to a PNG.
//
// # State machines
//
// Package canopy/fsm provides the small named-state machine used by the
// pipeline lifecycle and the 3D camera controls.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package canopy
