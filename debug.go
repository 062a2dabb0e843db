package canopy

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/phanxgames/canopy/internal/logging"
)

// frameStats holds per-frame timing and render metrics.
// Only populated when the Pipeline is in debug mode.
type frameStats struct {
	updateTime time.Duration
	renderTime time.Duration
	render     RenderStats
	sortPasses int
}

// globalDebug mirrors the most recently set Pipeline debug flag so that tree
// operations (which lack a Pipeline pointer) can check it cheaply. Only valid
// with a single Pipeline; multiple Pipelines with differing debug modes will
// reflect whichever called SetDebugMode last.
var (
	globalDebug  bool
	globalLogger = logging.NewNop()
)

func debugEnabled() bool {
	return globalDebug
}

// debugLog writes frame stats at debug level.
func debugLog(log *slog.Logger, stats frameStats) {
	log.Debug("frame",
		slog.Duration("update", stats.updateTime),
		slog.Duration("render", stats.renderTime),
		slog.Int("draw_calls", stats.render.DrawCalls),
		slog.Int("objects", stats.render.ObjectsVisited),
		slog.Int("sort_passes", stats.sortPasses),
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed object
// is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(g *GameObject, op string) {
	if g.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed object %q", op, g.Name))
	}
}

// debugMaxTreeDepth is the depth at which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(g *GameObject) {
	if depth := g.Depth() + 1; depth > debugMaxTreeDepth {
		globalLogger.Warn("tree depth exceeds threshold",
			slog.Int("depth", depth),
			slog.Int("threshold", debugMaxTreeDepth),
			slog.String("object", g.Name))
	}
}

// debugMaxChildCount is the child count at which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(s *Scene) {
	if n := len(s.children); n > debugMaxChildCount {
		globalLogger.Warn("child count exceeds threshold",
			slog.String("scene", s.Name),
			slog.Int("children", n),
			slog.Int("threshold", debugMaxChildCount))
	}
}

// countSortPasses sums paint-order rebuilds over every scene under root.
func countSortPasses(root Object) int {
	total := 0
	walk(root, func(o Object) bool {
		if s := sceneOf(asContainer(o)); s != nil {
			total += s.sortPass
		}
		return true
	})
	return total
}
