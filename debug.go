package panels

import (
	"fmt"
	"log/slog"
)

// globalDebug mirrors the most recently configured Manager debug flag so that
// node operations (which lack a Manager pointer) can check it cheaply. Only
// valid with a single Manager; multiple Managers with differing debug modes
// will reflect whichever was created last.
var globalDebug bool

// debugLogger receives tree warnings while globalDebug is set.
var debugLogger = slog.Default()

func setDebugMode(enabled bool, logger *slog.Logger) {
	globalDebug = enabled
	if logger != nil {
		debugLogger = logger
	}
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Callers skip this entirely outside debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("panels debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn("panels: tree depth exceeds threshold",
			"node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn("panels: node child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
