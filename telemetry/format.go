package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/SFTtech/abrechnung-sub002/output"
)

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	check snapshot.json: 12ms
//	├─ loader.load snapshot.json: 4ms
//	└─ balance.compute (120 transactions): 7ms
//	   ├─ balance.fold: 6ms
//	   └─ balance.clearing: 1ms
func formatTimingTree(w io.Writer, root *timerNode, stylesInterface interface{}) {
	var styles *output.Styles
	if s, ok := stylesInterface.(*output.Styles); ok {
		styles = s
	}

	duration := root.end.Sub(root.start)

	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.name), formatDuration(duration))
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, formatDuration(duration))
	}

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

// formatNode recursively formats a node and its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)
	isSlowOperation := duration >= 100*time.Millisecond

	var branch, extension string
	if isLast {
		branch = "└─ "
		extension = "   "
	} else {
		branch = "├─ "
		extension = "│  "
	}

	if styles != nil {
		timing := formatDuration(duration)
		if isSlowOperation {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, formatDuration(duration))
	}

	childPrefix := prefix + extension
	for i, child := range node.children {
		formatNode(w, child, childPrefix, i == len(node.children)-1, styles)
	}
}

// formatDuration formats a duration for display.
// Shows milliseconds for < 1s, seconds for >= 1s.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
