// Package graphout implements the external edge emitters: it serializes
// the lock graph and the thread-dependency graph to fixed output paths in
// a small graph-description syntax.
package graphout

import (
	"fmt"
	"os"
	"path/filepath"

	"traceanalyzer/analysis"
)

const (
	lockGraphPath   = "output/graphviz_locks.txt"
	threadGraphPath = "output/graphviz_threads.txt"
)

// WriteLockGraph writes edges to lockGraphPath with an "L" node prefix. A
// nil or empty edges writes an empty graph body. Directory-creation
// failures are reported but not treated as fatal.
func WriteLockGraph(edges []analysis.LockEdge) error {
	lines := make([]string, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, fmt.Sprintf("  L%d -> L%d;", e.From, e.To))
	}
	return writeGraph(lockGraphPath, lines)
}

// WriteThreadGraph writes edges to threadGraphPath with a "T" node prefix.
func WriteThreadGraph(edges []analysis.ThreadEdge) error {
	lines := make([]string, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, fmt.Sprintf("  T%d -> T%d;", e.From, e.To))
	}
	return writeGraph(threadGraphPath, lines)
}

func writeGraph(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "graphout: could not create output directory for %s: %v\n", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "digraph {\n")
	for _, line := range lines {
		fmt.Fprintln(f, line)
	}
	fmt.Fprintf(f, "}\n")
	return nil
}
