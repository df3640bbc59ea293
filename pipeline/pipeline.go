// Package pipeline implements the violation collector and analysis
// pipeline: it opens a trace, drives a decoder, feeds the analyzer and the
// optional dependency extractor / lock graph builder, and — on request —
// runs the deadlock detector at end of stream.
package pipeline

import (
	"io"

	"traceanalyzer/analysis"
	"traceanalyzer/internal/log"
	"traceanalyzer/internal/types"
	"traceanalyzer/trace"
)

// Config selects which optional passes a Run performs, mirroring the CLI
// flags.
type Config struct {
	Path             string
	Normalize        bool
	Graph            bool
	LockDependencies bool
}

// Result is everything a Run produced.
type Result struct {
	// Violations holds every fatal decode error and non-fatal
	// well-formedness violation found, in the order encountered. A nil or
	// empty slice means the run succeeded.
	Violations []error

	// CycleCount is the number of deadlock-detector DFS launches that
	// found a cycle. -1 when LockDependencies was not requested.
	CycleCount int

	// LockEdges holds the lock-graph edges. nil when Graph was not
	// requested.
	LockEdges []analysis.LockEdge

	// ThreadEdges holds the thread-dependency-graph edges built in the
	// course of deadlock detection. nil when LockDependencies was not
	// requested.
	ThreadEdges []analysis.ThreadEdge
}

// Run executes one full analysis pass over the trace named by cfg.Path.
func Run(cfg Config) Result {
	result := Result{CycleCount: -1}

	dec, closer, err := trace.Open(cfg.Path, cfg.Normalize)
	if err != nil {
		result.Violations = append(result.Violations, err)
		return result
	}
	defer closer.Close()

	az := analysis.NewAnalyzer()

	var deps *analysis.DependencyExtractor
	if cfg.LockDependencies {
		deps = analysis.NewDependencyExtractor()
	}

	var lockGraph *analysis.LockGraph
	if cfg.Graph {
		lockGraph = analysis.NewLockGraph()
	}

	var decodeErr error
	for {
		ev, skipped, derr := dec.Next()
		if derr == io.EOF {
			break
		}
		if derr != nil {
			decodeErr = derr
			break
		}

		row := az.Advance()

		if skipped {
			continue
		}

		switch ev.Operation {
		case trace.Acquire:
			lockID, _ := ev.Operand.ID()

			var held types.Set[int64]
			if deps != nil || lockGraph != nil {
				held = az.HeldLocks(ev.ThreadID)
			}
			if deps != nil {
				deps.OnAcquire(ev.ThreadID, lockID, held, row)
			}
			if lockGraph != nil {
				lockGraph.OnAcquire(lockID, held)
			}

			az.Acquire(ev.ThreadID, lockID, row)
		case trace.Release:
			lockID, _ := ev.Operand.ID()

			az.Release(ev.ThreadID, lockID, row)
			if deps != nil {
				deps.OnRelease(ev.ThreadID, lockID)
			}
		}
	}

	result.Violations = append(result.Violations, az.Violations()...)
	if decodeErr != nil {
		result.Violations = append(result.Violations, decodeErr)
	}

	if lockGraph != nil {
		result.LockEdges = lockGraph.Edges()
	}

	if deps != nil {
		threadGraph := analysis.BuildThreadGraph(deps.Dependencies())
		result.CycleCount = analysis.CountCycles(threadGraph)
		result.ThreadEdges = threadGraph.Edges()
		log.Infof("deadlock detector: %d cyclic lock-order dependencies found", result.CycleCount)
	}

	return result
}
