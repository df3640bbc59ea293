// Command traceanalyzer decodes a concurrent-execution trace, checks it for
// lock well-formedness violations, and optionally reports lock-dependency
// cycles that may indicate a deadlock.
package main

import (
	"flag"
	"fmt"
	"os"

	"traceanalyzer/internal/graphout"
	"traceanalyzer/internal/log"
	"traceanalyzer/internal/memstat"
	"traceanalyzer/pipeline"
)

var (
	input            string
	normalize        bool
	graph            bool
	lockDependencies bool
	verbose          bool
	quiet            bool
)

func main() {
	flagSet()
	os.Exit(run(pipeline.Config{
		Path:             input,
		Normalize:        normalize,
		Graph:            graph,
		LockDependencies: lockDependencies,
	}))
}

// flagSet binds the command-line surface and parses it.
func flagSet() {
	flag.StringVar(&input, "input", "", "Path to the trace file to analyze (required)")
	flag.BoolVar(&normalize, "normalize", false, "Enable textual-operand retyping of the decoded trace")
	flag.BoolVar(&graph, "graph", false, "Collect and emit lock-graph edges")
	flag.BoolVar(&lockDependencies, "lock-dependencies", false, "Enable dependency extraction and deadlock-cycle counting")
	flag.BoolVar(&verbose, "verbose", false, "Log each violation individually, not just the count")
	flag.BoolVar(&quiet, "quiet", false, "Suppress informational log output")
	flag.Parse()
}

// run executes one analysis pass and returns the process exit code: 0 on a
// clean run with no violations, 1 if any violation or decode error was
// found, 2 on a usage error.
func run(cfg pipeline.Config) int {
	log.Init(quiet, verbose)

	if cfg.Path == "" {
		fmt.Fprintln(os.Stderr, "traceanalyzer: -input is required")
		return 2
	}

	stop := memstat.Start()
	defer stop()

	result := pipeline.Run(cfg)

	for _, v := range result.Violations {
		log.Violation(v)
	}

	if cfg.Graph {
		if err := graphout.WriteLockGraph(result.LockEdges); err != nil {
			log.Warningf("could not write lock graph: %v", err)
		}
		if err := graphout.WriteThreadGraph(result.ThreadEdges); err != nil {
			log.Warningf("could not write thread graph: %v", err)
		}
	}

	if len(result.Violations) == 0 {
		log.Info("no violations found")
		return 0
	}

	log.Errorf("%d violation(s) found", len(result.Violations))
	return 1
}
