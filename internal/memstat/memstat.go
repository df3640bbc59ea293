// Package memstat reports the peak resident set size observed over the
// lifetime of an analysis run. Adapted from a cancel-on-low-memory guard
// into a passive peak-usage sampler: a single run of this analyzer only
// ever holds O(locks + dependencies + edges) in memory, so there is
// nothing to cancel — only something worth reporting.
package memstat

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"

	"traceanalyzer/internal/log"
)

const sampleInterval = 200 * time.Millisecond

var peakRSS atomic.Uint64

// Start begins sampling the current process's resident set size in the
// background and returns a function that stops sampling and logs the peak
// observed value. Call the returned function once, typically via defer,
// before the process exits.
func Start() (stop func()) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warningf("memstat: could not attach to process: %v", err)
		return func() {}
	}

	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sample(proc)
			}
		}
	}()

	return func() {
		close(done)
		sample(proc)
		log.Infof("peak memory usage: %d bytes", peakRSS.Load())
	}
}

func sample(proc *process.Process) {
	info, err := proc.MemoryInfo()
	if err != nil {
		return
	}

	for {
		current := peakRSS.Load()
		if info.RSS <= current {
			return
		}
		if peakRSS.CompareAndSwap(current, info.RSS) {
			return
		}
	}
}
