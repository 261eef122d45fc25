// Package workers sizes goroutine pools from the CPU budget of the process.
//
// GOMAXPROCS follows container CPU limits, so pools sized here shrink with
// the container instead of with the host.
package workers

import (
	"os"
	"runtime"
	"strconv"

	"media-catalog/internal/logging"
)

// EnvOverride pins the worker count for every pool when set to a positive
// integer. Caps passed by callers still apply.
const EnvOverride = "WORKERS"

// Kind describes where a pool's tasks spend their time.
type Kind int

const (
	// CPUBound tasks get one worker per available CPU.
	CPUBound Kind = iota
	// IOBound tasks mostly wait on the filesystem and get two per CPU.
	IOBound
)

func (k Kind) perCPU() int {
	if k == IOBound {
		return 2
	}
	return 1
}

// Count returns the number of workers to run for tasks of kind k. A positive
// max caps the result; the result is never below 1.
func Count(k Kind, max int) int {
	n := runtime.GOMAXPROCS(0) * k.perCPU()

	if v := os.Getenv(EnvOverride); v != "" {
		pinned, err := strconv.Atoi(v)
		if err != nil || pinned < 1 {
			logging.Warn("Ignoring invalid %s=%q", EnvOverride, v)
		} else {
			n = pinned
		}
	}

	if max > 0 && n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}
