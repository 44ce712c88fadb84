// Package debug provides self-profiling instrumentation for flamefold.
package debug

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// StartCPUProfile begins writing a CPU profile to path. It returns a
// stop function that finishes the profile and closes the file.
func StartCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("cpu profile: %w", err)
	}

	stop := func() {
		pprof.StopCPUProfile()
		f.Close()
	}
	return stop, nil
}
