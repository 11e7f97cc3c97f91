package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"sync"
	"time"
)

// cpuProfile captures a CPU profile for a fixed wall-clock window, the
// input for a default.pgo build.
type cpuProfile struct {
	path     string
	out      *os.File
	deadline time.Time

	once sync.Once
	err  error
}

// startCPUProfile begins profiling into path. The caller polls Expired and
// calls Stop once the window has passed.
func startCPUProfile(path string, window time.Duration) (*cpuProfile, error) {
	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(out); err != nil {
		out.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	return &cpuProfile{path: path, out: out, deadline: time.Now().Add(window)}, nil
}

// Expired reports whether the capture window is over at now.
func (p *cpuProfile) Expired(now time.Time) bool { return !now.Before(p.deadline) }

// Stop flushes the profile. Later calls return the first result.
func (p *cpuProfile) Stop() error {
	p.once.Do(func() {
		pprof.StopCPUProfile()
		if err := p.out.Close(); err != nil {
			p.err = fmt.Errorf("closing %s: %w", p.path, err)
		}
	})
	return p.err
}
