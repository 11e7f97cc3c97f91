package field

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrViscosity is returned for a damping coefficient outside (0, 1].
var ErrViscosity = errors.New("viscosity must lie in (0, 1]")

// InitializationError reports a compute backend that could not be brought
// up. Callers are expected to degrade to a static surface.
type InitializationError struct {
	Backend string
	Err     error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Backend advances a Field and answers level queries against the state of
// the most recently completed step.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// Step runs one propagation step with an optional impulse.
	Step(f *Field, src Source, viscosity float32) error
	// Sample blocks until the level at p is available.
	Sample(f *Field, p Point) (Level, error)
	// Close releases backend resources.
	Close()
}

// CheckViscosity validates a damping coefficient.
func CheckViscosity(v float32) error {
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("%w: got %v", ErrViscosity, v)
	}
	return nil
}

// rowsPerBand keeps each worker's rows contiguous enough to stay cache friendly.
const rowsPerBand = 16

// CPU is the host propagation backend. Rows are spread across worker
// goroutines and joined before the buffers rotate.
type CPU struct {
	workers int
	res     int
	masks   []workerMask
}

// NewCPU creates a CPU backend. workers < 1 selects runtime.NumCPU().
func NewCPU(workers int) *CPU {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &CPU{workers: workers}
}

// Name implements Backend.
func (c *CPU) Name() string { return fmt.Sprintf("cpu (%d workers)", c.workers) }

// Step implements Backend.
func (c *CPU) Step(f *Field, src Source, viscosity float32) error {
	if err := CheckViscosity(viscosity); err != nil {
		return err
	}
	if c.res != f.res || c.masks == nil {
		c.masks = assignRowMasks(c.workers, f.res, rowsPerBand)
		c.res = f.res
	}
	imp, ok := src.Get()
	var stamp impulseStamp
	if ok {
		stamp = newImpulseStamp(imp, f.res, f.domain)
		ok = !stamp.fp.empty()
	}

	var g errgroup.Group
	for i := range c.masks {
		mask := &c.masks[i]
		if len(mask.rows) == 0 {
			continue
		}
		g.Go(func() error {
			processMask(f, mask, viscosity, &stamp, ok)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.swap()
	return nil
}

// Sample implements Backend by reading the host buffers directly.
func (c *CPU) Sample(f *Field, p Point) (Level, error) {
	return Sample(f, p)
}

// Close implements Backend.
func (c *CPU) Close() {}
