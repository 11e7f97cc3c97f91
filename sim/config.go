package sim

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"wavepool/field"
	"wavepool/floater"
)

// Backend names accepted by Config.Backend.
const (
	BackendAuto   = "auto"
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// Config describes a simulation instance.
type Config struct {
	// Resolution is the number of cells per side of the height field.
	Resolution int

	// Domain is the world-space square covered by the field.
	Domain field.Domain

	// Seed selects the initial noise surface.
	Seed int64

	Viscosity float32

	// ImpulseRadius and ImpulseStrength are used by Impact.
	ImpulseRadius   float64
	ImpulseStrength float64

	Bodies floater.Params

	// Backend is one of BackendAuto, BackendCPU or BackendOpenCL. Auto
	// tries OpenCL and falls back to the CPU.
	Backend string

	// Workers is the CPU row worker count; 0 uses every core.
	Workers int

	// FixedStep switches Step from one tick per call to a fixed timestep
	// with sub-stepping. Zero keeps the per-call behavior.
	FixedStep   time.Duration
	MaxSubSteps int

	Logger *log.Logger
}

// DefaultConfig returns the stock pool: 256×256 cells over 1024 world units.
func DefaultConfig() Config {
	return Config{
		Resolution:      256,
		Domain:          field.Domain{Size: 1024},
		Seed:            1,
		Viscosity:       0.98,
		ImpulseRadius:   field.DefaultImpulseRadius,
		ImpulseStrength: field.DefaultImpulseStrength,
		Bodies:          floater.DefaultParams(),
		Backend:         BackendCPU,
		MaxSubSteps:     4,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Resolution < 2 {
		errs = append(errs, fmt.Errorf("%w: got %d", field.ErrResolution, c.Resolution))
	}
	if err := c.Domain.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := field.CheckViscosity(c.Viscosity); err != nil {
		errs = append(errs, err)
	}
	if !(c.ImpulseRadius > 0) {
		errs = append(errs, fmt.Errorf("impulse radius must be positive, got %v", c.ImpulseRadius))
	}
	if math.IsNaN(c.ImpulseStrength) || math.IsInf(c.ImpulseStrength, 0) {
		errs = append(errs, fmt.Errorf("impulse strength must be finite, got %v", c.ImpulseStrength))
	}
	errs = append(errs, c.validateBodies()...)
	switch c.Backend {
	case BackendAuto, BackendCPU, BackendOpenCL:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.FixedStep < 0 {
		errs = append(errs, fmt.Errorf("fixed step must not be negative, got %v", c.FixedStep))
	}
	if c.FixedStep > 0 && c.MaxSubSteps < 1 {
		errs = append(errs, fmt.Errorf("max sub-steps must be at least 1 with a fixed step, got %d", c.MaxSubSteps))
	}
	return errors.Join(errs...)
}

// validateBodies rejects integrator tuning that would poison body state or
// push the reflection point outside the domain.
func (c Config) validateBodies() []error {
	var errs []error
	p := c.Bodies
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"push scale", p.PushScale},
		{"damping", p.Damping},
		{"restitution", p.Restitution},
		{"epsilon", p.Epsilon},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			errs = append(errs, fmt.Errorf("body %s must be finite, got %v", v.name, v.value))
		}
	}
	if p.Epsilon < 0 || (c.Domain.Size > 0 && p.Epsilon >= c.Domain.Half()) {
		errs = append(errs, fmt.Errorf("body epsilon must lie in [0, %v), got %v", c.Domain.Half(), p.Epsilon))
	}
	return errs
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
