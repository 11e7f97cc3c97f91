package floater

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"wavepool/field"
)

// Params tunes how the surface pushes bodies around.
type Params struct {
	PushScale   float64
	Damping     float64
	Restitution float64
	Epsilon     float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		PushScale:   0.1,
		Damping:     0.998,
		Restitution: -0.3,
		Epsilon:     0.001,
	}
}

// Sampler answers level queries against the current field.
type Sampler interface {
	Sample(p field.Point) (field.Level, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(p field.Point) (field.Level, error)

func (fn SamplerFunc) Sample(p field.Point) (field.Level, error) { return fn(p) }

// FieldSampler samples f directly on the host.
func FieldSampler(f *field.Field) Sampler {
	return SamplerFunc(func(p field.Point) (field.Level, error) {
		return field.Sample(f, p)
	})
}

// Integrator advances bodies by one tick.
type Integrator struct {
	Params Params
	Domain field.Domain
}

// NewIntegrator returns an integrator with the default tuning.
func NewIntegrator(domain field.Domain) *Integrator {
	return &Integrator{Params: DefaultParams(), Domain: domain}
}

// Step advances a single body. Suspended bodies are returned unchanged.
// A sample failure is reported but the body still moves using the zero
// level.
func (in *Integrator) Step(b Body, s Sampler) (Body, error) {
	if b.Suspended {
		return b, nil
	}
	if !b.finite() {
		return b, fmt.Errorf("body %q: %w", b.ID, ErrMalformedBody)
	}
	lvl, sampleErr := s.Sample(in.Domain.ToDomain(b.Position.X(), b.Position.Z()))
	if sampleErr != nil {
		lvl = field.Level{}
		sampleErr = fmt.Errorf("body %q: %w", b.ID, sampleErr)
	}

	gx, gz := lvl.Gradient.World()
	b.Velocity = b.Velocity.Add(mgl64.Vec3{gx, 0, gz}.Mul(in.Params.PushScale))
	b.Velocity = b.Velocity.Mul(in.Params.Damping)
	b.Position = b.Position.Add(b.Velocity)
	// the surface owns y; vertical velocity is carried but never moves the body
	b.Position[1] = lvl.Height

	half := in.Domain.Half()
	for _, axis := range [...]int{0, 2} {
		switch {
		case b.Position[axis] < -half:
			b.Position[axis] = -half + in.Params.Epsilon
			b.Velocity[axis] *= in.Params.Restitution
		case b.Position[axis] > half:
			b.Position[axis] = half - in.Params.Epsilon
			b.Velocity[axis] *= in.Params.Restitution
		}
	}
	return b, sampleErr
}

// Integrate advances every body in place and returns the slice. Bodies do
// not interact, so order does not matter. Per-body failures are joined
// into the returned error.
func (in *Integrator) Integrate(bodies []Body, s Sampler) ([]Body, error) {
	var errs []error
	for i := range bodies {
		next, err := in.Step(bodies[i], s)
		if err != nil {
			errs = append(errs, err)
		}
		bodies[i] = next
	}
	return bodies, errors.Join(errs...)
}
