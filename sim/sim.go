package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ojrac/opensimplex-go"
	"golang.org/x/sync/semaphore"

	"wavepool/field"
	"wavepool/floater"
)

// ErrShutdown is returned by every call made after Shutdown.
var ErrShutdown = errors.New("simulation shut down")

// warnInterval limits how often per-tick body warnings reach the log.
const warnInterval = time.Second

// SampleResult is delivered by SampleAsync.
type SampleResult struct {
	Level field.Level
	Err   error
}

// Simulation owns a height field, its compute backend and the tracked
// bodies. Every call is serialized on a single weighted semaphore so a
// level query never overlaps a step and always sees the last completed one.
type Simulation struct {
	cfg        Config
	log        *log.Logger
	field      *field.Field
	backend    field.Backend
	integrator *floater.Integrator
	bodies     *floater.Registry
	source     field.Source
	viscosity  float32
	clock      Clock

	sem      *semaphore.Weighted
	closed   bool
	lastWarn time.Time
	muted    int
}

// Initialize seeds a field from cfg.Seed and brings up the configured
// backend. A backend that cannot start yields an *field.InitializationError;
// callers can fall back to NewStatic.
func Initialize(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.logger()
	f, err := field.Initialize(cfg.Resolution, cfg.Domain, cfg.Seed)
	if err != nil {
		return nil, err
	}

	var backend field.Backend
	switch cfg.Backend {
	case BackendOpenCL:
		cl, err := field.NewOpenCL(cfg.Resolution)
		if err != nil {
			return nil, err
		}
		backend = cl
	case BackendAuto:
		cl, err := field.NewOpenCL(cfg.Resolution)
		if err != nil {
			logger.Printf("OpenCL unavailable, using CPU solver: %v", err)
			backend = field.NewCPU(cfg.Workers)
		} else {
			backend = cl
		}
	default:
		backend = field.NewCPU(cfg.Workers)
	}
	logger.Printf("height field %dx%d over %.0f units using %s", cfg.Resolution, cfg.Resolution, cfg.Domain.Size, backend.Name())
	return newSimulation(cfg, logger, f, backend), nil
}

// NewStatic returns a simulation over a flat surface that never
// propagates. Bodies still sample and integrate against it.
func NewStatic(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	f, err := field.New(cfg.Resolution, cfg.Domain)
	if err != nil {
		return nil, err
	}
	logger := cfg.logger()
	logger.Printf("height field %dx%d is static", cfg.Resolution, cfg.Resolution)
	return newSimulation(cfg, logger, f, nil), nil
}

func newSimulation(cfg Config, logger *log.Logger, f *field.Field, backend field.Backend) *Simulation {
	return &Simulation{
		cfg:        cfg,
		log:        logger,
		field:      f,
		backend:    backend,
		integrator: &floater.Integrator{Params: cfg.Bodies, Domain: cfg.Domain},
		bodies:     floater.NewRegistry(),
		viscosity:  cfg.Viscosity,
		clock:      Clock{FixedStep: cfg.FixedStep, MaxSubSteps: cfg.MaxSubSteps},
		sem:        semaphore.NewWeighted(1),
	}
}

func (s *Simulation) acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if s.closed {
		s.sem.Release(1)
		return ErrShutdown
	}
	return nil
}

func (s *Simulation) release() { s.sem.Release(1) }

// Static reports whether the surface is frozen.
func (s *Simulation) Static() bool { return s.backend == nil }

// BackendName identifies the compute backend.
func (s *Simulation) BackendName() string {
	if s.backend == nil {
		return "static"
	}
	return s.backend.Name()
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Step advances the simulation for elapsed host time and returns the number
// of ticks run.
func (s *Simulation) Step(elapsed time.Duration) (int, error) {
	if err := s.acquire(context.Background()); err != nil {
		return 0, err
	}
	defer s.release()
	n := s.clock.Advance(elapsed)
	for i := 0; i < n; i++ {
		if err := s.tick(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Tick runs exactly one propagation step followed by one integrator pass.
func (s *Simulation) Tick() error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	return s.tick()
}

func (s *Simulation) tick() error {
	if s.backend != nil {
		if err := s.backend.Step(s.field, s.source, s.viscosity); err != nil {
			return fmt.Errorf("step %d: %w", s.field.Steps()+1, err)
		}
	}
	if err := s.bodies.Integrate(s.integrator, floater.SamplerFunc(s.sample)); err != nil {
		s.warn("integrating bodies: %v", err)
	}
	return nil
}

// warn logs at most once per warnInterval and counts what it swallowed.
func (s *Simulation) warn(format string, args ...any) {
	now := time.Now()
	if now.Sub(s.lastWarn) < warnInterval {
		s.muted++
		return
	}
	if s.muted > 0 {
		s.log.Printf("(%d similar warnings suppressed)", s.muted)
		s.muted = 0
	}
	s.lastWarn = now
	s.log.Printf(format, args...)
}

func (s *Simulation) sample(p field.Point) (field.Level, error) {
	if s.backend == nil {
		return field.Sample(s.field, p)
	}
	return s.backend.Sample(s.field, p)
}

// SetImpulse replaces the impulse applied on every following tick.
func (s *Simulation) SetImpulse(src field.Source) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	s.source = src
	return nil
}

// Impact starts an impulse at world (x, z) with the configured radius and
// strength.
func (s *Simulation) Impact(x, z float64) error {
	p := s.cfg.Domain.ToDomain(x, z)
	if !p.Valid() {
		return fmt.Errorf("impact at (%v, %v): %w", x, z, field.ErrOutOfDomain)
	}
	return s.SetImpulse(field.Active(field.Impulse{
		Position: p,
		Radius:   s.cfg.ImpulseRadius,
		Strength: s.cfg.ImpulseStrength,
	}))
}

// ClearImpulse stops injecting energy.
func (s *Simulation) ClearImpulse() error { return s.SetImpulse(field.NoImpulse) }

// Impulse returns the active source.
func (s *Simulation) Impulse() field.Source {
	if err := s.acquire(context.Background()); err != nil {
		return field.NoImpulse
	}
	defer s.release()
	return s.source
}

// SetViscosity changes the damping applied from the next tick on.
func (s *Simulation) SetViscosity(v float32) error {
	if err := field.CheckViscosity(v); err != nil {
		return err
	}
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	s.viscosity = v
	return nil
}

// Viscosity returns the current damping coefficient.
func (s *Simulation) Viscosity() float32 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return s.viscosity
}

// AddBody starts tracking b.
func (s *Simulation) AddBody(b floater.Body) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	return s.bodies.Add(b)
}

// RemoveBody stops tracking id before the next tick.
func (s *Simulation) RemoveBody(id floater.ID) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	return s.bodies.Remove(id)
}

// UpdateBody overwrites the state of a tracked body.
func (s *Simulation) UpdateBody(b floater.Body) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	return s.bodies.Update(b)
}

// SetSuspended toggles integration for id.
func (s *Simulation) SetSuspended(id floater.ID, suspended bool) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	return s.bodies.SetSuspended(id, suspended)
}

// Body returns the state of id.
func (s *Simulation) Body(id floater.ID) (floater.Body, bool) {
	if err := s.acquire(context.Background()); err != nil {
		return floater.Body{}, false
	}
	defer s.release()
	return s.bodies.Get(id)
}

// Bodies copies every tracked body into dst.
func (s *Simulation) Bodies(dst []floater.Body) []floater.Body {
	if err := s.acquire(context.Background()); err != nil {
		return dst[:0]
	}
	defer s.release()
	return s.bodies.Bodies(dst)
}

// Sample returns the level at world (x, z). It waits for any step in
// progress; ctx bounds that wait.
func (s *Simulation) Sample(ctx context.Context, x, z float64) (field.Level, error) {
	if err := s.acquire(ctx); err != nil {
		return field.Level{}, err
	}
	defer s.release()
	return s.sample(s.cfg.Domain.ToDomain(x, z))
}

// SampleAsync runs Sample in the background. The channel receives exactly
// one result and is then closed.
func (s *Simulation) SampleAsync(ctx context.Context, x, z float64) <-chan SampleResult {
	out := make(chan SampleResult, 1)
	go func() {
		defer close(out)
		lvl, err := s.Sample(ctx, x, z)
		out <- SampleResult{Level: lvl, Err: err}
	}()
	return out
}

// Snapshot copies the current heights, row-major with v growing by row.
func (s *Simulation) Snapshot(dst []float32) []float32 {
	if err := s.acquire(context.Background()); err != nil {
		return dst[:0]
	}
	defer s.release()
	return s.field.Snapshot(dst)
}

// HalfSnapshot is Snapshot packed as binary16.
func (s *Simulation) HalfSnapshot(dst []uint16) []uint16 {
	if err := s.acquire(context.Background()); err != nil {
		return dst[:0]
	}
	defer s.release()
	return s.field.HalfSnapshot(dst)
}

// Resolution returns the number of cells per side.
func (s *Simulation) Resolution() int { return s.cfg.Resolution }

// Steps returns the number of completed propagation steps.
func (s *Simulation) Steps() uint64 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return s.field.Steps()
}

// DroppedTicks reports ticks discarded by the fixed-step clock.
func (s *Simulation) DroppedTicks() uint64 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return s.clock.Dropped()
}

// Energy returns the sum of squared heights.
func (s *Simulation) Energy() float64 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return field.Energy(s.field)
}

// LeapfrogEnergy returns the two-level energy at the current viscosity.
func (s *Simulation) LeapfrogEnergy() float64 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return field.LeapfrogEnergy(s.field, s.viscosity)
}

// Reset re-seeds the surface. A static simulation is flattened instead.
// Bodies and the active impulse are kept.
func (s *Simulation) Reset(seed int64) error {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()
	if s.backend == nil {
		s.field.Reset()
	} else {
		field.Seed(s.field, opensimplex.New(seed))
	}
	s.clock.Reset()
	return nil
}

// Shutdown releases the backend. It waits for a step in progress and is
// safe to call more than once.
func (s *Simulation) Shutdown() {
	if err := s.acquire(context.Background()); err != nil {
		return
	}
	defer s.release()
	if s.backend != nil {
		s.backend.Close()
	}
	s.closed = true
}
