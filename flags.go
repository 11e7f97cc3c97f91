package main

import (
	"flag"

	"wavepool/sim"
)

// Command-line flags. Each simulation flag maps onto one sim.Config field;
// the rest toggle viewer behavior.
var (
	resolutionFlag = flag.Int("resolution", 256, "height field cells per side")
	domainFlag     = flag.Float64("domain", 1024, "world size of the water surface")
	seedFlag       = flag.Int64("seed", 1, "seed for the initial noise surface")

	// viscosityFlag sets the damping applied every step (0-1].
	viscosityFlag = flag.Float64("viscosity", 0.98, "wave damping per step (0-1]")

	impulseRadiusFlag   = flag.Float64("impulse-radius", 20, "world radius of a click impact")
	impulseStrengthFlag = flag.Float64("impulse-strength", 0.28, "height added at the center of an impact")

	// backendFlag picks the propagation backend.
	backendFlag = flag.String("backend", sim.BackendAuto, "propagation backend: auto, cpu or opencl")
	workersFlag = flag.Int("workers", 0, "CPU row workers (0 = all cores)")

	// fixedStepFlag decouples the simulation rate from the frame rate.
	fixedStepFlag   = flag.Duration("fixed-step", 0, "fixed simulation timestep, 0 advances once per frame")
	maxSubStepsFlag = flag.Int("max-substeps", 4, "maximum ticks per frame with -fixed-step")

	floatersFlag = flag.Int("floaters", floaterCount, "number of floating bodies to scatter")

	// recordDefaultPGO triggers scripted rain to produce default.pgo.
	recordDefaultPGO = flag.Bool("record-default-pgo", false, "rain randomly for 15s while capturing default.pgo")

	// debugFlag enables the FPS and simulation overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation overlay")
)

// configFromFlags folds the parsed flags into a simulation config.
func configFromFlags() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Resolution = *resolutionFlag
	cfg.Domain.Size = *domainFlag
	cfg.Seed = *seedFlag
	cfg.Viscosity = float32(*viscosityFlag)
	cfg.ImpulseRadius = *impulseRadiusFlag
	cfg.ImpulseStrength = *impulseStrengthFlag
	cfg.Backend = *backendFlag
	cfg.Workers = *workersFlag
	cfg.FixedStep = *fixedStepFlag
	cfg.MaxSubSteps = *maxSubStepsFlag
	return cfg
}
