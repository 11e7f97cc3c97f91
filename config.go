package main

import "time"

// Viewer and scene constants. Simulation defaults live in sim.DefaultConfig;
// these only shape the window and the floater scene.
const (
	viewSize               = 768
	floaterCount           = 14
	floaterExclusionRadius = 70.0
	floaterEdgeMargin      = 40.0
	floaterMarker          = 2
	goalX, goalZ           = 360.0, -360.0
	goalRadius             = 56.0
	pickRadius             = 28.0
	dragFrequency          = 9.0
	dragDamping            = 0.8
	viscosityStep          = 0.005
	minViscosity           = 0.5
	maxViscosity           = 1.0
	rainInterval           = 8
	rainHold               = 3
	warnLogInterval        = 2 * time.Second
	pgoRecordDuration      = 15 * time.Second
	halfDumpPath           = "heights.f16"
)

// Light direction used to shade the surface normals.
var lightDir = [3]float64{-0.4, 0.8, 0.45}
