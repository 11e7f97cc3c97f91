package main

import (
	"encoding/binary"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// enableAutoRain drops random impacts until the profile window closes.
func (g *Game) enableAutoRain(profile *cpuProfile) {
	g.autoRain = true
	g.profile = profile
	if g.autoRainRand == nil {
		g.autoRainRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g.autoRainFrame = 0
}

// rainStep drops an impact every rainInterval frames and holds it for
// rainHold frames.
func (g *Game) rainStep() {
	g.autoRainFrame++
	switch g.autoRainFrame % rainInterval {
	case 0:
		half := g.sim.Config().Domain.Size / 2
		x := (g.autoRainRand.Float64()*2 - 1) * half
		z := (g.autoRainRand.Float64()*2 - 1) * half
		if err := g.sim.Impact(x, z); err != nil {
			g.warn("rain impact: %v", err)
		}
	case rainHold:
		if err := g.sim.ClearImpulse(); err != nil {
			g.warn("rain clear: %v", err)
		}
	}
}

// finishAutoRain stops the profile once the scripted rain is over.
func (g *Game) finishAutoRain() {
	g.autoRain = false
	if g.profile == nil {
		return
	}
	if err := g.profile.Stop(); err != nil {
		log.Printf("PGO capture failed: %v", err)
		return
	}
	log.Printf("%s written after %s of rain", g.profile.path, pgoRecordDuration)
}

// handleDebugControls processes hotkeys: R re-seeds the surface, H dumps a
// half-float snapshot and +/- adjust viscosity while the overlay is shown.
func (g *Game) handleDebugControls() {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.seed++
		if err := g.sim.Reset(g.seed); err != nil {
			g.warn("reset: %v", err)
		} else {
			log.Printf("surface re-seeded with %d", g.seed)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		if err := g.dumpHalfSnapshot(halfDumpPath); err != nil {
			log.Printf("writing %s: %v", halfDumpPath, err)
		} else {
			log.Printf("wrote %s", halfDumpPath)
		}
	}
	if !*debugFlag {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustViscosity(-viscosityStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustViscosity(viscosityStep)
	}
}

// adjustViscosity clamps the damping delta within bounds.
func (g *Game) adjustViscosity(delta float32) {
	v := g.sim.Viscosity() + delta
	if v < minViscosity {
		v = minViscosity
	} else if v > maxViscosity {
		v = maxViscosity
	}
	if err := g.sim.SetViscosity(v); err != nil {
		g.warn("viscosity: %v", err)
	}
}

// dumpHalfSnapshot writes the heights as little-endian binary16, row by row.
func (g *Game) dumpHalfSnapshot(path string) error {
	half := g.sim.HalfSnapshot(nil)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, half); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
