package main

import (
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"wavepool/floater"
)

// scatterFloaters places up to n floaters at random, keeping them clear of
// the goal, the edges and each other.
func (g *Game) scatterFloaters(n int) {
	half := g.sim.Config().Domain.Size/2 - floaterEdgeMargin
	if half <= 0 {
		return
	}
	var placed []mgl64.Vec3
	for attempts := 0; len(placed) < n && attempts < n*50; attempts++ {
		x := (g.sceneRand.Float64()*2 - 1) * half
		z := (g.sceneRand.Float64()*2 - 1) * half
		if math.Hypot(x-goalX, z-goalZ) < goalRadius+floaterExclusionRadius {
			continue
		}
		if tooClose(placed, x, z) {
			continue
		}
		pos := mgl64.Vec3{x, 0, z}
		id := floater.ID(fmt.Sprintf("floater-%02d", len(placed)))
		if err := g.sim.AddBody(floater.Body{ID: id, Position: pos}); err != nil {
			log.Printf("adding %s: %v", id, err)
			continue
		}
		placed = append(placed, pos)
	}
	if len(placed) < n {
		log.Printf("placed %d of %d floaters", len(placed), n)
	}
}

// tooClose reports whether (x, z) falls inside the exclusion radius of an
// already placed floater.
func tooClose(placed []mgl64.Vec3, x, z float64) bool {
	for _, p := range placed {
		if math.Hypot(p.X()-x, p.Z()-z) < floaterExclusionRadius {
			return true
		}
	}
	return false
}
