package main

import (
	"fmt"
	"math"

	"github.com/crazy3lf/colorconv"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// paletteSize is the number of shades in the water palette.
const paletteSize = 256

type rgb struct{ r, g, b byte }

var waterPalette = buildWaterPalette()

// buildWaterPalette runs from deep blue in shadow to pale cyan in full light.
func buildWaterPalette() [paletteSize]rgb {
	var table [paletteSize]rgb
	for i := range table {
		t := float64(i) / (paletteSize - 1)
		hue := 222 - 32*t
		sat := 0.9 - 0.55*t
		val := 0.25 + 0.75*t
		r, g, b, err := colorconv.HSVToRGB(hue, sat, val)
		if err != nil {
			continue
		}
		table[i] = rgb{r, g, b}
	}
	return table
}

// Draw shades the height field, marks the goal and the floaters, and adds
// the optional overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	res := g.sim.Resolution()
	g.heights = g.sim.Snapshot(g.heights)
	if len(g.heights) == res*res {
		g.shadeSurface(res, g.sim.Config().Domain.Size)
		g.drawGoal(res)
		g.drawBodies(res)
		g.surface.WritePixels(g.pixels)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(viewSize)/float64(res), float64(viewSize)/float64(res))
	screen.DrawImage(g.surface, op)

	if *debugFlag {
		msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nBackend: %s\nTicks/frame: %d (dropped %d)\nSim: %.2f ms\nViscosity: %.3f (+/-)\nEnergy: %.4g",
			ebiten.ActualFPS(), ebiten.ActualTPS(), g.sim.BackendName(), g.lastTicks, g.sim.DroppedTicks(),
			g.lastSimDuration.Seconds()*1000, g.sim.Viscosity(), g.sim.Energy())
		ebitenutil.DebugPrint(screen, msg)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return viewSize, viewSize }

// shadeSurface lights each cell from its neighbor-difference normal. Pixel
// rows run with world z, against the field's v axis.
func (g *Game) shadeSurface(res int, size float64) {
	scale := float64(res) / size
	last := res - 1
	lx, ly, lz := lightDir[0], lightDir[1], lightDir[2]
	ll := math.Sqrt(lx*lx + ly*ly + lz*lz)
	lx, ly, lz = lx/ll, ly/ll, lz/ll
	for j := 0; j < res; j++ {
		row := j * res
		north := clampCoord(j+1, 0, last) * res
		south := clampCoord(j-1, 0, last) * res
		py := last - j
		for i := 0; i < res; i++ {
			west := g.heights[row+clampCoord(i-1, 0, last)]
			east := g.heights[row+clampCoord(i+1, 0, last)]
			nx := float64(west-east) * scale
			nz := -float64(g.heights[south+i]-g.heights[north+i]) * scale
			n := math.Sqrt(nx*nx + 1 + nz*nz)
			light := (nx*lx + ly + nz*lz) / n
			idx := int(math.Max(0, math.Min(1, light)) * (paletteSize - 1))
			c := waterPalette[idx]
			g.setPixel(res, i, py, c)
		}
	}
}

// drawGoal outlines the goal zone.
func (g *Game) drawGoal(res int) {
	size := g.sim.Config().Domain.Size
	cx, cy := worldToCell(goalX, goalZ, size, res)
	r := goalRadius / size * float64(res)
	steps := int(2*math.Pi*r) + 8
	for k := 0; k < steps; k++ {
		a := 2 * math.Pi * float64(k) / float64(steps)
		g.setPixel(res, int(cx+r*math.Cos(a)), int(cy+r*math.Sin(a)), rgb{250, 210, 60})
	}
}

// drawBodies marks every floater with a small square. Suspended ones are
// tinted.
func (g *Game) drawBodies(res int) {
	size := g.sim.Config().Domain.Size
	g.bodies = g.sim.Bodies(g.bodies)
	for _, b := range g.bodies {
		c := rgb{235, 90, 40}
		switch {
		case g.scored[b.ID]:
			c = rgb{250, 210, 60}
		case b.Suspended:
			c = rgb{240, 240, 240}
		}
		cx, cy := worldToCell(b.Position.X(), b.Position.Z(), size, res)
		for dy := -floaterMarker; dy <= floaterMarker; dy++ {
			for dx := -floaterMarker; dx <= floaterMarker; dx++ {
				g.setPixel(res, int(cx)+dx, int(cy)+dy, c)
			}
		}
	}
}

func (g *Game) setPixel(res, x, y int, c rgb) {
	if x < 0 || y < 0 || x >= res || y >= res {
		return
	}
	base := (y*res + x) * 4
	g.pixels[base] = c.r
	g.pixels[base+1] = c.g
	g.pixels[base+2] = c.b
	g.pixels[base+3] = 255
}

// worldToCell maps world (x, z) onto pixel coordinates of the surface image.
func worldToCell(x, z, size float64, res int) (float64, float64) {
	sx, sy := worldToScreen(x, z, size)
	k := float64(res) / viewSize
	return sx * k, sy * k
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
