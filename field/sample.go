package field

import (
	"fmt"
	"math"
)

// Gradient is the horizontal height difference around a sample point in
// domain axes: U = west - east, V = south - north, scaled by resolution over
// domain size.
type Gradient struct {
	U, V float64
}

// World converts the gradient into world (x, z). The v axis runs against
// world z, so the result points downhill on both axes.
func (g Gradient) World() (x, z float64) {
	return g.U, -g.V
}

// Level is the result of a level query.
type Level struct {
	Height   float64
	Gradient Gradient
}

// Sample evaluates the field at p. Invalid points return the zero Level
// together with ErrOutOfDomain.
func Sample(f *Field, p Point) (Level, error) {
	if !p.Valid() {
		return Level{}, fmt.Errorf("%w: (%v, %v)", ErrOutOfDomain, p.U, p.V)
	}
	cell := 1 / float64(f.res)
	west := f.bilinear(p.U-cell, p.V)
	east := f.bilinear(p.U+cell, p.V)
	south := f.bilinear(p.U, p.V-cell)
	north := f.bilinear(p.U, p.V+cell)
	scale := float64(f.res) / f.domain.Size
	return Level{
		Height: f.bilinear(p.U, p.V),
		Gradient: Gradient{
			U: (west - east) * scale,
			V: (south - north) * scale,
		},
	}, nil
}

// bilinear interpolates the current heights between cell centers, clamping
// at the grid edge.
func (f *Field) bilinear(u, v float64) float64 {
	tx := u*float64(f.res) - 0.5
	ty := v*float64(f.res) - 0.5
	x0 := math.Floor(tx)
	y0 := math.Floor(ty)
	fx := tx - x0
	fy := ty - y0
	ix, iy := int(x0), int(y0)
	h00 := float64(f.Height(ix, iy))
	h10 := float64(f.Height(ix+1, iy))
	h01 := float64(f.Height(ix, iy+1))
	h11 := float64(f.Height(ix+1, iy+1))
	bottom := h00 + (h10-h00)*fx
	top := h01 + (h11-h01)*fx
	return bottom + (top-bottom)*fy
}
