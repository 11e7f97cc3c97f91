package field

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfDomain marks a sample request outside the unit square or with a
// non-finite coordinate.
var ErrOutOfDomain = errors.New("point outside field domain")

// Point is a normalized domain coordinate; both axes span [0, 1].
type Point struct {
	U, V float64
}

// Valid reports whether the point is finite and inside the unit square.
func (p Point) Valid() bool {
	if math.IsNaN(p.U) || math.IsNaN(p.V) || math.IsInf(p.U, 0) || math.IsInf(p.V, 0) {
		return false
	}
	return p.U >= 0 && p.U <= 1 && p.V >= 0 && p.V <= 1
}

// Domain is the world-space square of side Size centered on the origin.
type Domain struct {
	Size float64
}

// Validate rejects empty or non-finite domains.
func (d Domain) Validate() error {
	if !(d.Size > 0) || math.IsInf(d.Size, 0) {
		return fmt.Errorf("invalid domain size %v", d.Size)
	}
	return nil
}

// Half returns the distance from the center to each edge.
func (d Domain) Half() float64 { return d.Size * 0.5 }

// ToDomain maps world (x, z) onto the unit square. The v axis runs against
// world z.
func (d Domain) ToDomain(x, z float64) Point {
	half := d.Half()
	return Point{
		U: 0.5*x/half + 0.5,
		V: 1 - (0.5*z/half + 0.5),
	}
}

// ToWorld is the inverse of ToDomain.
func (d Domain) ToWorld(p Point) (x, z float64) {
	return (p.U - 0.5) * d.Size, (0.5 - p.V) * d.Size
}

// CellCenter returns the domain coordinate of the center of cell (i, j) on a
// grid with res cells per side.
func CellCenter(i, j, res int) Point {
	return Point{
		U: (float64(i) + 0.5) / float64(res),
		V: (float64(j) + 0.5) / float64(res),
	}
}
