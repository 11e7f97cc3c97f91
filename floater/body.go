package floater

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMalformedBody marks a body whose position or velocity is not finite.
var ErrMalformedBody = errors.New("body state is not finite")

// ID identifies a tracked body.
type ID string

// Body is a floating object riding the surface. Position.Y() is the height
// the integrator last read from the field.
type Body struct {
	ID        ID
	Position  mgl64.Vec3
	Velocity  mgl64.Vec3
	Suspended bool
}

func (b Body) finite() bool {
	for _, v := range [...]float64{
		b.Position[0], b.Position[1], b.Position[2],
		b.Velocity[0], b.Velocity[1], b.Velocity[2],
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
