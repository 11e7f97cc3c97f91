package field

import (
	"math"

	"github.com/chewxy/math32"
)

const (
	// DefaultImpulseRadius is the world-space radius of an impact.
	DefaultImpulseRadius = 20.0
	// DefaultImpulseStrength scales the raised-cosine bump.
	DefaultImpulseStrength = 0.28
)

// LegacyInactive is the far-away position older callers used to switch the
// impulse off.
var LegacyInactive = Point{U: 10000, V: 10000}

// Impulse is a localized injection of energy. Radius is measured in world
// units; the contribution is exactly zero at Radius and beyond.
type Impulse struct {
	Position Point
	Radius   float64
	Strength float64
}

// Source is an optional impulse. The zero value carries no impulse.
type Source struct {
	impulse Impulse
	active  bool
}

// NoImpulse is the inactive source.
var NoImpulse = Source{}

// Active wraps imp as an active source.
func Active(imp Impulse) Source {
	return Source{impulse: imp, active: true}
}

// FromLegacy converts the sentinel-position convention into a Source: any
// position outside the unit square means no impulse.
func FromLegacy(pos Point, radius, strength float64) Source {
	if !pos.Valid() {
		return NoImpulse
	}
	return Active(Impulse{Position: pos, Radius: radius, Strength: strength})
}

// Get returns the impulse and whether it contributes anything.
func (s Source) Get() (Impulse, bool) {
	if !s.active {
		return Impulse{}, false
	}
	imp := s.impulse
	if !(imp.Radius > 0) || math.IsInf(imp.Radius, 0) {
		return Impulse{}, false
	}
	if math.IsNaN(imp.Position.U) || math.IsNaN(imp.Position.V) || !finite(imp.Strength) {
		return Impulse{}, false
	}
	return imp, true
}

// Legacy renders the source back into the sentinel convention.
func (s Source) Legacy() Point {
	imp, ok := s.Get()
	if !ok {
		return LegacyInactive
	}
	return imp.Position
}

// footprint is the inclusive cell rectangle touched by an impulse.
type footprint struct {
	x0, x1 int
	y0, y1 int
}

func (fp footprint) empty() bool { return fp.x0 > fp.x1 || fp.y0 > fp.y1 }

func (fp footprint) contains(x, y int) bool {
	return x >= fp.x0 && x <= fp.x1 && y >= fp.y0 && y <= fp.y1
}

// impulseStamp holds the float32 parameters shared by every cell of one step.
type impulseStamp struct {
	u, v     float32
	res      float32
	size     float32
	radius   float32
	strength float32
	fp       footprint
}

// newImpulseStamp precomputes the impulse footprint for a grid of res cells
// over domain. Cells outside the rectangle lie farther than Radius from the
// center and receive no contribution.
func newImpulseStamp(imp Impulse, res int, domain Domain) impulseStamp {
	st := impulseStamp{
		u:        float32(imp.Position.U),
		v:        float32(imp.Position.V),
		res:      float32(res),
		size:     float32(domain.Size),
		radius:   float32(imp.Radius),
		strength: float32(imp.Strength),
	}
	rc := imp.Radius / domain.Size * float64(res)
	cx := imp.Position.U*float64(res) - 0.5
	cy := imp.Position.V*float64(res) - 0.5
	st.fp = footprint{
		x0: clampSpan(math.Ceil(cx-rc), res),
		x1: clampSpan(math.Floor(cx+rc), res),
		y0: clampSpan(math.Ceil(cy-rc), res),
		y1: clampSpan(math.Floor(cy+rc), res),
	}
	if cx+rc < 0 || cx-rc > float64(res-1) || cy+rc < 0 || cy-rc > float64(res-1) {
		st.fp = footprint{x0: 1, x1: 0, y0: 1, y1: 0}
	}
	return st
}

// term evaluates the raised-cosine bump for cell (x, y).
func (st *impulseStamp) term(x, y int) float32 {
	if !st.fp.contains(x, y) {
		return 0
	}
	du := (float32(x)+0.5)/st.res - st.u
	dv := (float32(y)+0.5)/st.res - st.v
	dist := math32.Hypot(du, dv) * st.size
	phase := dist * math32.Pi / st.radius
	if phase >= math32.Pi {
		return 0
	}
	if phase < 0 {
		phase = 0
	}
	return (math32.Cos(phase) + 1) * st.strength
}

// clampSpan converts a rounded float bound into a grid index.
func clampSpan(v float64, res int) int {
	if v < 0 {
		return 0
	}
	if v > float64(res-1) {
		return res - 1
	}
	return int(v)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
