package field

import (
	"errors"
	"fmt"
)

// ErrResolution is returned when a field is requested with fewer than two
// cells per side.
var ErrResolution = errors.New("field resolution must be at least 2")

// HeightCell is the per-cell state exposed to collaborators.
type HeightCell struct {
	Current  float32
	Previous float32
}

// Field stores the height buffers advanced by the propagation kernel. The
// kernel writes into next and then rotates, so readers only ever observe a
// fully completed step.
type Field struct {
	res    int
	domain Domain
	curr   []float32
	prev   []float32
	next   []float32
	steps  uint64
	dirty  bool
}

// New allocates a flat field with resolution×resolution cells.
func New(resolution int, domain Domain) (*Field, error) {
	if resolution < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	size := resolution * resolution
	return &Field{
		res:    resolution,
		domain: domain,
		curr:   make([]float32, size),
		prev:   make([]float32, size),
		next:   make([]float32, size),
		dirty:  true,
	}, nil
}

// Resolution returns the number of cells per side.
func (f *Field) Resolution() int { return f.res }

// Domain returns the world-space square the field covers.
func (f *Field) Domain() Domain { return f.domain }

// Steps reports how many propagation steps have completed.
func (f *Field) Steps() uint64 { return f.steps }

// Cell returns the state of cell (x, y), clamping coordinates to the grid.
func (f *Field) Cell(x, y int) HeightCell {
	idx := f.index(x, y)
	return HeightCell{Current: f.curr[idx], Previous: f.prev[idx]}
}

// Height returns the current height at (x, y) with clamp-to-edge semantics.
func (f *Field) Height(x, y int) float32 {
	return f.curr[f.index(x, y)]
}

// Set writes both time levels of a cell.
func (f *Field) Set(x, y int, current, previous float32) {
	idx := f.index(x, y)
	f.curr[idx] = current
	f.prev[idx] = previous
	f.dirty = true
}

// Reset flattens the field to rest.
func (f *Field) Reset() {
	for i := range f.curr {
		f.curr[i] = 0
		f.prev[i] = 0
		f.next[i] = 0
	}
	f.steps = 0
	f.dirty = true
}

// Snapshot copies the current heights into dst, growing it when needed.
func (f *Field) Snapshot(dst []float32) []float32 {
	if cap(dst) < len(f.curr) {
		dst = make([]float32, len(f.curr))
	}
	dst = dst[:len(f.curr)]
	copy(dst, f.curr)
	return dst
}

// index maps (x, y) to a slice offset, clamping to the grid edge.
func (f *Field) index(x, y int) int {
	x = clampCoord(x, 0, f.res-1)
	y = clampCoord(y, 0, f.res-1)
	return y*f.res + x
}

// swap rotates the buffers so that next becomes current and current becomes
// previous.
func (f *Field) swap() {
	f.prev, f.curr, f.next = f.curr, f.next, f.prev
	f.steps++
}

// wasModified reports whether host-side writes happened since the last
// upload to a device backend.
func (f *Field) wasModified() bool { return f.dirty }

func (f *Field) clearModified() { f.dirty = false }

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
