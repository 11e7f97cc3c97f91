package field_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavepool/field"
)

func TestNewRejectsTinyGrid(t *testing.T) {
	_, err := field.New(1, testDomain)
	assert.ErrorIs(t, err, field.ErrResolution)

	_, err = field.New(8, field.Domain{Size: -1})
	assert.Error(t, err)
}

func TestCellAccessClamps(t *testing.T) {
	f, err := field.New(4, testDomain)
	require.NoError(t, err)
	f.Set(0, 0, 1.5, 0.5)
	f.Set(3, 3, -2, -1)

	assert.Equal(t, field.HeightCell{Current: 1.5, Previous: 0.5}, f.Cell(0, 0))
	assert.Equal(t, float32(1.5), f.Height(-3, -1))
	assert.Equal(t, float32(-2), f.Height(9, 4))
	assert.Equal(t, 4, f.Resolution())
	assert.Equal(t, testDomain, f.Domain())
}

func TestSnapshotReusesBuffer(t *testing.T) {
	f := seeded(t, 8, 1)
	buf := make([]float32, 0, 64)
	snap := f.Snapshot(buf)
	require.Len(t, snap, 64)
	assert.Equal(t, f.Height(3, 2), snap[2*8+3])

	snap[0] = 99
	assert.NotEqual(t, float32(99), f.Height(0, 0), "snapshot must not alias the field")

	small := f.Snapshot(make([]float32, 2))
	assert.Len(t, small, 64)
}

func TestResetFlattens(t *testing.T) {
	f := seeded(t, 8, 5)
	require.NoError(t, field.NewCPU(1).Step(f, field.NoImpulse, 0.9))
	f.Reset()
	assert.Equal(t, uint64(0), f.Steps())
	assert.Zero(t, field.Energy(f))
	assert.Zero(t, field.LeapfrogEnergy(f, 0.9))
}

func TestInitializeIsSeeded(t *testing.T) {
	a := seeded(t, 16, 42)
	b := seeded(t, 16, 42)
	c := seeded(t, 16, 43)
	assert.Equal(t, a.Snapshot(nil), b.Snapshot(nil))
	assert.NotEqual(t, a.Snapshot(nil), c.Snapshot(nil))

	cell := a.Cell(5, 9)
	assert.Equal(t, cell.Current, cell.Previous, "seeded surface starts at rest")
	assert.Greater(t, field.Energy(a), 0.0)
}

type constNoise float64

func (n constNoise) Eval2(_, _ float64) float64 { return float64(n) }

type brokenNoise struct{ calls int }

func (n *brokenNoise) Eval2(_, _ float64) float64 {
	n.calls++
	if n.calls%2 == 0 {
		return 0
	}
	return math.NaN()
}

func TestFractalHeight(t *testing.T) {
	// octave weights: 10, then multiplied by 0.53, 0.555, 0.58, ...
	want, weight := 0.0, 10.0
	for o := 0; o < 15; o++ {
		want += weight
		weight *= 0.53 + 0.025*float64(o)
	}
	assert.InDelta(t, want, field.FractalHeight(constNoise(1), 3, 4), 1e-9)
	assert.Zero(t, field.FractalHeight(&brokenNoise{}, 1, 1))
}

func TestSeedFromNoise(t *testing.T) {
	f, err := field.New(4, testDomain)
	require.NoError(t, err)
	field.Seed(f, constNoise(0))
	assert.Zero(t, field.Energy(f))
	field.Seed(f, constNoise(0.5))
	assert.InDelta(t, field.FractalHeight(constNoise(0.5), 0, 0), f.Height(2, 2), 1e-4)
}
