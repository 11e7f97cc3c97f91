package field_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavepool/field"
)

// ramp returns a field whose height equals the column (or row) index.
func ramp(t *testing.T, res int, alongV bool) *field.Field {
	f, err := field.New(res, testDomain)
	require.NoError(t, err)
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			h := float32(i)
			if alongV {
				h = float32(j)
			}
			f.Set(i, j, h, h)
		}
	}
	return f
}

func TestSampleAtCellCenter(t *testing.T) {
	f := ramp(t, 16, false)
	lvl, err := field.Sample(f, field.CellCenter(5, 7, 16))
	require.NoError(t, err)
	assert.InDelta(t, 5, lvl.Height, 1e-9)
	assert.InDelta(t, -2*16/1024.0, lvl.Gradient.U, 1e-9)
	assert.InDelta(t, 0, lvl.Gradient.V, 1e-9)

	x, z := lvl.Gradient.World()
	assert.Less(t, x, 0.0, "push runs downhill toward -x")
	assert.InDelta(t, 0, z, 1e-9)
}

func TestSampleGradientAlongV(t *testing.T) {
	f := ramp(t, 16, true)
	lvl, err := field.Sample(f, field.CellCenter(3, 8, 16))
	require.NoError(t, err)
	assert.InDelta(t, 8, lvl.Height, 1e-9)
	assert.InDelta(t, -2*16/1024.0, lvl.Gradient.V, 1e-9)

	// height grows with v, which runs against world z
	_, z := lvl.Gradient.World()
	assert.Greater(t, z, 0.0)
}

func TestSampleInterpolatesBetweenCenters(t *testing.T) {
	f := ramp(t, 8, false)
	a := field.CellCenter(2, 2, 8)
	b := field.CellCenter(3, 2, 8)
	lvl, err := field.Sample(f, field.Point{U: (a.U + b.U) / 2, V: a.V})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, lvl.Height, 1e-9)
}

func TestSampleClampsAtEdges(t *testing.T) {
	f := ramp(t, 8, false)
	lvl, err := field.Sample(f, field.Point{U: 0, V: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, lvl.Height, 1e-9)

	lvl, err = field.Sample(f, field.Point{U: 1, V: 0})
	require.NoError(t, err)
	assert.InDelta(t, 7, lvl.Height, 1e-9)
}

func TestSampleOutOfDomain(t *testing.T) {
	f := ramp(t, 8, false)
	for _, p := range []field.Point{
		{U: 1.5, V: 0.5},
		{U: 0.5, V: -0.01},
		{U: math.NaN(), V: 0.5},
		{U: 0.5, V: math.Inf(1)},
	} {
		lvl, err := field.Sample(f, p)
		assert.ErrorIs(t, err, field.ErrOutOfDomain, "point %v", p)
		assert.Equal(t, field.Level{}, lvl)
	}
}

func TestCPUSampleMatchesField(t *testing.T) {
	f := seeded(t, 32, 3)
	p := field.Point{U: 0.31, V: 0.77}
	want, err := field.Sample(f, p)
	require.NoError(t, err)
	got, err := field.NewCPU(1).Sample(f, p)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDomainRoundTrip(t *testing.T) {
	d := field.Domain{Size: 1024}
	p := d.ToDomain(0, 0)
	assert.Equal(t, field.Point{U: 0.5, V: 0.5}, p)

	p = d.ToDomain(-512, 512)
	assert.InDelta(t, 0, p.U, 1e-12)
	assert.InDelta(t, 0, p.V, 1e-12)

	x, z := d.ToWorld(field.Point{U: 0.25, V: 0.75})
	assert.InDelta(t, -256, x, 1e-9)
	assert.InDelta(t, -256, z, 1e-9)
	assert.Equal(t, field.Point{U: 0.25, V: 0.75}, d.ToDomain(x, z))

	assert.False(t, d.ToDomain(512+10, 0).Valid())
	assert.Error(t, field.Domain{Size: 0}.Validate())
	assert.Error(t, field.Domain{Size: math.Inf(1)}.Validate())
}
