package floater_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavepool/field"
	"wavepool/floater"
)

var domain = field.Domain{Size: 1024}

// tilted is a sampler with a constant surface.
func tilted(h, gu, gv float64) floater.Sampler {
	return floater.SamplerFunc(func(p field.Point) (field.Level, error) {
		if !p.Valid() {
			return field.Level{}, field.ErrOutOfDomain
		}
		return field.Level{Height: h, Gradient: field.Gradient{U: gu, V: gv}}, nil
	})
}

func TestReflectsPastEastEdge(t *testing.T) {
	in := floater.NewIntegrator(domain)
	half := domain.Half()
	b := floater.Body{ID: "crate", Position: mgl64.Vec3{half + 10, 0, 0}, Velocity: mgl64.Vec3{1, 0, 0}}

	got, err := in.Step(b, tilted(3, 0, 0))
	assert.ErrorIs(t, err, field.ErrOutOfDomain)
	assert.InDelta(t, half-0.001, got.Position.X(), 1e-9)
	assert.InDelta(t, -0.3*0.998, got.Velocity.X(), 1e-9)
	assert.Less(t, got.Velocity.X(), 0.0)
	assert.Zero(t, got.Position.Y(), "out of domain samples use the zero level")
}

func TestReflectsPastWestAndNorthEdges(t *testing.T) {
	in := floater.NewIntegrator(domain)
	half := domain.Half()
	b := floater.Body{ID: "a", Position: mgl64.Vec3{-half + 0.5, 0, half - 0.5}, Velocity: mgl64.Vec3{-2, 0, 2}}

	got, err := in.Step(b, tilted(0, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, -half+0.001, got.Position.X(), 1e-9)
	assert.InDelta(t, half-0.001, got.Position.Z(), 1e-9)
	assert.InDelta(t, 2*0.998*0.3, got.Velocity.X(), 1e-9)
	assert.InDelta(t, -2*0.998*0.3, got.Velocity.Z(), 1e-9)
}

func TestBodiesStayInsideDomain(t *testing.T) {
	f, err := field.Initialize(32, domain, 9)
	require.NoError(t, err)
	cpu := field.NewCPU(2)
	in := floater.NewIntegrator(domain)
	bodies := []floater.Body{
		{ID: "fast", Position: mgl64.Vec3{0, 0, 0}, Velocity: mgl64.Vec3{300, 0, -450}},
		{ID: "edge", Position: mgl64.Vec3{511, 0, -511}, Velocity: mgl64.Vec3{5, 0, -5}},
	}
	half := domain.Half()
	for tick := 0; tick < 200; tick++ {
		require.NoError(t, cpu.Step(f, field.NoImpulse, 0.98))
		bodies, err = in.Integrate(bodies, floater.FieldSampler(f))
		require.NoError(t, err)
		for _, b := range bodies {
			assert.LessOrEqual(t, math.Abs(b.Position.X()), half, "%s tick %d", b.ID, tick)
			assert.LessOrEqual(t, math.Abs(b.Position.Z()), half, "%s tick %d", b.ID, tick)
		}
	}
}

func TestHeightFollowsSurface(t *testing.T) {
	in := floater.NewIntegrator(domain)
	b := floater.Body{ID: "duck", Position: mgl64.Vec3{10, 99, -20}}
	got, err := in.Step(b, tilted(4.5, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Position.Y())
	assert.Equal(t, mgl64.Vec3{10, 4.5, -20}, got.Position)
}

func TestVerticalVelocityDoesNotLiftBody(t *testing.T) {
	in := floater.NewIntegrator(domain)
	b := floater.Body{ID: "stone", Position: mgl64.Vec3{5, 40, 5}, Velocity: mgl64.Vec3{0, -9.8, 0}}
	got, err := in.Step(b, tilted(2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Position.Y())
	assert.InDelta(t, -9.8*0.998, got.Velocity.Y(), 1e-12)
}

func TestGradientPushesDownhill(t *testing.T) {
	in := floater.NewIntegrator(domain)
	got, err := in.Step(floater.Body{ID: "duck"}, tilted(0, 2, 1))
	require.NoError(t, err)
	// world push is (U, -V) scaled by 0.1 then damped
	assert.InDelta(t, 0.2*0.998, got.Velocity.X(), 1e-12)
	assert.InDelta(t, -0.1*0.998, got.Velocity.Z(), 1e-12)
	assert.Zero(t, got.Velocity.Y())
	assert.InDelta(t, got.Velocity.X(), got.Position.X(), 1e-12)
}

func TestSuspendedBodyIsUntouched(t *testing.T) {
	in := floater.NewIntegrator(domain)
	b := floater.Body{ID: "held", Position: mgl64.Vec3{1, 2, 3}, Velocity: mgl64.Vec3{4, 5, 6}, Suspended: true}
	called := false
	got, err := in.Step(b, floater.SamplerFunc(func(field.Point) (field.Level, error) {
		called = true
		return field.Level{Height: 7}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.False(t, called)
}

func TestMalformedBodyIsSkipped(t *testing.T) {
	in := floater.NewIntegrator(domain)
	bodies := []floater.Body{
		{ID: "nan", Position: mgl64.Vec3{math.NaN(), 0, 0}},
		{ID: "ok", Velocity: mgl64.Vec3{1, 0, 0}},
		{ID: "inf", Velocity: mgl64.Vec3{0, math.Inf(1), 0}},
	}
	bodies, err := in.Integrate(bodies, tilted(1, 0, 0))
	assert.ErrorIs(t, err, floater.ErrMalformedBody)
	assert.Contains(t, err.Error(), `"nan"`)
	assert.Contains(t, err.Error(), `"inf"`)
	assert.True(t, math.IsNaN(bodies[0].Position.X()))
	assert.InDelta(t, 0.998, bodies[1].Position.X(), 1e-12)
	assert.Equal(t, 1.0, bodies[1].Position.Y())
}

func TestOrderDoesNotMatter(t *testing.T) {
	f, err := field.Initialize(32, domain, 11)
	require.NoError(t, err)
	in := floater.NewIntegrator(domain)
	a := floater.Body{ID: "a", Position: mgl64.Vec3{-100, 0, 40}}
	b := floater.Body{ID: "b", Position: mgl64.Vec3{250, 0, -300}, Velocity: mgl64.Vec3{1, 0, 1}}

	fwd, err := in.Integrate([]floater.Body{a, b}, floater.FieldSampler(f))
	require.NoError(t, err)
	rev, err := in.Integrate([]floater.Body{b, a}, floater.FieldSampler(f))
	require.NoError(t, err)
	assert.Equal(t, fwd[0], rev[1])
	assert.Equal(t, fwd[1], rev[0])
}

func TestRegistry(t *testing.T) {
	r := floater.NewRegistry()
	require.NoError(t, r.Add(floater.Body{ID: "a"}))
	require.NoError(t, r.Add(floater.Body{ID: "b"}))
	require.NoError(t, r.Add(floater.Body{ID: "c"}))
	assert.ErrorIs(t, r.Add(floater.Body{ID: "b"}), floater.ErrDuplicateBody)
	assert.Equal(t, 3, r.Len())

	require.NoError(t, r.Remove("a"))
	assert.ErrorIs(t, r.Remove("a"), floater.ErrUnknownBody)
	ids := []floater.ID{}
	for _, b := range r.Bodies(nil) {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []floater.ID{"b", "c"}, ids)

	require.NoError(t, r.Update(floater.Body{ID: "c", Position: mgl64.Vec3{5, 0, 5}}))
	got, ok := r.Get("c")
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{5, 0, 5}, got.Position)
	assert.ErrorIs(t, r.Update(floater.Body{ID: "zz"}), floater.ErrUnknownBody)
	_, ok = r.Get("a")
	assert.False(t, ok)

	require.NoError(t, r.SetSuspended("b", true))
	assert.ErrorIs(t, r.SetSuspended("a", true), floater.ErrUnknownBody)

	require.NoError(t, r.Integrate(floater.NewIntegrator(domain), tilted(2, 0, 0)))
	b, _ := r.Get("b")
	c, _ := r.Get("c")
	assert.Zero(t, b.Position.Y(), "suspended body keeps its height")
	assert.Equal(t, 2.0, c.Position.Y())
}
