package field

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Fractal noise parameters for the resting surface.
const (
	noiseOctaves    = 15
	noiseSpan       = 128.0
	noiseAmplitude  = 10.0
	noiseFrequency  = 0.025
	noiseGain       = 0.53
	noiseGainStep   = 0.025
	noiseLacunarity = 1.25
)

// Noise2D is a coherent 2D noise source such as opensimplex.Noise.
type Noise2D interface {
	Eval2(x, y float64) float64
}

// Initialize builds a field seeded with fractal simplex noise.
func Initialize(resolution int, domain Domain, seed int64) (*Field, error) {
	f, err := New(resolution, domain)
	if err != nil {
		return nil, err
	}
	Seed(f, opensimplex.New(seed))
	return f, nil
}

// Seed overwrites every cell with the fractal sum of noise and leaves the
// field at rest relative to itself.
func Seed(f *Field, noise Noise2D) {
	res := f.res
	scale := noiseSpan / float64(res)
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			h := float32(FractalHeight(noise, float64(i)*scale, float64(j)*scale))
			idx := j*res + i
			f.curr[idx] = h
			f.prev[idx] = h
			f.next[idx] = 0
		}
	}
	f.steps = 0
	f.dirty = true
}

// FractalHeight sums the octaves at noise-space coordinate (x, y). An octave
// that evaluates to a non-finite value contributes nothing.
func FractalHeight(noise Noise2D, x, y float64) float64 {
	multR := noiseAmplitude
	mult := noiseFrequency
	r := 0.0
	for octave := 0; octave < noiseOctaves; octave++ {
		v := multR * noise.Eval2(x*mult, y*mult)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			r += v
		}
		multR *= noiseGain + noiseGainStep*float64(octave)
		mult *= noiseLacunarity
	}
	return r
}
