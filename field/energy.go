package field

// Energy returns the sum of squared current heights.
func Energy(f *Field) float64 {
	var sum float64
	for _, h := range f.curr {
		sum += float64(h) * float64(h)
	}
	return sum
}

// LeapfrogEnergy returns the two-level discrete energy of the damped update
// for the given viscosity. Without impulses it shrinks by exactly that factor
// every step, while Energy alone oscillates as waves trade height for motion.
func LeapfrogEnergy(f *Field, viscosity float32) float64 {
	res := f.res
	last := res - 1
	v := float64(viscosity)
	var sum float64
	for y := 0; y < res; y++ {
		north := clampCoord(y+1, 0, last) * res
		south := clampCoord(y-1, 0, last) * res
		row := y * res
		for x := 0; x < res; x++ {
			h := float64(f.curr[row+x])
			p := float64(f.prev[row+x])
			avg := 0.5 * (float64(f.prev[north+x]) + float64(f.prev[south+x]) +
				float64(f.prev[row+clampCoord(x+1, 0, last)]) + float64(f.prev[row+clampCoord(x-1, 0, last)]))
			sum += h*h + v*p*p - v*h*avg
		}
	}
	return sum
}
