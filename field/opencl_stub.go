//go:build !opencl

package field

import "errors"

// OpenCL is unavailable in builds without the opencl tag.
type OpenCL struct{}

// NewOpenCL always fails with an *InitializationError.
func NewOpenCL(res int) (*OpenCL, error) {
	return nil, &InitializationError{
		Backend: "opencl",
		Err:     errors.New("OpenCL support is not enabled; rebuild with -tags opencl"),
	}
}

func (s *OpenCL) Name() string { return "opencl (disabled)" }

func (s *OpenCL) Step(*Field, Source, float32) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *OpenCL) Sample(*Field, Point) (Level, error) {
	return Level{}, errors.New("OpenCL solver unavailable")
}

func (s *OpenCL) Close() {}
