//go:build opencl

package field

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"
)

// OpenCL runs the propagation kernel on a compute device. The host copy of
// the field is refreshed with a blocking read after every step and level
// queries go through a four-float readback buffer.
type OpenCL struct {
	context     *cl.Context
	queue       *cl.CommandQueue
	program     *cl.Program
	stepKernel  *cl.Kernel
	levelKernel *cl.Kernel
	currBuf     *cl.MemObject
	prevBuf     *cl.MemObject
	nextBuf     *cl.MemObject
	levelBuf    *cl.MemObject
	res         int
	deviceName  string
	level       [4]float32
}

const heightKernelSource = `float bilinear(__global const float* h, const int res, float u, float v)
{
    float tx = u * (float)res - 0.5f;
    float ty = v * (float)res - 0.5f;
    float x0 = floor(tx);
    float y0 = floor(ty);
    float fx = tx - x0;
    float fy = ty - y0;
    int last = res - 1;
    int xa = clamp((int)x0, 0, last);
    int xb = clamp((int)x0 + 1, 0, last);
    int ya = clamp((int)y0, 0, last);
    int yb = clamp((int)y0 + 1, 0, last);
    float bottom = mix(h[ya * res + xa], h[ya * res + xb], fx);
    float top = mix(h[yb * res + xa], h[yb * res + xb], fx);
    return mix(bottom, top, fy);
}

__kernel void height_step(
    const int res,
    const float viscosity,
    const int has_impulse,
    const float imp_u,
    const float imp_v,
    const float radius,
    const float strength,
    const float size,
    __global const float* curr,
    __global const float* prev,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    if (idx >= res * res) {
        return;
    }
    int x = idx % res;
    int y = idx / res;
    int last = res - 1;
    float north = curr[min(y + 1, last) * res + x];
    float south = curr[max(y - 1, 0) * res + x];
    float east = curr[y * res + min(x + 1, last)];
    float west = curr[y * res + max(x - 1, 0)];
    float h = ((north + south + east + west) * 0.5f - prev[idx]) * viscosity;
    if (has_impulse) {
        float du = ((float)x + 0.5f) / (float)res - imp_u;
        float dv = ((float)y + 0.5f) / (float)res - imp_v;
        float phase = length((float2)(du, dv)) * size * M_PI_F / radius;
        if (phase < M_PI_F) {
            h += (cos(phase) + 1.0f) * strength;
        }
    }
    next_buffer[idx] = h;
}

__kernel void read_level(
    const int res,
    const float size,
    const float u,
    const float v,
    __global const float* curr,
    __global float* out)
{
    if (get_global_id(0) != 0) {
        return;
    }
    float cell = 1.0f / (float)res;
    float scale = (float)res / size;
    out[0] = bilinear(curr, res, u, v);
    out[1] = (bilinear(curr, res, u - cell, v) - bilinear(curr, res, u + cell, v)) * scale;
    out[2] = (bilinear(curr, res, u, v - cell) - bilinear(curr, res, u, v + cell)) * scale;
    out[3] = 0.0f;
}`

// NewOpenCL prepares the device buffers for a res×res field. Every failure
// is reported as an *InitializationError.
func NewOpenCL(res int) (*OpenCL, error) {
	s, err := newOpenCL(res)
	if err != nil {
		return nil, &InitializationError{Backend: "opencl", Err: err}
	}
	return s, nil
}

func newOpenCL(res int) (*OpenCL, error) {
	if res < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrResolution, res)
	}
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &OpenCL{res: res, deviceName: device.Name()}
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{heightKernelSource}); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.stepKernel, err = s.program.CreateKernel("height_step"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating step kernel: %w", err)
	}
	if s.levelKernel, err = s.program.CreateKernel("read_level"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating level kernel: %w", err)
	}
	byteSize := res * res * 4
	for _, buf := range []**cl.MemObject{&s.currBuf, &s.prevBuf, &s.nextBuf} {
		if *buf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
			s.Close()
			return nil, fmt.Errorf("allocating height buffer: %w", err)
		}
	}
	if s.levelBuf, err = s.context.CreateEmptyBuffer(cl.MemWriteOnly, len(s.level)*4); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating level buffer: %w", err)
	}
	return s, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// Name implements Backend.
func (s *OpenCL) Name() string { return "opencl (" + s.deviceName + ")" }

// upload pushes host-side edits to the device.
func (s *OpenCL) upload(f *Field) error {
	if !f.wasModified() {
		return nil
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, f.curr, nil); err != nil {
		return fmt.Errorf("writing current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, f.prev, nil); err != nil {
		return fmt.Errorf("writing previous buffer: %w", err)
	}
	f.clearModified()
	return nil
}

// Step implements Backend.
func (s *OpenCL) Step(f *Field, src Source, viscosity float32) error {
	if err := CheckViscosity(viscosity); err != nil {
		return err
	}
	if f.res != s.res {
		return fmt.Errorf("field resolution %d does not match device buffers (%d)", f.res, s.res)
	}
	if err := s.upload(f); err != nil {
		return err
	}
	imp, ok := src.Get()
	hasImpulse := int32(0)
	if ok {
		hasImpulse = 1
	}
	if err := s.stepKernel.SetArgs(
		int32(s.res),
		viscosity,
		hasImpulse,
		float32(imp.Position.U),
		float32(imp.Position.V),
		float32(imp.Radius),
		float32(imp.Strength),
		float32(f.domain.Size),
		s.currBuf,
		s.prevBuf,
		s.nextBuf,
	); err != nil {
		return fmt.Errorf("setting step kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.stepKernel, nil, []int{s.res * s.res}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing step kernel: %w", err)
	}
	s.prevBuf, s.currBuf, s.nextBuf = s.currBuf, s.nextBuf, s.prevBuf
	// The host mirror lags by one rotation: the fresh heights land in the
	// scratch buffer, which swap then promotes.
	if _, err := s.queue.EnqueueReadBufferFloat32(s.currBuf, true, 0, f.next, nil); err != nil {
		return fmt.Errorf("reading current buffer: %w", err)
	}
	f.swap()
	return nil
}

// Sample implements Backend with a blocking readback of the level kernel.
func (s *OpenCL) Sample(f *Field, p Point) (Level, error) {
	if !p.Valid() {
		return Level{}, fmt.Errorf("%w: (%v, %v)", ErrOutOfDomain, p.U, p.V)
	}
	if err := s.upload(f); err != nil {
		return Level{}, err
	}
	if err := s.levelKernel.SetArgs(
		int32(s.res),
		float32(f.domain.Size),
		float32(p.U),
		float32(p.V),
		s.currBuf,
		s.levelBuf,
	); err != nil {
		return Level{}, fmt.Errorf("setting level kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.levelKernel, nil, []int{1}, nil, nil); err != nil {
		return Level{}, fmt.Errorf("enqueueing level kernel: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.levelBuf, true, 0, s.level[:], nil); err != nil {
		return Level{}, fmt.Errorf("reading level buffer: %w", err)
	}
	return Level{
		Height:   float64(s.level[0]),
		Gradient: Gradient{U: float64(s.level[1]), V: float64(s.level[2])},
	}, nil
}

// Close implements Backend.
func (s *OpenCL) Close() {
	for _, buf := range []**cl.MemObject{&s.levelBuf, &s.nextBuf, &s.prevBuf, &s.currBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if s.levelKernel != nil {
		s.levelKernel.Release()
		s.levelKernel = nil
	}
	if s.stepKernel != nil {
		s.stepKernel.Release()
		s.stepKernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
