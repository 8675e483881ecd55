package opencl

import (
	"context"
	"errors"
	"strings"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"github.com/jgillich/go-opencl/cl"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/moratsam/oclbench/bench"
	"github.com/moratsam/oclbench/pu"
	u "github.com/moratsam/oclbench/util"
)

// DeviceRun owns the context, queue and program created for one device.
// Nothing it holds is shared with another device; Release frees it all.
type DeviceRun struct {
	device  *cl.Device
	context *cl.Context
	queue   *cl.CommandQueue // Profiling enabled.
	program *cl.Program
}

var _ pu.PU = (*DeviceRun)(nil)

// NewDeviceRun creates a fresh context for device and builds the kernels
// against it. A failed build returns an error for which BuildLog reports the
// compiler output.
func NewDeviceRun(device *cl.Device) (*DeviceRun, error) {
	log := logrus.WithField("device", device.Name())

	// Create device context & command queue.
	dev_context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, u.WrapErr("create context", err)
	}
	queue, err := dev_context.CreateCommandQueue(device, cl.CommandQueueProfilingEnable)
	if err != nil {
		dev_context.Release()
		return nil, u.WrapErr("create command queue", err)
	}

	program, err := dev_context.CreateProgramWithSource([]string{kernels_source})
	if err != nil {
		queue.Release()
		dev_context.Release()
		return nil, u.WrapErr("create program", err)
	}
	log.Debug("building program")
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		dev_context.Release()
		return nil, u.WrapErr("build program", err)
	}

	return &DeviceRun{
		device:  device,
		context: dev_context,
		queue:   queue,
		program: program,
	}, nil
}

// BuildLog extracts the compiler diagnostics from an error returned by
// NewDeviceRun.
func BuildLog(err error) (string, bool) {
	var build cl.BuildError
	if errors.As(err, &build) {
		// The binding keeps the C terminator of the log.
		return strings.TrimRight(string(build), "\x00"), true
	}
	return "", false
}

func (r *DeviceRun) Release() {
	r.program.Release()
	r.queue.Release()
	r.context.Release()
}

func (r *DeviceRun) createKernel(name string) (*cl.Kernel, error) {
	kernel, err := r.program.CreateKernel(name)
	if err != nil {
		return nil, u.WrapErr("create kernel "+name, err)
	}
	return kernel, nil
}

// SimpleAdd runs simple_add over a and b as a single work group.
func (r *DeviceRun) SimpleAdd(a, b []int32) ([]int32, error) {
	if len(a) != len(b) || len(a) == 0 {
		return nil, xerrors.Errorf("invalid operand lengths %d and %d", len(a), len(b))
	}
	n := len(a)
	output := make([]int32, n)

	// Enqueue input buffers.
	buf_a, err := enqueueArr(r.context, r.queue, a)
	if err != nil {
		return nil, u.WrapErr("enqueue a", err)
	}
	defer buf_a.Release()
	buf_b, err := enqueueArr(r.context, r.queue, b)
	if err != nil {
		return nil, u.WrapErr("enqueue b", err)
	}
	defer buf_b.Release()

	// Create output buffer.
	buf_c, err := r.context.CreateEmptyBuffer(cl.MemReadWrite, int_size*n)
	if err != nil {
		return nil, u.WrapErr("create output buffer", err)
	}
	defer buf_c.Release()

	kernel, err := r.createKernel(kernel_simple_add)
	if err != nil {
		return nil, err
	}
	defer kernel.Release()

	if err := kernel.SetArgs(buf_a, buf_b, buf_c); err != nil {
		return nil, u.WrapErr("set args", err)
	}

	event, err := r.queue.EnqueueNDRangeKernel(kernel, nil, []int{n}, []int{n}, nil)
	if err != nil {
		return nil, u.WrapErr("enqueue kernel", err)
	}
	defer event.Release()

	// Block until the kernel is finished.
	if err := cl.WaitForEvents([]*cl.Event{event}); err != nil {
		return nil, u.WrapErr("waiting to finish kernel", err)
	}

	// Copy data from OpenCL's output buffer to the go output array.
	ptr := unsafe.Pointer(&output[0])
	if _, err := r.queue.EnqueueReadBuffer(buf_c, true, 0, int_size*n, ptr, nil); err != nil {
		return nil, u.WrapErr("reading data from buffer", err)
	}
	return output, nil
}

// CRCIter runs a single crc_iter pass and returns its results.
func (r *DeviceRun) CRCIter(count, size int, iters [3]uint32) ([]uint32, error) {
	passes, err := r.Bench(context.Background(), bench.Config{
		Count:  count,
		Size:   size,
		Iters:  iters,
		Repeat: 1,
	})
	if err != nil {
		return nil, err
	}
	return passes[0].Results, nil
}

// Bench runs cfg.Repeat crc_iter passes, one at a time, and returns them in
// order.
func (r *DeviceRun) Bench(ctx context.Context, cfg bench.Config) ([]bench.Pass, error) {
	if cfg.Count <= 0 || cfg.Size <= 0 {
		return nil, xerrors.Errorf("invalid work size: count %d, size %d", cfg.Count, cfg.Size)
	}
	if cfg.Repeat <= 0 {
		cfg.Repeat = 1
	}

	kernel, err := r.createKernel(kernel_crc_iter)
	if err != nil {
		return nil, err
	}
	defer kernel.Release()

	pip := assemblePipeline(pipelineConfig{
		dev_context: r.context,
		kernel:      kernel,
		queue:       r.queue,
	})

	source := newPassSource(cfg)
	sink := &passSink{tokens: source.tokens}
	if err := pip.Process(ctx, source, sink); err != nil {
		// A pass stops at the first failing stage.
		var merr *multierror.Error
		if errors.As(err, &merr) && len(merr.Errors) == 1 {
			err = merr.Errors[0]
		}
		return nil, u.WrapErr("run passes", err)
	}
	if len(sink.passes) != cfg.Repeat {
		return nil, xerrors.Errorf("ran %d of %d passes", len(sink.passes), cfg.Repeat)
	}
	return sink.passes, nil
}

func enqueueArr[T int32 | uint32](dev_context *cl.Context, queue *cl.CommandQueue, arr []T) (*cl.MemObject, error) {
	elem_size := int(unsafe.Sizeof(arr[0]))
	ptr := unsafe.Pointer(&arr[0])
	buffer, err := dev_context.CreateEmptyBuffer(cl.MemReadOnly, elem_size*len(arr))
	if err != nil {
		return nil, u.WrapErr("create buffer", err)
	}
	_, err = queue.EnqueueWriteBuffer(buffer, true, 0, elem_size*len(arr), ptr, nil)
	if err != nil {
		buffer.Release()
		return nil, u.WrapErr("enqueue buffer", err)
	}

	return buffer, nil
}
