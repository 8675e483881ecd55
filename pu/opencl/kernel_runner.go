package opencl

import (
	"context"
	"time"

	"github.com/jgillich/go-opencl/cl"
	"github.com/moratsam/etherscan/pipeline"
	"github.com/sirupsen/logrus"

	"github.com/moratsam/oclbench/bench"
	u "github.com/moratsam/oclbench/util"
)

type kernelRunner struct {
	kernel *cl.Kernel
	queue  *cl.CommandQueue
}

func newKernelRunner(kernel *cl.Kernel, queue *cl.CommandQueue) *kernelRunner {
	return &kernelRunner{kernel, queue}
}

// This step launches crc_iter as a single command and blocks on its completion
// event. The host clock brackets submission through completion.
func (k *kernelRunner) Process(_ context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	p := payload.(*passPayload)

	// Set kernel args.
	if err := k.kernel.SetArg(0, p.cl_buf_iters); err != nil {
		return nil, failPass(p, "set args cl_buf_iters", err)
	}
	if err := k.kernel.SetArg(1, p.cl_buf_out); err != nil {
		return nil, failPass(p, "set args cl_buf_out", err)
	}

	start := time.Now()

	// Enqueue kernel.
	event, err := k.queue.EnqueueNDRangeKernel(k.kernel, nil, p.global_work_size, p.local_work_size, nil)
	if err != nil {
		return nil, failPass(p, "enqueue kernel", err)
	}
	defer event.Release()

	// Block until the kernel is finished.
	if err := cl.WaitForEvents([]*cl.Event{event}); err != nil {
		return nil, failPass(p, "kernel finish", err)
	}
	elapsed := time.Since(start)

	timing, err := eventTiming(event)
	if err != nil {
		p.releaseBuffers()
		return nil, err
	}
	timing.Elapsed = elapsed
	p.timing = timing

	logrus.WithField("pass", p.index).Debugf("kernel ran in %v", elapsed)
	return p, nil
}

func eventTiming(event *cl.Event) (bench.Timing, error) {
	var t bench.Timing
	stamps := []struct {
		name  string
		param cl.ProfilingInfo
		dst   *int64
	}{
		{"queued", cl.ProfilingInfoCommandQueued, &t.Queued},
		{"submit", cl.ProfilingInfoCommandSubmit, &t.Submit},
		{"start", cl.ProfilingInfoCommandStart, &t.Start},
		{"end", cl.ProfilingInfoCommandEnd, &t.End},
	}
	for _, s := range stamps {
		val, err := event.GetEventProfilingInfo(s.param)
		if err != nil {
			return t, u.WrapErr("profiling info "+s.name, err)
		}
		*s.dst = val
	}
	return t, nil
}
