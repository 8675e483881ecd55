package opencl

import (
	"context"

	"github.com/jgillich/go-opencl/cl"
	"github.com/moratsam/etherscan/pipeline"

	"github.com/moratsam/oclbench/bench"
)

type pipelineConfig struct {
	dev_context *cl.Context
	kernel      *cl.Kernel
	queue       *cl.CommandQueue
}

// All stages share the one in-order queue of the device run.
func assemblePipeline(cfg pipelineConfig) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.DynamicWorkerPool(newWriter(cfg.dev_context, cfg.queue), 1),
		pipeline.FIFO(newKernelRunner(cfg.kernel, cfg.queue)),
		pipeline.DynamicWorkerPool(newReader(cfg.queue), 1),
	)
}

// Source of the benchmark pipeline.
type passSource struct {
	cfg    bench.Config
	next   int
	tokens chan struct{} // Holds a token while no pass is in flight.
}

func newPassSource(cfg bench.Config) *passSource {
	s := &passSource{cfg: cfg, tokens: make(chan struct{}, 1)}
	s.tokens <- struct{}{}
	return s
}

func (s *passSource) Error() error { return nil }

// Next blocks until the previous pass has been consumed, so that transfer,
// launch and readback of different passes never overlap.
func (s *passSource) Next(ctx context.Context) bool {
	if s.next >= s.cfg.Repeat {
		return false
	}
	select {
	case <-s.tokens:
	case <-ctx.Done():
		return false
	}
	return true
}

// The source loads the work sizes and iteration counts into a payload.
func (s *passSource) Payload() pipeline.Payload {
	p := payloadPool.Get().(*passPayload)
	p.index = s.next
	s.next++
	p.global_work_size = append(p.global_work_size[:0], s.cfg.Count)
	p.local_work_size = append(p.local_work_size[:0], s.cfg.Size)
	p.host_iters = append(p.host_iters[:0], s.cfg.Iters[:]...)
	if cap(p.host_out) < s.cfg.Count {
		p.host_out = make([]uint32, s.cfg.Count)
	}
	p.host_out = p.host_out[:s.cfg.Count]
	return p
}

// Sink of the benchmark pipeline.
type passSink struct {
	tokens chan struct{}
	passes []bench.Pass
}

// The sink makes a copy of the results and hands the token back to the source.
func (s *passSink) Consume(_ context.Context, payload pipeline.Payload) error {
	p := payload.(*passPayload)

	results := make([]uint32, len(p.host_out))
	copy(results, p.host_out)
	s.passes = append(s.passes, bench.Pass{
		Index:   p.index,
		Results: results,
		Timing:  p.timing,
	})
	s.tokens <- struct{}{}
	return nil
}
