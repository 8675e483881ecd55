package opencl

import (
	"sync"

	"github.com/jgillich/go-opencl/cl"
	"github.com/moratsam/etherscan/pipeline"

	"github.com/moratsam/oclbench/bench"
	u "github.com/moratsam/oclbench/util"
)

var payloadPool = sync.Pool{New: func() interface{} { return new(passPayload) }}

type passPayload struct {
	index            int           // Index of the pass.
	global_work_size []int         // Total number of work items.
	local_work_size  []int         // Work group size.
	host_iters       []uint32      // host array of iteration counts per class (Is copied to the device).
	host_out         []uint32      // host array of results (device output is copied here).
	cl_buf_iters     *cl.MemObject // device array of iteration counts (kernel reads from here).
	cl_buf_out       *cl.MemObject // device array of results (kernel writes here).
	timing           bench.Timing  // Host and device timings of the kernel launch.
}

// Doesn't really clone, cloning isn't needed.
func (p *passPayload) Clone() pipeline.Payload {
	return payloadPool.Get().(*passPayload)
}

func (p *passPayload) MarkAsProcessed() {
	// Clear up resources before putting the payload struct back in the pool.
	p.global_work_size = p.global_work_size[:0]
	p.local_work_size = p.local_work_size[:0]
	p.host_iters = p.host_iters[:0]
	p.timing = bench.Timing{}
	p.releaseBuffers()
	payloadPool.Put(p)
}

func (p *passPayload) releaseBuffers() {
	if p.cl_buf_iters != nil {
		p.cl_buf_iters.Release()
		p.cl_buf_iters = nil
	}
	if p.cl_buf_out != nil {
		p.cl_buf_out.Release()
		p.cl_buf_out = nil
	}
}

// A failed stage drops the payload, so whatever it holds on the device is
// released here.
func failPass(p *passPayload, msg string, err error) error {
	p.releaseBuffers()
	return u.WrapErr(msg, err)
}
