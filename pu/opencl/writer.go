package opencl

import (
	"context"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"github.com/moratsam/etherscan/pipeline"
)

type writer struct {
	dev_context *cl.Context
	queue       *cl.CommandQueue
}

func newWriter(dev_context *cl.Context, queue *cl.CommandQueue) *writer {
	return &writer{dev_context, queue}
}

// This step in the processing pipeline allocates the device buffers of a pass
// and copies the iteration counts from host onto the device.
func (w *writer) Process(_ context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	p := payload.(*passPayload)

	// Create result buffer.
	cl_buf_out, err := w.dev_context.CreateEmptyBuffer(cl.MemReadWrite, int_size*len(p.host_out))
	if err != nil {
		return nil, failPass(p, "create cl_buf_out", err)
	}
	p.cl_buf_out = cl_buf_out

	// Create iteration count buffer.
	cl_buf_iters, err := w.dev_context.CreateEmptyBuffer(cl.MemReadWrite, int_size*len(p.host_iters))
	if err != nil {
		return nil, failPass(p, "create cl_buf_iters", err)
	}
	p.cl_buf_iters = cl_buf_iters

	// Write iteration counts to device.
	ptr := unsafe.Pointer(&p.host_iters[0])
	_, err = w.queue.EnqueueWriteBuffer(cl_buf_iters, true, 0, int_size*len(p.host_iters), ptr, nil)
	if err != nil {
		return nil, failPass(p, "enqueue cl_buf_iters", err)
	}

	return p, nil
}
