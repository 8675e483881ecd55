package opencl

import _ "embed"

var (
	//go:embed kernels.cl
	kernels_source string
)

const (
	kernel_simple_add = "simple_add"
	kernel_crc_iter   = "crc_iter"

	int_size = 4 // Size of a kernel int in bytes.
)
