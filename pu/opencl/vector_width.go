package opencl

/*
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#define CL_TARGET_OPENCL_VERSION 120
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/moratsam/oclbench/report"
)

// The binding only exposes native vector widths, the preferred ones are
// queried directly.
func preferredVectorWidths(d *cl.Device) report.VectorWidths {
	id := deviceID(d)
	return report.VectorWidths{
		Char:   deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_CHAR),
		Short:  deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_SHORT),
		Int:    deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_INT),
		Long:   deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_LONG),
		Float:  deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_FLOAT),
		Double: deviceInfoUint(id, C.CL_DEVICE_PREFERRED_VECTOR_WIDTH_DOUBLE),
	}
}

// cl.Device holds a single cl_device_id.
func deviceID(d *cl.Device) C.cl_device_id {
	return *(*C.cl_device_id)(unsafe.Pointer(d))
}

func deviceInfoUint(id C.cl_device_id, param C.cl_device_info) int {
	var val C.cl_uint
	if err := C.clGetDeviceInfo(id, param, C.size_t(unsafe.Sizeof(val)), unsafe.Pointer(&val), nil); err != C.CL_SUCCESS {
		return 0
	}
	return int(val)
}
