package opencl

import (
	"errors"
	"fmt"

	"github.com/jgillich/go-opencl/cl"
)

// ErrNoPlatforms is returned when the ICD loader exposes no platform at all.
var ErrNoPlatforms = errors.New("No OpenCL platforms available")

// Returned by the ICD loader when no platform is installed.
const platformNotFoundKHR = -1001

// Numeric status codes of the binding's sentinel errors.
var errorCodes = map[error]int{
	cl.ErrUnknown:                            0,
	cl.ErrDeviceNotFound:                     -1,
	cl.ErrDeviceNotAvailable:                 -2,
	cl.ErrCompilerNotAvailable:               -3,
	cl.ErrMemObjectAllocationFailure:         -4,
	cl.ErrOutOfResources:                     -5,
	cl.ErrOutOfHostMemory:                    -6,
	cl.ErrProfilingInfoNotAvailable:          -7,
	cl.ErrMemCopyOverlap:                     -8,
	cl.ErrImageFormatMismatch:                -9,
	cl.ErrImageFormatNotSupported:            -10,
	cl.ErrBuildProgramFailure:                -11,
	cl.ErrMapFailure:                         -12,
	cl.ErrMisalignedSubBufferOffset:          -13,
	cl.ErrExecStatusErrorForEventsInWaitList: -14,
	cl.ErrInvalidValue:                       -30,
	cl.ErrInvalidDeviceType:                  -31,
	cl.ErrInvalidPlatform:                    -32,
	cl.ErrInvalidDevice:                      -33,
	cl.ErrInvalidContext:                     -34,
	cl.ErrInvalidQueueProperties:             -35,
	cl.ErrInvalidCommandQueue:                -36,
	cl.ErrInvalidHostPtr:                     -37,
	cl.ErrInvalidMemObject:                   -38,
	cl.ErrInvalidImageFormatDescriptor:       -39,
	cl.ErrInvalidImageSize:                   -40,
	cl.ErrInvalidSampler:                     -41,
	cl.ErrInvalidBinary:                      -42,
	cl.ErrInvalidBuildOptions:                -43,
	cl.ErrInvalidProgram:                     -44,
	cl.ErrInvalidProgramExecutable:           -45,
	cl.ErrInvalidKernelName:                  -46,
	cl.ErrInvalidKernelDefinition:            -47,
	cl.ErrInvalidKernel:                      -48,
	cl.ErrInvalidArgIndex:                    -49,
	cl.ErrInvalidArgValue:                    -50,
	cl.ErrInvalidArgSize:                     -51,
	cl.ErrInvalidKernelArgs:                  -52,
	cl.ErrInvalidWorkDimension:               -53,
	cl.ErrInvalidWorkGroupSize:               -54,
	cl.ErrInvalidWorkItemSize:                -55,
	cl.ErrInvalidGlobalOffset:                -56,
	cl.ErrInvalidEventWaitList:               -57,
	cl.ErrInvalidEvent:                       -58,
	cl.ErrInvalidOperation:                   -59,
	cl.ErrInvalidGlObject:                    -60,
	cl.ErrInvalidBufferSize:                  -61,
	cl.ErrInvalidMipLevel:                    -62,
	cl.ErrInvalidGlobalWorkSize:              -63,
	cl.ErrInvalidProperty:                    -64,
}

// ErrorCode returns the OpenCL status code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var other cl.ErrOther
	if errors.As(err, &other) {
		return int(other), true
	}
	var build cl.BuildError
	if errors.As(err, &build) {
		return errorCodes[cl.ErrBuildProgramFailure], true
	}
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return 0, false
}

// Describe formats err as "<message>(<code>)". Errors without a status code
// are formatted as their message alone.
func Describe(err error) string {
	if code, ok := ErrorCode(err); ok {
		return fmt.Sprintf("%s(%d)", err.Error(), code)
	}
	return err.Error()
}

func isPlatformNotFound(err error) bool {
	var other cl.ErrOther
	return errors.As(err, &other) && int(other) == platformNotFoundKHR
}
