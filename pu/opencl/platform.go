package opencl

import (
	"errors"
	"strings"

	"github.com/jgillich/go-opencl/cl"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/moratsam/oclbench/report"
	u "github.com/moratsam/oclbench/util"
)

type Device = cl.Device

const (
	DeviceTypeAll     = cl.DeviceTypeAll
	DeviceTypeDefault = cl.DeviceTypeDefault
)

// PlatformEntry pairs a platform and its devices with their snapshots.
type PlatformEntry struct {
	Platform *cl.Platform
	Devices  []*cl.Device
	Info     report.Platform
}

// ParseDeviceType maps a device type name onto the type bitmask used to
// filter GetDevices.
func ParseDeviceType(name string) (cl.DeviceType, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return cl.DeviceTypeAll, nil
	case "default":
		return cl.DeviceTypeDefault, nil
	case "cpu":
		return cl.DeviceTypeCPU, nil
	case "gpu":
		return cl.DeviceTypeGPU, nil
	case "accel", "accelerator":
		return cl.DeviceTypeAccelerator, nil
	default:
		return 0, xerrors.Errorf("unknown device type %q", name)
	}
}

func GetPlatforms() ([]*cl.Platform, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		if isPlatformNotFound(err) {
			return nil, ErrNoPlatforms
		}
		return nil, u.WrapErr("get platforms", err)
	}
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}
	return platforms, nil
}

// Enumerate snapshots every platform and its devices of the given type.
// A platform whose device list cannot be retrieved is kept, with the failure
// recorded in its snapshot.
func Enumerate(device_type cl.DeviceType) ([]PlatformEntry, error) {
	platforms, err := GetPlatforms()
	if err != nil {
		return nil, err
	}

	entries := make([]PlatformEntry, 0, len(platforms))
	for _, p := range platforms {
		entry := PlatformEntry{
			Platform: p,
			Info: report.Platform{
				Name:       p.Name(),
				Vendor:     p.Vendor(),
				Version:    p.Version(),
				Extensions: p.Extensions(),
			},
		}

		devices, err := p.GetDevices(device_type)
		switch {
		case err == nil:
		case device_type != cl.DeviceTypeAll && errors.Is(err, cl.ErrDeviceNotFound):
			// Nothing of the requested type on this platform.
			devices = nil
		default:
			entry.Info.DevicesErr = devicesFailure(entry.Info.Name, err)
			devices = nil
		}

		entry.Devices = devices
		entry.Info.Devices = make([]report.Device, len(devices))
		for i, d := range devices {
			entry.Info.Devices[i] = SnapshotDevice(d)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// The report carries the failure, the log only repeats it at debug level.
func devicesFailure(platform string, err error) string {
	err = u.WrapErr("get devices", err)
	logrus.WithField("platform", platform).Debugf("%v", err)
	return Describe(err)
}

// Snapshots returns the report view of the entries.
func Snapshots(entries []PlatformEntry) []report.Platform {
	out := make([]report.Platform, len(entries))
	for i := range entries {
		out[i] = entries[i].Info
	}
	return out
}

func SnapshotDevice(d *cl.Device) report.Device {
	return report.Device{
		Name:                  d.Name(),
		Type:                  uint64(d.Type()),
		Vendor:                d.Vendor(),
		Version:               d.Version(),
		Extensions:            d.Extensions(),
		DriverVersion:         d.DriverVersion(),
		GlobalMemSize:         d.GlobalMemSize(),
		LocalMemSize:          d.LocalMemSize(),
		ComputeUnits:          d.MaxComputeUnits(),
		MaxWorkItemDimensions: d.MaxWorkItemDimensions(),
		MaxWorkGroupSize:      d.MaxWorkGroupSize(),
		PreferredVectorWidth:  preferredVectorWidths(d),
		ClockRate:             d.MaxClockFrequency(),
		AddressBits:           d.AddressBits(),
		MaxReadImageArgs:      d.MaxReadImageArgs(),
		MaxWriteImageArgs:     d.MaxWriteImageArgs(),
		MaxMemAllocSize:       d.MaxMemAllocSize(),
		LocalMemType:          d.LocalMemType().String(),
	}
}
