// Package report formats snapshots of OpenCL platforms and devices.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Device type bits as defined by cl_device_type.
const (
	DeviceTypeDefault uint64 = 1 << 0
	DeviceTypeCPU     uint64 = 1 << 1
	DeviceTypeGPU     uint64 = 1 << 2
	DeviceTypeAccel   uint64 = 1 << 3
	DeviceTypeCustom  uint64 = 1 << 4
)

var deviceTypeLabels = []struct {
	bit   uint64
	label string
}{
	{DeviceTypeDefault, "default"},
	{DeviceTypeCPU, "cpu"},
	{DeviceTypeGPU, "gpu"},
	{DeviceTypeAccel, "accel"},
	{DeviceTypeCustom, "custom"},
}

// VectorWidths holds the preferred vector width per scalar type.
type VectorWidths struct {
	Char   int `json:"char"`
	Short  int `json:"short"`
	Int    int `json:"int"`
	Long   int `json:"long"`
	Float  int `json:"float"`
	Double int `json:"double"`
}

// Device is a read-only snapshot of a device's properties, taken at query time.
type Device struct {
	Name                  string       `json:"name"`
	Type                  uint64       `json:"type"`
	Vendor                string       `json:"vendor"`
	Version               string       `json:"version"`
	Extensions            string       `json:"extensions"`
	DriverVersion         string       `json:"driver_version"`
	GlobalMemSize         int64        `json:"global_mem_size"`
	LocalMemSize          int64        `json:"local_mem_size"`
	ComputeUnits          int          `json:"compute_units"`
	MaxWorkItemDimensions int          `json:"max_work_item_dimensions"`
	MaxWorkGroupSize      int          `json:"max_work_group_size"`
	PreferredVectorWidth  VectorWidths `json:"preferred_vector_width"`
	ClockRate             int          `json:"clock_rate_mhz"`
	AddressBits           int          `json:"address_bits"`
	MaxReadImageArgs      int          `json:"max_read_image_args"`
	MaxWriteImageArgs     int          `json:"max_write_image_args"`
	MaxMemAllocSize       int64        `json:"max_mem_alloc_size"`
	LocalMemType          string       `json:"local_mem_type"`
}

// Platform is a snapshot of a platform and the devices it exposes.
// DevicesErr is set when the device list could not be retrieved.
type Platform struct {
	Name       string   `json:"name"`
	Vendor     string   `json:"vendor"`
	Version    string   `json:"version"`
	Extensions string   `json:"extensions"`
	Devices    []Device `json:"devices"`
	DevicesErr string   `json:"devices_error,omitempty"`
}

// DeviceHook is called after each device section is written.
type DeviceHook func(w io.Writer, platform_ix, device_ix int) error

// DeviceTypeLabels decodes a device type bitmask into labels, in the fixed
// order default, cpu, gpu, accel, custom.
func DeviceTypeLabels(mask uint64) []string {
	var labels []string
	for _, l := range deviceTypeLabels {
		if mask&l.bit != 0 {
			labels = append(labels, l.label)
		}
	}
	return labels
}

func FormatDeviceType(mask uint64) string {
	return strings.Join(DeviceTypeLabels(mask), " ")
}

// Write prints every platform followed by its devices. If hook is not nil
// it runs after each device and its error aborts the report.
func Write(w io.Writer, platforms []Platform, hook DeviceHook) error {
	for i := range platforms {
		if err := WritePlatform(w, &platforms[i]); err != nil {
			return err
		}
		if platforms[i].DevicesErr != "" {
			if _, err := fmt.Fprintf(w, "\n\tFailed to get devices: %s\n", platforms[i].DevicesErr); err != nil {
				return err
			}
		}
		for j := range platforms[i].Devices {
			if err := WriteDevice(w, &platforms[i].Devices[j]); err != nil {
				return err
			}
			if hook != nil {
				if err := hook(w, i, j); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func WritePlatform(w io.Writer, p *Platform) error {
	_, err := fmt.Fprintf(w,
		"OpenCL \tPlatform : %s\n"+
			"\tVendor: %s\n"+
			"\tVersion : %s\n"+
			"\tExtensions : %s\n",
		p.Name, p.Vendor, p.Version, p.Extensions)
	return err
}

func WriteDevice(w io.Writer, d *Device) error {
	lines := []struct {
		name  string
		value interface{}
	}{
		{"Type", fmt.Sprintf("%d (%s)", d.Type, FormatDeviceType(d.Type))},
		{"Vendor", d.Vendor},
		{"Version", d.Version},
		{"Extensions", d.Extensions},
		{"Driver", d.DriverVersion},
		{"Global Mem", fmt.Sprintf("%d MBytes", d.GlobalMemSize/(1024*1024))},
		{"Local Mem", fmt.Sprintf("%d KBytes", d.LocalMemSize/1024)},
		{"Compute Units", d.ComputeUnits},
		{"Max work item dimensions", d.MaxWorkItemDimensions},
		{"Max work group size", d.MaxWorkGroupSize},
		{"Preferred vector width char", d.PreferredVectorWidth.Char},
		{"Preferred vector width short", d.PreferredVectorWidth.Short},
		{"Preferred vector width int", d.PreferredVectorWidth.Int},
		{"Preferred vector width long", d.PreferredVectorWidth.Long},
		{"Preferred vector width float", d.PreferredVectorWidth.Float},
		{"Preferred vector width double", d.PreferredVectorWidth.Double},
		{"Clock Rate", fmt.Sprintf("%d MHz", d.ClockRate)},
		{"Address bits", d.AddressBits},
		{"Max read image args", d.MaxReadImageArgs},
		{"Max write image args", d.MaxWriteImageArgs},
		{"Max memory allocation size", fmt.Sprintf("%d MBytes", d.MaxMemAllocSize/(1024*1024))},
		{"Local memory type", d.LocalMemType},
		{"Local memory size", fmt.Sprintf("%d KBytes", d.LocalMemSize/1024)},
	}

	if _, err := fmt.Fprintf(w, "\n\tOpenCL\tDevice : %s\n", d.Name); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "\t\t %s : %v\n", l.name, l.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON emits the snapshot as indented JSON.
func WriteJSON(w io.Writer, platforms []Platform) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(platforms)
}
