package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceTypeLabels(t *testing.T) {
	order := []string{"default", "cpu", "gpu", "accel", "custom"}

	assert.Empty(t, DeviceTypeLabels(0))
	assert.Equal(t, "", FormatDeviceType(0))

	// Every combination of the five known bits.
	for mask := uint64(0); mask < 32; mask++ {
		var want []string
		for i, label := range order {
			if mask&(1<<uint(i)) != 0 {
				want = append(want, label)
			}
		}
		assert.Equal(t, want, DeviceTypeLabels(mask), "mask %d", mask)
		assert.Equal(t, strings.Join(want, " "), FormatDeviceType(mask), "mask %d", mask)
	}

	assert.Equal(t, "cpu", FormatDeviceType(DeviceTypeCPU|1<<40))
	assert.Equal(t, "default gpu", FormatDeviceType(DeviceTypeDefault|DeviceTypeGPU))
}

func testDevice() Device {
	return Device{
		Name:                  "Test GPU",
		Type:                  DeviceTypeDefault | DeviceTypeGPU,
		Vendor:                "ACME",
		Version:               "OpenCL 1.2",
		Extensions:            "cl_khr_fp64",
		DriverVersion:         "42.0",
		GlobalMemSize:         2048 * 1024 * 1024,
		LocalMemSize:          48 * 1024,
		ComputeUnits:          16,
		MaxWorkItemDimensions: 3,
		MaxWorkGroupSize:      1024,
		PreferredVectorWidth:  VectorWidths{1, 1, 1, 1, 1, 0},
		ClockRate:             1500,
		AddressBits:           64,
		MaxReadImageArgs:      128,
		MaxWriteImageArgs:     8,
		MaxMemAllocSize:       512 * 1024 * 1024,
		LocalMemType:          "Local",
	}
}

func TestWriteDevice(t *testing.T) {
	d := testDevice()
	var buf bytes.Buffer
	require.NoError(t, WriteDevice(&buf, &d))

	want := "\n\tOpenCL\tDevice : Test GPU\n" +
		"\t\t Type : 5 (default gpu)\n" +
		"\t\t Vendor : ACME\n" +
		"\t\t Version : OpenCL 1.2\n" +
		"\t\t Extensions : cl_khr_fp64\n" +
		"\t\t Driver : 42.0\n" +
		"\t\t Global Mem : 2048 MBytes\n" +
		"\t\t Local Mem : 48 KBytes\n" +
		"\t\t Compute Units : 16\n" +
		"\t\t Max work item dimensions : 3\n" +
		"\t\t Max work group size : 1024\n" +
		"\t\t Preferred vector width char : 1\n" +
		"\t\t Preferred vector width short : 1\n" +
		"\t\t Preferred vector width int : 1\n" +
		"\t\t Preferred vector width long : 1\n" +
		"\t\t Preferred vector width float : 1\n" +
		"\t\t Preferred vector width double : 0\n" +
		"\t\t Clock Rate : 1500 MHz\n" +
		"\t\t Address bits : 64\n" +
		"\t\t Max read image args : 128\n" +
		"\t\t Max write image args : 8\n" +
		"\t\t Max memory allocation size : 512 MBytes\n" +
		"\t\t Local memory type : Local\n" +
		"\t\t Local memory size : 48 KBytes\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteContinuesPastDeviceFailure(t *testing.T) {
	platforms := []Platform{
		{Name: "Broken", Vendor: "V1", Version: "1.0", DevicesErr: "get devices: cl: Device Not Found(-1)"},
		{Name: "Good", Vendor: "V2", Version: "1.2", Devices: []Device{testDevice()}},
	}

	var visited [][2]int
	hook := func(w io.Writer, pi, di int) error {
		visited = append(visited, [2]int{pi, di})
		_, err := io.WriteString(w, "\t\tresult: hook\n")
		return err
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, platforms, hook))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "OpenCL \tPlatform : Broken\n\tVendor: V1\n"))
	assert.Contains(t, out, "\n\tFailed to get devices: get devices: cl: Device Not Found(-1)\n")
	assert.Contains(t, out, "OpenCL \tPlatform : Good\n")
	assert.Contains(t, out, "\t\t Local memory size : 48 KBytes\n\t\tresult: hook\n")
	assert.Equal(t, [][2]int{{1, 0}}, visited)
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestWriteStopsOnHookError(t *testing.T) {
	platforms := []Platform{{Name: "P", Devices: []Device{testDevice(), testDevice()}}}
	boom := errors.New("boom")
	calls := 0
	err := Write(io.Discard, platforms, func(io.Writer, int, int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWriteJSON(t *testing.T) {
	platforms := []Platform{{Name: "P", Devices: []Device{testDevice()}}}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, platforms))

	var got []Platform
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, platforms, got)
	assert.NotContains(t, buf.String(), "devices_error")
}
