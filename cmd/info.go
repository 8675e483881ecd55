package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/moratsam/oclbench/pu"
	"github.com/moratsam/oclbench/pu/opencl"
	"github.com/moratsam/oclbench/report"
)

var (
	cmd_info = &cobra.Command{
		Use:   "info",
		Short: "Print every OpenCL platform and its devices.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := opencl.Enumerate(opencl.DeviceTypeAll)
			if err != nil {
				return err
			}
			platforms := opencl.Snapshots(entries)

			switch format := v.GetString("format"); format {
			case "text":
				return report.Write(cmd.OutOrStdout(), platforms, nil)
			case "json":
				return report.WriteJSON(cmd.OutOrStdout(), platforms)
			default:
				return xerrors.Errorf("unknown format %q", format)
			}
		},
	}

	cmd_smoke = &cobra.Command{
		Use:   "smoke",
		Short: "Print every OpenCL platform and its devices and run simple_add on each device.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			device_type, err := opencl.ParseDeviceType(v.GetString("device-type"))
			if err != nil {
				return err
			}
			entries, err := opencl.Enumerate(device_type)
			if err != nil {
				return err
			}

			hook := func(w io.Writer, platform_ix, device_ix int) error {
				return smokeDevice(w, entries[platform_ix].Devices[device_ix])
			}
			return report.Write(cmd.OutOrStdout(), opencl.Snapshots(entries), hook)
		},
	}
)

// Runs simple_add on the fixed operands. A device whose program fails to
// build is reported and skipped.
func smokeDevice(w io.Writer, device *opencl.Device) error {
	run, err := opencl.NewDeviceRun(device)
	if err != nil {
		if build_log, ok := opencl.BuildLog(err); ok {
			_, err = fmt.Fprintf(w, "Failed to compile program: %s\n", build_log)
			return err
		}
		return err
	}
	defer run.Release()

	c, err := run.SimpleAdd(pu.SimpleAddA, pu.SimpleAddB)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, formatSimpleAdd(pu.SimpleAddA, pu.SimpleAddB, c))
	return err
}

func formatSimpleAdd(a, b, c []int32) string {
	var sb strings.Builder
	sb.WriteString("\t\tresult:")
	for i := range c {
		fmt.Fprintf(&sb, " %d+%d=%d", a[i], b[i], c[i])
	}
	sb.WriteString("\n")
	return sb.String()
}
