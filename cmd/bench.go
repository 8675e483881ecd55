package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/moratsam/oclbench/bench"
	"github.com/moratsam/oclbench/pu/opencl"
	vl "github.com/moratsam/oclbench/pu/vanilla"
	"github.com/moratsam/oclbench/util"
)

var cmd_bench = &cobra.Command{
	Use:   "bench",
	Short: "Run the crc_iter kernel on every device and report checksum and timings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := benchConfig()
		if err != nil {
			return err
		}
		device_type, err := opencl.ParseDeviceType(v.GetString("device-type"))
		if err != nil {
			return err
		}
		entries, err := opencl.Enumerate(device_type)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, target := range benchTargets(entries, device_type == opencl.DeviceTypeDefault) {
			fmt.Fprintf(w, "Platform: %s\nDevice:   %s\n", target.platform, target.device.Name())
			if err := benchDevice(cmd.Context(), w, target.device, cfg); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

type benchTarget struct {
	platform string
	device   *opencl.Device
}

// Lists the devices to benchmark in platform order. A context over the default
// device type holds the devices of one platform only, so first_only stops at
// the first platform that has any.
func benchTargets(entries []opencl.PlatformEntry, first_only bool) []benchTarget {
	var targets []benchTarget
	for _, entry := range entries {
		for _, device := range entry.Devices {
			targets = append(targets, benchTarget{entry.Info.Name, device})
		}
		if first_only && len(targets) > 0 {
			break
		}
	}
	return targets
}

// Reads the bench settings and validates them before any device is touched.
func benchConfig() (bench.Config, error) {
	vals, err := util.ParseUintList(v.GetString("iters"))
	if err != nil {
		return bench.Config{}, err
	}
	iters, err := bench.ExpandIters(vals)
	if err != nil {
		return bench.Config{}, err
	}
	cfg := bench.Config{
		Count:  int(v.GetUint("count")),
		Size:   int(v.GetUint("size")),
		Iters:  iters,
		Repeat: v.GetInt("repeat"),
		Verify: v.GetBool("verify"),
	}
	if cfg.Repeat < 1 {
		return cfg, &bench.UsageError{Msg: fmt.Sprintf("ERROR: repeat must be at least 1, got %d", cfg.Repeat)}
	}
	return cfg, nil
}

func benchDevice(ctx context.Context, w io.Writer, device *opencl.Device, cfg bench.Config) error {
	log := logrus.WithField("device", device.Name())

	run, err := opencl.NewDeviceRun(device)
	if err != nil {
		if build_log, ok := opencl.BuildLog(err); ok {
			_, err = fmt.Fprintf(w, "Failed to compile program: %s\n", build_log)
			return err
		}
		return err
	}
	defer run.Release()

	if ctx == nil {
		ctx = context.Background()
	}
	log.WithField("passes", cfg.Repeat).Info("running crc_iter")
	passes, err := run.Bench(ctx, cfg)
	if err != nil {
		return err
	}
	for _, p := range passes {
		if err := bench.WritePass(w, p); err != nil {
			return err
		}
	}
	if len(passes) > 1 {
		if err := bench.WriteSummary(w, bench.Summarize(passes)); err != nil {
			return err
		}
	}
	if cfg.Verify {
		return verifyPasses(w, passes, cfg)
	}
	return nil
}

func verifyPasses(w io.Writer, passes []bench.Pass, cfg bench.Config) error {
	want, err := vl.NewVanillaPU().CRCIter(cfg.Count, cfg.Size, cfg.Iters)
	if err != nil {
		return xerrors.Errorf("host reference: %w", err)
	}
	for _, p := range passes {
		if ix := bench.Mismatch(p.Results, want); ix >= 0 {
			_, err := fmt.Fprintf(w, "Verify: pass %d differs at work item %d: got %s, want %s\n",
				p.Index, ix, valueAt(p.Results, ix), valueAt(want, ix))
			return err
		}
	}
	_, err = fmt.Fprintln(w, "Verify: ok")
	return err
}

func valueAt(results []uint32, ix int) string {
	if ix >= len(results) {
		return "nothing"
	}
	return bench.FormatChecksum(results[ix])
}
