package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/moratsam/oclbench/bench"
	"github.com/moratsam/oclbench/pu/opencl"
	u "github.com/moratsam/oclbench/util"
)

const env_prefix = "OCLBENCH"

var (
	cfg_file string
	v        = viper.New()

	root_cmd = &cobra.Command{
		Use:           "oclbench",
		Short:         "Report OpenCL platforms and devices and benchmark a CRC kernel on them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd)
		},
	}
)

func init() {
	root_cmd.AddCommand(cmd_info, cmd_smoke, cmd_bench, cmd_version)

	v.SetEnvPrefix(env_prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Cmd Root
	root_cmd.PersistentFlags().StringVar(&cfg_file, "config", "", "Config file (yaml, toml or json)")
	root_cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	// Cmd Info
	cmd_info.Flags().String("format", "text", "Output format ({\"text\",\"json\"})")

	// Cmd Smoke
	deviceTypeFlag(cmd_smoke.Flags(), "all")

	// Cmd Bench
	cmd_bench.Flags().UintP("count", "c", 1, "The number of work items")
	cmd_bench.Flags().StringP("iters", "i", bench.DefaultIters, "The number of iterations")
	cmd_bench.Flags().UintP("size", "s", 1, "The work group size")
	cmd_bench.Flags().Int("repeat", 1, "Number of passes per device")
	cmd_bench.Flags().Bool("verify", false, "Check the results against the host reference")
	deviceTypeFlag(cmd_bench.Flags(), "default")
}

func deviceTypeFlag(fs *pflag.FlagSet, def string) {
	fs.String("device-type", def, "Devices to use ({\"all\",\"default\",\"cpu\",\"gpu\",\"accel\"})")
}

// Flags, environment and config file all resolve through v. Only the flags of
// the command being run are bound.
func setup(cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return u.WrapErr("bind flags", err)
	}
	if cfg_file != "" {
		v.SetConfigFile(cfg_file)
		if err := v.ReadInConfig(); err != nil {
			return u.WrapErr("read config", err)
		}
	}

	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return u.WrapErr("log level", err)
	}
	logrus.SetOutput(cmd.ErrOrStderr())
	logrus.SetLevel(level)
	return nil
}

func Execute() error {
	err := root_cmd.Execute()
	if err != nil {
		reportErr(root_cmd.OutOrStdout(), root_cmd.ErrOrStderr(), err)
	}
	return err
}

func reportErr(stdout, stderr io.Writer, err error) {
	var usage *bench.UsageError
	switch {
	case errors.Is(err, opencl.ErrNoPlatforms):
		fmt.Fprintln(stdout, opencl.ErrNoPlatforms.Error())
	case errors.As(err, &usage):
		fmt.Fprintln(stderr, usage.Msg)
	default:
		fmt.Fprintf(stderr, "ERROR: %s\n", opencl.Describe(err))
	}
}
