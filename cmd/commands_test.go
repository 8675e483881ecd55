package cmd

import (
	"bytes"
	"testing"

	"github.com/jgillich/go-opencl/cl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moratsam/oclbench/bench"
	"github.com/moratsam/oclbench/pu"
	"github.com/moratsam/oclbench/pu/opencl"
	"github.com/moratsam/oclbench/report"
	u "github.com/moratsam/oclbench/util"
)

// Cobra keeps flag values between executions.
func resetFlags(cmds ...*cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range cmds {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(root_cmd, cmd_info, cmd_smoke, cmd_bench, cmd_version)
	var stdout, stderr bytes.Buffer
	root_cmd.SetOut(&stdout)
	root_cmd.SetErr(&stderr)
	root_cmd.SetArgs(args)
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func TestBenchIterArity(t *testing.T) {
	for _, iters := range []string{"1,2", "1,2,3,4"} {
		stdout, stderr, err := execute(t, "bench", "--iters", iters)
		assert.ErrorIs(t, err, bench.ErrIterArity)
		assert.Equal(t, "Only 1 or 3 iteration counts are allowed.\n", stderr)
		assert.Empty(t, stdout, "no device work expected")
	}
}

func TestBenchInvalidCharacter(t *testing.T) {
	stdout, stderr, err := execute(t, "bench", "-i", "1;2")
	require.Error(t, err)
	assert.Equal(t, "ERROR: Invalid character ';' in number list.\n", stderr)
	assert.Empty(t, stdout)
}

func TestBenchIterationsFromEnv(t *testing.T) {
	t.Setenv("OCLBENCH_ITERS", "7,7")
	_, stderr, err := execute(t, "bench")
	assert.ErrorIs(t, err, bench.ErrIterArity)
	assert.Equal(t, "Only 1 or 3 iteration counts are allowed.\n", stderr)
}

func TestBenchRepeat(t *testing.T) {
	_, stderr, err := execute(t, "bench", "--repeat", "0")
	var usage *bench.UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "ERROR: repeat must be at least 1, got 0\n", stderr)
}

func TestInvalidLogLevel(t *testing.T) {
	_, stderr, err := execute(t, "version", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, stderr, "ERROR: log level: ")
}

func TestVersion(t *testing.T) {
	stdout, stderr, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "oclbench version "+version+"\n", stdout)
	assert.Empty(t, stderr)
}

func TestReportErr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	reportErr(&stdout, &stderr, u.WrapErr("enumerate", opencl.ErrNoPlatforms))
	assert.Equal(t, "No OpenCL platforms available\n", stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	reportErr(&stdout, &stderr, u.WrapErr("enqueue kernel", cl.ErrInvalidWorkGroupSize))
	assert.Empty(t, stdout.String())
	want := "ERROR: enqueue kernel: " + cl.ErrInvalidWorkGroupSize.Error() + "(-54)\n"
	assert.Equal(t, want, stderr.String())
}

func TestFormatSimpleAdd(t *testing.T) {
	c := []int32{0, 2, 4, 3, 5, 7, 6, 8, 10, 9}
	want := "\t\tresult: 0+0=0 1+1=2 2+2=4 3+0=3 4+1=5 5+2=7 6+0=6 7+1=8 8+2=10 9+0=9\n"
	assert.Equal(t, want, formatSimpleAdd(pu.SimpleAddA, pu.SimpleAddB, c))
}

func TestVerifyPasses(t *testing.T) {
	cfg := bench.Config{Count: 4, Size: 4, Iters: [3]uint32{0, 0, 0}}

	var buf bytes.Buffer
	require.NoError(t, verifyPasses(&buf, []bench.Pass{{Results: []uint32{0, 1, 2, 3}}}, cfg))
	assert.Equal(t, "Verify: ok\n", buf.String())

	buf.Reset()
	passes := []bench.Pass{
		{Index: 0, Results: []uint32{0, 1, 2, 3}},
		{Index: 1, Results: []uint32{0, 1, 9, 3}},
	}
	require.NoError(t, verifyPasses(&buf, passes, cfg))
	assert.Equal(t, "Verify: pass 1 differs at work item 2: got 0x00000009, want 0x00000002\n", buf.String())
}

func TestBenchTargets(t *testing.T) {
	a, b, c := new(opencl.Device), new(opencl.Device), new(opencl.Device)
	entries := []opencl.PlatformEntry{
		{Info: report.Platform{Name: "Empty"}},
		{Info: report.Platform{Name: "First"}, Devices: []*opencl.Device{a, b}},
		{Info: report.Platform{Name: "Second"}, Devices: []*opencl.Device{c}},
	}

	all := benchTargets(entries, false)
	require.Len(t, all, 3)
	for i, want := range []benchTarget{{"First", a}, {"First", b}, {"Second", c}} {
		assert.Equal(t, want.platform, all[i].platform)
		assert.Same(t, want.device, all[i].device)
	}

	// Default devices come from the first platform that has any.
	first := benchTargets(entries, true)
	require.Len(t, first, 2)
	assert.Same(t, a, first[0].device)
	assert.Same(t, b, first[1].device)
	assert.Equal(t, "First", first[1].platform)

	assert.Empty(t, benchTargets(entries[:1], true))
}
