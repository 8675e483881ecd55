package bench

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandIters(t *testing.T) {
	iters, err := ExpandIters([]uint64{7})
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{7, 7, 7}, iters)

	triple, err := ExpandIters([]uint64{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, iters, triple)

	iters, err = ExpandIters([]uint64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{1, 2, 3}, iters)

	for _, vals := range [][]uint64{nil, {1, 2}, {1, 2, 3, 4}} {
		_, err := ExpandIters(vals)
		var usage *UsageError
		require.True(t, errors.As(err, &usage), "%v", vals)
		assert.Equal(t, "Only 1 or 3 iteration counts are allowed.", usage.Error())
	}
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint32(6), Checksum([]uint32{0, 1, 2, 3}))
	assert.Equal(t, "0x00000006", FormatChecksum(Checksum([]uint32{0, 1, 2, 3})))
	assert.Equal(t, uint32(1), Checksum([]uint32{math.MaxUint32, 2}))
	assert.Equal(t, "0xedb88320", FormatChecksum(0xEDB88320))

	// Zero rounds: sum of 0..count-1.
	results := make([]uint32, 1000)
	for i := range results {
		results[i] = uint32(i)
	}
	assert.Equal(t, uint32(999*1000/2), Checksum(results))
}

func TestTimingDeltas(t *testing.T) {
	tm := Timing{Queued: 1000, Submit: 1500, Start: 4500, End: 1004500}
	assert.InDelta(t, 500e-9, tm.QueueDelay(), 1e-15)
	assert.InDelta(t, 3000e-9, tm.DispatchDelay(), 1e-15)
	assert.InDelta(t, 1e-3, tm.Duration(), 1e-15)
}

func TestWritePass(t *testing.T) {
	p := Pass{
		Results: []uint32{0, 1, 2, 3},
		Timing: Timing{
			Elapsed: 1500 * time.Microsecond,
			Queued:  0,
			Submit:  2000,
			Start:   5000,
			End:     1005000,
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePass(&buf, p))
	want := "Total: 0x00000006\n" +
		"Elapsed:   0.0015 s\n" +
		"Queued:    2e-06 s\n" +
		"Submitted: 3e-06 s\n" +
		"Running:   0.001 s\n"
	assert.Equal(t, want, buf.String())
}

func TestSummarize(t *testing.T) {
	passes := []Pass{
		{Timing: Timing{Elapsed: time.Second, Start: 0, End: 1e9}},
		{Timing: Timing{Elapsed: 3 * time.Second, Start: 0, End: 3e9}},
	}
	s := Summarize(passes)
	assert.Equal(t, 2, s.Passes)
	assert.InDelta(t, 2.0, s.Elapsed.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, s.Elapsed.StdDev, 1e-12)
	assert.InDelta(t, 2.0, s.Running.Mean, 1e-12)
	assert.Zero(t, s.Queued.Mean)

	single := Summarize(passes[:1])
	assert.Equal(t, 1.0, single.Running.Mean)
	assert.Zero(t, single.Running.StdDev)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "Summary over 2 passes:\n")
	assert.Contains(t, buf.String(), "  Running:   mean 2 s, stddev 1.41421 s\n")
}

func TestMismatch(t *testing.T) {
	assert.Equal(t, -1, Mismatch([]uint32{1, 2}, []uint32{1, 2}))
	assert.Equal(t, 1, Mismatch([]uint32{1, 3}, []uint32{1, 2}))
	assert.Equal(t, 2, Mismatch([]uint32{1, 2}, []uint32{1, 2, 3}))
	assert.Equal(t, -1, Mismatch(nil, nil))
}
