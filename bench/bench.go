// Package bench holds the crc_iter benchmark configuration, its checksum and
// the timing breakdown read from completion events.
package bench

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

const nsPerSecond = 1e9

// DefaultIters is the default --iters value.
const DefaultIters = "1024,1024,1024"

// UsageError reports invalid user input, detected before any device work.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

var ErrIterArity = &UsageError{Msg: "Only 1 or 3 iteration counts are allowed."}

type Config struct {
	Count  int       // Total number of work items.
	Size   int       // Work group size.
	Iters  [3]uint32 // Rounds per iteration class.
	Repeat int       // Number of passes per device.
	Verify bool      // Check results against the host reference.
}

// ExpandIters turns 1 or 3 parsed counts into the per-class array.
func ExpandIters(vals []uint64) ([3]uint32, error) {
	var iters [3]uint32
	switch len(vals) {
	case 1:
		iters[0] = uint32(vals[0])
		iters[1] = uint32(vals[0])
		iters[2] = uint32(vals[0])
	case 3:
		iters[0] = uint32(vals[0])
		iters[1] = uint32(vals[1])
		iters[2] = uint32(vals[2])
	default:
		return iters, ErrIterArity
	}
	return iters, nil
}

// Timing holds the host wall clock of one launch and the four profiling
// timestamps of its completion event, in device nanoseconds.
type Timing struct {
	Elapsed time.Duration
	Queued  int64
	Submit  int64
	Start   int64
	End     int64
}

// QueueDelay is submit minus queued, in seconds.
func (t Timing) QueueDelay() float64 { return float64(t.Submit-t.Queued) / nsPerSecond }

// DispatchDelay is start minus submit, in seconds.
func (t Timing) DispatchDelay() float64 { return float64(t.Start-t.Submit) / nsPerSecond }

// Duration is end minus start, in seconds.
func (t Timing) Duration() float64 { return float64(t.End-t.Start) / nsPerSecond }

// Pass is the outcome of one kernel launch.
type Pass struct {
	Index   int
	Results []uint32
	Timing  Timing
}

// Checksum sums the results modulo 2^32.
func Checksum(results []uint32) uint32 {
	var total uint32
	for _, r := range results {
		total += r
	}
	return total
}

func FormatChecksum(total uint32) string {
	return fmt.Sprintf("0x%08x", total)
}

// seconds mimics the default six significant digit stream formatting.
func seconds(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WritePass prints the checksum and timing breakdown of a pass.
func WritePass(w io.Writer, p Pass) error {
	_, err := fmt.Fprintf(w,
		"Total: %s\n"+
			"Elapsed:   %s s\n"+
			"Queued:    %s s\n"+
			"Submitted: %s s\n"+
			"Running:   %s s\n",
		FormatChecksum(Checksum(p.Results)),
		seconds(p.Timing.Elapsed.Seconds()),
		seconds(p.Timing.QueueDelay()),
		seconds(p.Timing.DispatchDelay()),
		seconds(p.Timing.Duration()))
	return err
}

// Stat is the mean and standard deviation of one delta across passes.
type Stat struct {
	Mean   float64
	StdDev float64
}

type Summary struct {
	Passes   int
	Elapsed  Stat
	Queued   Stat
	Dispatch Stat
	Running  Stat
}

func Summarize(passes []Pass) Summary {
	n := len(passes)
	elapsed := make([]float64, n)
	queued := make([]float64, n)
	dispatch := make([]float64, n)
	running := make([]float64, n)
	for i, p := range passes {
		elapsed[i] = p.Timing.Elapsed.Seconds()
		queued[i] = p.Timing.QueueDelay()
		dispatch[i] = p.Timing.DispatchDelay()
		running[i] = p.Timing.Duration()
	}
	return Summary{
		Passes:   n,
		Elapsed:  newStat(elapsed),
		Queued:   newStat(queued),
		Dispatch: newStat(dispatch),
		Running:  newStat(running),
	}
}

func newStat(x []float64) Stat {
	if len(x) == 0 {
		return Stat{}
	}
	if len(x) == 1 {
		return Stat{Mean: x[0]}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Stat{Mean: mean, StdDev: std}
}

func WriteSummary(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "Summary over %d passes:\n", s.Passes); err != nil {
		return err
	}
	rows := []struct {
		name string
		st   Stat
	}{
		{"Elapsed:  ", s.Elapsed},
		{"Queued:   ", s.Queued},
		{"Submitted:", s.Dispatch},
		{"Running:  ", s.Running},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "  %s mean %s s, stddev %s s\n", r.name, seconds(r.st.Mean), seconds(r.st.StdDev)); err != nil {
			return err
		}
	}
	return nil
}

// Mismatch locates the first work item whose result differs from the reference.
// It returns -1 when both agree.
func Mismatch(got, want []uint32) int {
	n := len(got)
	if len(want) < n {
		n = len(want)
	}
	for i := 0; i < n; i++ {
		if got[i] != want[i] {
			return i
		}
	}
	if len(got) != len(want) {
		return n
	}
	return -1
}
