package vanilla

import (
	"sync"

	"golang.org/x/xerrors"

	"github.com/moratsam/oclbench/pu"
)

// VanillaPU computes the kernels on the host. It is the reference the device
// results are checked against.
type VanillaPU struct {
}

var _ pu.PU = (*VanillaPU)(nil)

func NewVanillaPU() *VanillaPU {
	return &VanillaPU{}
}

func (v *VanillaPU) SimpleAdd(a, b []int32) ([]int32, error) {
	if len(a) != len(b) {
		return nil, xerrors.Errorf("operand lengths differ: %d != %d", len(a), len(b))
	}
	c := make([]int32, len(a))
	for i := range a {
		c[i] = a[i] + b[i]
	}
	return c, nil
}

func (v *VanillaPU) CRCIter(count, size int, iters [3]uint32) ([]uint32, error) {
	if count < 0 {
		return nil, xerrors.Errorf("invalid work item count %d", count)
	}
	if size <= 0 {
		return nil, xerrors.Errorf("invalid work group size %d", size)
	}
	results := make([]uint32, count)

	// Create function for running a single work group.
	wg := new(sync.WaitGroup)
	runGroup := func(first int) {
		for g := first; g < first+size && g < count; g++ {
			l := g - first
			results[g] = CRCRounds(uint32(g), iters[pu.IterClass(g, l)])
		}
		wg.Done()
	}

	// Spawn a routine per work group.
	n_groups := (count + size - 1) / size
	wg.Add(n_groups)
	for i := 0; i < n_groups; i++ {
		go runGroup(i * size)
	}
	wg.Wait()

	return results, nil
}

// CRCRounds applies rounds single-bit CRC updates to x. The device reads the
// round count as a signed int, so counts above MaxInt32 run zero rounds.
func CRCRounds(x uint32, rounds uint32) uint32 {
	n := int32(rounds)
	for i := int32(0); i < n; i++ {
		if x&1 != 0 {
			x = x>>1 ^ pu.CRCPoly
		} else {
			x >>= 1
		}
	}
	return x
}
