package pu

// CRC-32 (reflected) polynomial used by crc_iter.
const CRCPoly uint32 = 0xEDB88320

// Iteration count classes of crc_iter work items.
const (
	ClassFirst  = 0 // global id 0
	ClassLeader = 1 // local id 0
	ClassOther  = 2
)

// Fixed simple_add operands.
var (
	SimpleAddA = []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	SimpleAddB = []int32{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}
)

type PU interface {
	// a, b: operands of equal length. Returns a[i]+b[i] for every i.
	SimpleAdd(a, b []int32) ([]int32, error)

	// count work items in groups of size, iters holds the round count per class.
	// Returns one CRC value per work item.
	CRCIter(count, size int, iters [3]uint32) ([]uint32, error)
}

// IterClass returns which iteration count a work item uses.
func IterClass(global_id, local_id int) int {
	switch {
	case global_id == 0:
		return ClassFirst
	case local_id == 0:
		return ClassLeader
	default:
		return ClassOther
	}
}
