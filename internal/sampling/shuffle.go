package sampling

import "math/bits"

// xxhash64 is an unrolled unsigned mixer producing the same output as
// xxh3's single-input path. Adapted from the teacher's noise.go, where it
// seeds coordinate jitter for procedural sampling; here it only drives the
// Fisher-Yates shuffle of partition offsets below, since this sampler picks
// among real input points rather than generating synthetic ones.
func xxhash64(v, seed uint64) uint64 {
	x := v ^ (0x1cad21f72c81017c ^ 0xdb979083e96dd4de) + seed
	x ^= bits.RotateLeft64(x, 49) ^ bits.RotateLeft64(x, 24)
	x *= 0x9fb21c651e98df25
	x ^= (x >> 35) + 4
	x *= 0x9fb21c651e98df25
	x ^= x >> 28
	return x
}

// shufflePartitions returns a deterministic permutation of the 27 partition
// offsets a ∈ {0,1,2}³. spec.md §9 notes the shuffle "is not load-bearing
// for correctness... a fixed order is acceptable if documented" — this
// hashes the run seed into a Fisher-Yates shuffle rather than using a fixed
// order, so the corner at (0,0,0) is not always processed first, while
// staying fully deterministic for a given seed.
func shufflePartitions(seed uint32) []key {
	offsets := make([]key, 0, 27)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				offsets = append(offsets, key{a, b, c})
			}
		}
	}

	h := uint64(seed)
	for i := len(offsets) - 1; i > 0; i-- {
		h = xxhash64(uint64(i), h)
		j := int(h % uint64(i+1))
		offsets[i], offsets[j] = offsets[j], offsets[i]
	}
	return offsets
}
