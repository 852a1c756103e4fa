package seating

import "math/rand/v2"

// Source supplies the randomness used to shuffle people before seating.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// NewSeededSource returns a deterministic Source. It is not safe for
// concurrent use.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle returns a uniformly random permutation of people using a
// Fisher–Yates walk. The input slice is left untouched.
func Shuffle(people []Person, src Source) []Person {
	if src == nil {
		src = globalSource{}
	}
	out := make([]Person, len(people))
	copy(out, people)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
