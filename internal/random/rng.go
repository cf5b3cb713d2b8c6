package random

import "math/rand"

// RangeInt returns a uniform draw in [min, max].
// When max <= min the draw collapses to min.
func RangeInt(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// Chance reports whether an independent trial with probability p succeeds.
// Probabilities at or below 0 never succeed; at or above 1 they always do.
func Chance(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}
