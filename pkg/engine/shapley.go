package engine

import (
	"fmt"
	"math"
)

// DefaultShapleyTolerance is the allowed deviation of the Shapley sum from 1.
const DefaultShapleyTolerance = 1e-9

// Shapley returns each indicator's Shapley importance under c by exact
// enumeration of the 2^(n-1) coalitions excluding it:
//
//	phi_i = sum over S of |S|!(n-|S|-1)!/n! * (mu(S+i) - mu(S))
//
// The values sum to mu(N) = 1; a deviation beyond tolerance is reported as
// an InvariantViolation. A non-positive tolerance selects the default.
func Shapley(c *Capacity, tolerance float64) ([]float64, error) {
	if tolerance <= 0 {
		tolerance = DefaultShapleyTolerance
	}
	n := c.n
	fact := factorials(n)
	phi := make([]float64, n)
	for i := 0; i < n; i++ {
		bit := uint(1) << uint(i)
		for s := uint(0); s <= c.Full(); s++ {
			if s&bit != 0 {
				continue
			}
			k := cardinality(s)
			weight := fact[k] * fact[n-k-1] / fact[n]
			phi[i] += weight * (c.mu[s|bit] - c.mu[s])
		}
	}

	var sum float64
	for _, v := range phi {
		sum += v
	}
	if math.Abs(sum-c.mu[c.Full()]) > tolerance {
		return nil, &InvariantViolation{
			Kind: ShapleySumMismatch,
			Msg:  fmt.Sprintf("Shapley values sum to %.15f, expected %.15f", sum, c.mu[c.Full()]),
		}
	}
	return phi, nil
}

// InteractionIndex returns the Shapley interaction index of every pair
// (i < j) in the group. Positive values indicate synergy, negative values
// redundancy, and an additive capacity yields zeros.
func InteractionIndex(c *Capacity) map[[2]int]float64 {
	n := c.n
	out := make(map[[2]int]float64)
	if n < 2 {
		return out
	}
	fact := factorials(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			bi, bj := uint(1)<<uint(i), uint(1)<<uint(j)
			var idx float64
			for s := uint(0); s <= c.Full(); s++ {
				if s&(bi|bj) != 0 {
					continue
				}
				k := cardinality(s)
				weight := fact[k] * fact[n-k-2] / fact[n-1]
				idx += weight * (c.mu[s|bi|bj] - c.mu[s|bi] - c.mu[s|bj] + c.mu[s])
			}
			out[[2]int{i, j}] = idx
		}
	}
	return out
}

func factorials(n int) []float64 {
	f := make([]float64, n+1)
	f[0] = 1
	for i := 1; i <= n; i++ {
		f[i] = f[i-1] * float64(i)
	}
	return f
}
