package engine

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// capacityTolerance bounds floating point noise when verifying capacities.
const capacityTolerance = 1e-12

// Capacity is a fuzzy measure over one indicator group, stored densely and
// indexed by subset bitmask: bit i set means indicator i of the group is in
// the subset. It is immutable once built.
type Capacity struct {
	n  int
	mu []float64
}

// Size returns the number of indicators in the group.
func (c *Capacity) Size() int { return c.n }

// Full returns the bitmask of the whole group.
func (c *Capacity) Full() uint { return 1<<uint(c.n) - 1 }

// Value returns the capacity of the subset encoded by mask.
func (c *Capacity) Value(mask uint) float64 { return c.mu[mask] }

// Values returns a copy of the dense capacity table.
func (c *Capacity) Values() []float64 {
	return append([]float64(nil), c.mu...)
}

// BuildCapacity builds a capacity from relative indicator weights and
// pairwise interaction weights keyed by group-local index pairs.
//
// The additive measure of the normalized weights is adjusted by adding each
// interaction weight to every subset containing the pair, rescaled so the
// full set has capacity 1, repaired for monotonicity and clipped to [0,1].
func BuildCapacity(weights []float64, interactions map[[2]int]float64) (*Capacity, error) {
	n := len(weights)
	if n == 0 {
		return nil, framework.Invalid(framework.EmptyIndicatorGroup, "cannot build a capacity over an empty group")
	}
	if n > framework.MaxGroupSize {
		return nil, framework.Invalid(framework.GroupTooLarge, "group has %d indicators (max %d)", n, framework.MaxGroupSize)
	}

	var total float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, framework.Invalid(framework.InvalidFramework, "weight %d is %g", i, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, framework.Invalid(framework.InvalidFramework, "group weights sum to %g", total)
	}

	size := 1 << uint(n)
	mu := make([]float64, size)
	for s := 1; s < size; s++ {
		for i := 0; i < n; i++ {
			if s&(1<<uint(i)) != 0 {
				mu[s] += weights[i] / total
			}
		}
	}

	for pair, w := range interactions {
		i, j := pair[0], pair[1]
		if i == j || i < 0 || j < 0 || i >= n || j >= n {
			return nil, framework.Invalid(framework.InvalidInteraction, "pair (%d,%d) is not valid for a group of %d", i, j, n)
		}
		both := 1<<uint(i) | 1<<uint(j)
		for s := both; s < size; s++ {
			if s&both == both {
				mu[s] += w
			}
		}
	}

	full := mu[size-1]
	if full <= 0 {
		return nil, framework.Invalid(framework.InvalidInteraction, "interactions drive the full-set capacity to %g", full)
	}
	for s := range mu {
		mu[s] /= full
	}

	// Every S\{i} is numerically smaller than S, so ascending mask order
	// visits all subsets of S before S itself.
	for s := 1; s < size; s++ {
		for i := 0; i < n; i++ {
			bit := 1 << uint(i)
			if s&bit != 0 && mu[s^bit] > mu[s] {
				mu[s] = mu[s^bit]
			}
		}
	}

	mu[0] = 0
	for s := 1; s < size; s++ {
		mu[s] = clamp01(mu[s])
	}
	mu[size-1] = 1

	c := &Capacity{n: n, mu: mu}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// AdditiveCapacity builds the capacity with no interactions, whose value on
// every subset is the sum of its normalized weights.
func AdditiveCapacity(weights []float64) (*Capacity, error) {
	return BuildCapacity(weights, nil)
}

// Verify checks boundary conditions and monotonicity.
func (c *Capacity) Verify() error {
	if c.mu[0] != 0 {
		return &InvariantViolation{Kind: MonotonicityRepairFailed, Msg: fmt.Sprintf("empty set has capacity %g", c.mu[0])}
	}
	if math.Abs(c.mu[c.Full()]-1) > capacityTolerance {
		return &InvariantViolation{Kind: MonotonicityRepairFailed, Msg: fmt.Sprintf("full set has capacity %g", c.mu[c.Full()])}
	}
	for s := uint(1); s <= c.Full(); s++ {
		for i := 0; i < c.n; i++ {
			bit := uint(1) << uint(i)
			if s&bit != 0 && c.mu[s^bit] > c.mu[s]+capacityTolerance {
				return &InvariantViolation{
					Kind: MonotonicityRepairFailed,
					Msg:  fmt.Sprintf("capacity of %b (%g) below its subset %b (%g)", s, c.mu[s], s^bit, c.mu[s^bit]),
				}
			}
		}
	}
	return nil
}

func cardinality(mask uint) int {
	return bits.OnesCount(mask)
}
