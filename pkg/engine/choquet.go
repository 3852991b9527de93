package engine

import (
	"fmt"
	"sort"
)

// Aggregate returns the discrete Choquet integral of x with respect to c:
// sum over k of (x_(k) - x_(k+1)) * mu(A_k), where x_(1) >= ... >= x_(n) is x
// sorted descending, x_(n+1) = 0 and A_k holds the indices of the k largest
// values. Ties keep declaration order. x must have c.Size() entries.
func (c *Capacity) Aggregate(x []float64) float64 {
	c.checkLen(x)
	order := descendingOrder(x)
	var (
		sum  float64
		mask uint
	)
	for k, idx := range order {
		mask |= 1 << uint(idx)
		next := 0.0
		if k+1 < len(order) {
			next = x[order[k+1]]
		}
		sum += (x[idx] - next) * c.mu[mask]
	}
	return sum
}

// ChainWeights returns the linear weights the capacity assigns under the
// descending ordering of x: the indicator ranked k-th receives
// mu(A_k) - mu(A_(k-1)). The weights are non-negative and sum to 1, and
// Aggregate(x) equals their dot product with x.
func (c *Capacity) ChainWeights(x []float64) []float64 {
	c.checkLen(x)
	w := make([]float64, c.n)
	var mask uint
	prev := 0.0
	for _, idx := range descendingOrder(x) {
		mask |= 1 << uint(idx)
		w[idx] = c.mu[mask] - prev
		prev = c.mu[mask]
	}
	return w
}

func (c *Capacity) checkLen(x []float64) {
	if len(x) != c.n {
		panic(fmt.Sprintf("engine: vector of length %d for capacity over %d indicators", len(x), c.n))
	}
}

// descendingOrder returns the indices of x sorted by value, largest first.
func descendingOrder(x []float64) []int {
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[order[a]] > x[order[b]]
	})
	return order
}

func dot(w, x []float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}
