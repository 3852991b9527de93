package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

func TestAggregateSingleIndicatorIsIdentity(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{0.8})
	require.NoError(t, err)
	for _, x := range []float64{0, 0.123456789, 0.5, 1} {
		assert.Equal(t, x, c.Aggregate([]float64{x}))
	}
}

func TestAggregateAdditiveIsWeightedAverage(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{1.0, 0.8})
	require.NoError(t, err)
	x := []float64{0.5991983967935872, 0.24843423799582465}
	want := (1.0*x[0] + 0.8*x[1]) / 1.8
	assert.InDelta(t, want, c.Aggregate(x), 1e-12)
}

func TestAggregateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c, err := engine.BuildCapacity([]float64{1, 2, 3, 1}, map[[2]int]float64{{0, 1}: 0.2, {2, 3}: -0.1})
	require.NoError(t, err)
	for trial := 0; trial < 100; trial++ {
		x := make([]float64, 4)
		lo, hi := 1.0, 0.0
		for i := range x {
			x[i] = rng.Float64()
			lo = min(lo, x[i])
			hi = max(hi, x[i])
		}
		got := c.Aggregate(x)
		assert.GreaterOrEqual(t, got+1e-12, lo)
		assert.LessOrEqual(t, got-1e-12, hi)
	}
}

func TestChainWeights(t *testing.T) {
	c, err := engine.BuildCapacity([]float64{1, 1, 2}, map[[2]int]float64{{0, 2}: 0.3})
	require.NoError(t, err)

	x := []float64{0.2, 0.9, 0.4}
	w := c.ChainWeights(x)

	var sum, dot float64
	for i := range w {
		assert.GreaterOrEqual(t, w[i], 0.0)
		sum += w[i]
		dot += w[i] * x[i]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, c.Aggregate(x), dot, 1e-12)

	// the largest value gets mu of its singleton
	assert.InDelta(t, c.Value(0b010), w[1], 1e-12)
}

func TestAggregatePanicsOnLengthMismatch(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{1, 1})
	require.NoError(t, err)
	assert.Panics(t, func() { c.Aggregate([]float64{1}) })
}
