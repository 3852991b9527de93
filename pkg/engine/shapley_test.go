package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

func TestShapleyAdditiveEqualsNormalizedWeights(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{1.5, 1.0})
	require.NoError(t, err)
	phi, err := engine.Shapley(c, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, phi[0], 1e-12)
	assert.InDelta(t, 0.4, phi[1], 1e-12)
}

func TestShapleySumsToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(8)
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = 0.1 + rng.Float64()
		}
		interactions := make(map[[2]int]float64)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				interactions[[2]int{i, j}] = rng.Float64()*0.1 - 0.03
			}
		}
		c, err := engine.BuildCapacity(weights, interactions)
		require.NoError(t, err)

		phi, err := engine.Shapley(c, engine.DefaultShapleyTolerance)
		require.NoError(t, err)
		var sum float64
		for _, v := range phi {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestShapleySymmetricIndicatorsShareImportance(t *testing.T) {
	c, err := engine.BuildCapacity([]float64{1, 1, 1}, map[[2]int]float64{{0, 1}: 0.2})
	require.NoError(t, err)
	phi, err := engine.Shapley(c, 0)
	require.NoError(t, err)
	assert.InDelta(t, phi[0], phi[1], 1e-12)
	assert.Greater(t, phi[0], phi[2])
}

func TestInteractionIndex(t *testing.T) {
	additive, err := engine.AdditiveCapacity([]float64{1, 2, 3})
	require.NoError(t, err)
	for pair, v := range engine.InteractionIndex(additive) {
		assert.InDelta(t, 0, v, 1e-12, "pair %v", pair)
	}
	assert.Len(t, engine.InteractionIndex(additive), 3)

	synergy, err := engine.BuildCapacity([]float64{1, 1}, map[[2]int]float64{{0, 1}: 0.5})
	require.NoError(t, err)
	idx := engine.InteractionIndex(synergy)
	assert.Greater(t, idx[[2]int{0, 1}], 0.0)

	single, err := engine.AdditiveCapacity([]float64{1})
	require.NoError(t, err)
	assert.Empty(t, engine.InteractionIndex(single))
}
