package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

func assertCapacityInvariants(t *testing.T, c *engine.Capacity) {
	t.Helper()
	assert.Equal(t, 0.0, c.Value(0), "mu(empty)")
	assert.InDelta(t, 1.0, c.Value(c.Full()), 1e-12, "mu(full)")
	for s := uint(1); s <= c.Full(); s++ {
		v := c.Value(s)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		for i := 0; i < c.Size(); i++ {
			bit := uint(1) << uint(i)
			if s&bit != 0 {
				assert.GreaterOrEqual(t, v+1e-12, c.Value(s^bit), "mu(%b) < mu(%b)", s, s^bit)
			}
		}
	}
}

func TestAdditiveCapacity(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{1.5, 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, c.Value(0b01), 1e-12)
	assert.InDelta(t, 0.4, c.Value(0b10), 1e-12)
	assert.InDelta(t, 1.0, c.Value(0b11), 1e-12)
	assertCapacityInvariants(t, c)
}

func TestBuildCapacityWithSynergy(t *testing.T) {
	c, err := engine.BuildCapacity([]float64{1, 1}, map[[2]int]float64{{0, 1}: 0.5})
	require.NoError(t, err)
	// singletons 0.5 each, full 1.5 before rescaling
	assert.InDelta(t, 1.0/3.0, c.Value(0b01), 1e-12)
	assert.InDelta(t, 1.0/3.0, c.Value(0b10), 1e-12)
	assertCapacityInvariants(t, c)
}

func TestBuildCapacityRepairsRedundancy(t *testing.T) {
	// A strong redundancy between 0 and 1 drives mu({0,1}) below mu({0}).
	c, err := engine.BuildCapacity([]float64{1, 1, 1}, map[[2]int]float64{{0, 1}: -0.5})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c.Value(0b011), c.Value(0b001))
	assertCapacityInvariants(t, c)
}

func TestBuildCapacityRandomInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(6)
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = 0.05 + rng.Float64()
		}
		interactions := make(map[[2]int]float64)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Intn(2) == 0 {
					interactions[[2]int{i, j}] = rng.Float64()*0.15 - 0.05
				}
			}
		}
		c, err := engine.BuildCapacity(weights, interactions)
		require.NoError(t, err, "trial %d", trial)
		assertCapacityInvariants(t, c)
	}
}

func TestBuildCapacityErrors(t *testing.T) {
	tests := []struct {
		name         string
		weights      []float64
		interactions map[[2]int]float64
		kind         framework.ValidationKind
	}{
		{"empty group", nil, nil, framework.EmptyIndicatorGroup},
		{"too large", make11(), nil, framework.GroupTooLarge},
		{"zero weights", []float64{0, 0}, nil, framework.InvalidFramework},
		{"negative weight", []float64{1, -1}, nil, framework.InvalidFramework},
		{"self pair", []float64{1, 1}, map[[2]int]float64{{1, 1}: 0.1}, framework.InvalidInteraction},
		{"pair out of range", []float64{1, 1}, map[[2]int]float64{{0, 2}: 0.1}, framework.InvalidInteraction},
		{"non-positive full set", []float64{1, 1}, map[[2]int]float64{{0, 1}: -1}, framework.InvalidInteraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.BuildCapacity(tt.weights, tt.interactions)
			require.Error(t, err)
			assert.Equal(t, tt.kind, framework.KindOf(err))
		})
	}
}

func TestBuildCapacityToleratesZeroWeight(t *testing.T) {
	c, err := engine.AdditiveCapacity([]float64{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Value(0b01))
	assertCapacityInvariants(t, c)
}

func make11() []float64 {
	w := make([]float64, 11)
	for i := range w {
		w[i] = 1
	}
	return w
}
