package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdDevIsPopulation(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, mean(xs))
	assert.Equal(t, 2.0, stdDev(xs))
	assert.Equal(t, 0.0, stdDev(nil))
}

func TestQuantileInterpolates(t *testing.T) {
	xs := []float64{40, 10, 30, 20}
	assert.Equal(t, 10.0, quantile(xs, 0))
	assert.Equal(t, 40.0, quantile(xs, 1))
	assert.InDelta(t, 25.0, quantile(xs, 0.5), 1e-12)
	assert.Equal(t, []float64{40, 10, 30, 20}, xs, "input must not be reordered")
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.False(t, math.IsNaN(pearson([]float64{1}, []float64{1})))
}
