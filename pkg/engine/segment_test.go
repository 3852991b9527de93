package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

func TestTerciles(t *testing.T) {
	got := engine.Terciles([]float64{0.4724, 0.692, 0.786})
	assert.InDelta(t, 0.4724+(0.692-0.4724)*2/3, got[0], 1e-12)
	assert.InDelta(t, 0.692+(0.786-0.692)/3, got[1], 1e-12)

	single := engine.Terciles([]float64{0.3})
	assert.Equal(t, [2]float64{0.3, 0.3}, single)
}

func TestTierOf(t *testing.T) {
	th := [2]float64{0.3, 0.6}
	assert.Equal(t, engine.TierLow, engine.TierOf(0.29, th))
	assert.Equal(t, engine.TierMed, engine.TierOf(0.3, th))
	assert.Equal(t, engine.TierMed, engine.TierOf(0.59, th))
	assert.Equal(t, engine.TierHigh, engine.TierOf(0.6, th))
}

func TestSegmentNineBoxCompleteness(t *testing.T) {
	ids := []string{"e5", "e1", "e3", "e2", "e4", "e6"}
	eff := []float64{0.9, 0.1, 0.5, 0.2, 0.95, 0.55}
	effectiveness := []float64{0.8, 0.2, 0.4, 0.3, 0.9, 0.45}

	seg := engine.Segment(ids, eff, effectiveness)
	require9 := []string{"high_high", "high_med", "high_low", "med_high", "med_med", "med_low", "low_high", "low_med", "low_low"}
	assert.Len(t, seg.Cells, 9)

	total := 0
	seen := map[string]bool{}
	for _, key := range require9 {
		cell, ok := seg.Cells[key]
		if !assert.True(t, ok, key) {
			continue
		}
		assert.Equal(t, key, cell.Position)
		assert.Equal(t, engine.Profile(key), cell.Profile)
		assert.NotNil(t, cell.Employees)
		assert.Len(t, cell.Employees, cell.Count)
		assert.IsNonDecreasing(t, cell.Employees)
		for _, id := range cell.Employees {
			assert.False(t, seen[id], "%s in two cells", id)
			seen[id] = true
		}
		total += cell.Count
	}
	assert.Equal(t, len(ids), total)

	assert.Equal(t, []string{"e4", "e5"}, seg.Cells["high_high"].Employees)
	assert.Equal(t, []string{"e1", "e2"}, seg.Cells["low_low"].Employees)
	assert.Equal(t, 0, seg.Cells["high_low"].Count)
	assert.Equal(t, []string{}, seg.Cells["high_low"].Employees)
}

func TestProfiles(t *testing.T) {
	assert.Equal(t, "Star", engine.Profile("high_high"))
	assert.Equal(t, "Enigma", engine.Profile("high_low"))
	assert.Equal(t, "Workhorse", engine.Profile("low_high"))
	assert.Equal(t, "Critical Bottleneck", engine.Profile("low_low"))
	assert.Equal(t, "Core Player", engine.Profile("med_med"))
}

func TestQuadrantOf(t *testing.T) {
	assert.Equal(t, engine.QuadrantBenchmark, engine.QuadrantOf(0.5, 0.5, 0.5, 0.5))
	assert.Equal(t, engine.QuadrantDiligent, engine.QuadrantOf(0.8, 0.2, 0.5, 0.5))
	assert.Equal(t, engine.QuadrantOpportunistic, engine.QuadrantOf(0.2, 0.8, 0.5, 0.5))
	assert.Equal(t, engine.QuadrantUnderperformer, engine.QuadrantOf(0.2, 0.2, 0.5, 0.5))
}
