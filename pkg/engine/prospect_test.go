package engine_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

func TestProspectValue(t *testing.T) {
	a, b, l := engine.DefaultProspectAlpha, engine.DefaultProspectBeta, engine.DefaultLossAversion

	tests := []struct {
		delta float64
		want  float64
	}{
		{0, 0},
		{1, 1},
		{-1, -2.25},
		{0.5, math.Pow(0.5, 0.88)},
		{-0.5, -2.25 * math.Pow(0.5, 0.88)},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, engine.ProspectValue(tt.delta, a, b, l), 1e-12, "delta %g", tt.delta)
	}

	// losses weigh more than equal gains
	assert.Greater(t, -engine.ProspectValue(-0.2, a, b, l), engine.ProspectValue(0.2, a, b, l))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func TestComputeWithOrganizationalObjective(t *testing.T) {
	c := loadSalesCycle(t)
	baseline, err := engine.NewEngine().ComputeCycle(context.Background(), c)
	require.NoError(t, err)
	for id, s := range baseline.EfficiencyScores {
		assert.Empty(t, s.ProspectMode, id)
		assert.Nil(t, s.ProspectValue, id)
	}

	const theta = 0.9
	res, err := engine.NewEngine(engine.WithObjective(theta)).ComputeCycle(context.Background(), c)
	require.NoError(t, err)

	v := func(delta float64) float64 {
		return engine.ProspectValue(delta, engine.DefaultProspectAlpha, engine.DefaultProspectBeta, engine.DefaultLossAversion)
	}

	// additive capacity: every evaluator sees each DMU at its self score
	e007 := res.EfficiencyScores["emp_007"]
	assert.Equal(t, engine.ProspectGain, e007.ProspectMode)
	assert.InDelta(t, 1.0, e007.CrossEfficiency, 1e-12)
	require.NotNil(t, e007.ProspectValue)
	assert.InDelta(t, v(1-theta), *e007.ProspectValue, 1e-9)

	for _, id := range []string{"emp_001", "emp_011"} {
		s := res.EfficiencyScores[id]
		assert.Equal(t, engine.ProspectLoss, s.ProspectMode, id)
		p := v(s.SelfEvaluation - theta)
		require.NotNil(t, s.ProspectValue, id)
		assert.InDelta(t, p, *s.ProspectValue, 1e-9, id)
		want := (s.SelfEvaluation + 2*clampUnit(theta+p)) / 3
		assert.InDelta(t, want, s.CrossEfficiency, 1e-9, id)
		assert.Less(t, s.CrossEfficiency, baseline.EfficiencyScores[id].CrossEfficiency, id)
		assert.Equal(t, baseline.EfficiencyScores[id].SelfEvaluation, s.SelfEvaluation, id)
	}

	assert.Equal(t, 1, res.EfficiencyScores["emp_007"].Rank)
	assert.Equal(t, 3, res.EfficiencyScores["emp_011"].Rank)
}

func TestComputeWithPersonalObjectives(t *testing.T) {
	c := loadSalesCycle(t)
	targets := map[string]float64{"emp_011": 0.3}

	res, err := engine.NewEngine(engine.WithPersonalObjectives(targets)).ComputeCycle(context.Background(), c)
	require.NoError(t, err)

	s := res.EfficiencyScores["emp_011"]
	assert.Equal(t, engine.ProspectGain, s.ProspectMode)
	assert.Greater(t, s.CrossEfficiency, s.SelfEvaluation)

	// DMUs without a personal target fall back to 1
	assert.Equal(t, engine.ProspectLoss, res.EfficiencyScores["emp_001"].ProspectMode)
	assert.Equal(t, engine.ProspectGain, res.EfficiencyScores["emp_007"].ProspectMode)
	assert.InDelta(t, 0.0, *res.EfficiencyScores["emp_007"].ProspectValue, 1e-12)

	// the same targets carried by the cycle document
	c.Objectives = targets
	fromDoc, err := engine.NewEngine().ComputeCycle(context.Background(), c)
	require.NoError(t, err)
	for id, want := range res.EfficiencyScores {
		assert.InDelta(t, want.CrossEfficiency, fromDoc.EfficiencyScores[id].CrossEfficiency, 1e-12, id)
	}
}

func TestComputeObjectiveLossAversion(t *testing.T) {
	c := loadSalesCycle(t)

	mild, err := engine.NewEngine(engine.WithObjective(0.7), engine.WithProspectParameters(1, 1, 1)).ComputeCycle(context.Background(), c)
	require.NoError(t, err)
	averse, err := engine.NewEngine(engine.WithObjective(0.7)).ComputeCycle(context.Background(), c)
	require.NoError(t, err)

	// linear value function without loss aversion leaves peer scores intact
	for id, s := range mild.EfficiencyScores {
		assert.InDelta(t, s.SelfEvaluation, s.CrossEfficiency, 1e-12, id)
	}
	assert.Less(t, averse.EfficiencyScores["emp_001"].CrossEfficiency, mild.EfficiencyScores["emp_001"].CrossEfficiency)
}

func TestComputeObjectiveValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []engine.Option
	}{
		{"target above one", []engine.Option{engine.WithObjective(1.5)}},
		{"negative target", []engine.Option{engine.WithObjective(-0.1)}},
		{"NaN target", []engine.Option{engine.WithObjective(math.NaN())}},
		{"unknown DMU", []engine.Option{engine.WithPersonalObjectives(map[string]float64{"emp_999": 0.5})}},
		{"personal target out of range", []engine.Option{engine.WithPersonalObjectives(map[string]float64{"emp_001": 1.2})}},
		{"loss aversion below one", []engine.Option{engine.WithObjective(0.8), engine.WithProspectParameters(0.88, 0.88, 0.5)}},
		{"curvature above one", []engine.Option{engine.WithObjective(0.8), engine.WithProspectParameters(1.5, 0.88, 2.25)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadSalesCycle(t)
			_, err := engine.NewEngine(tt.opts...).ComputeCycle(context.Background(), c)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrValidation)
			assert.Equal(t, framework.InvalidObjective, framework.KindOf(err))
		})
	}
}
