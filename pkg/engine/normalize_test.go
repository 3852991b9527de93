package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

func quant(id string, lo, hi, w float64, input bool) framework.Indicator {
	return framework.Indicator{ID: id, Name: id, Kind: framework.KindQuantitative, MinValue: lo, MaxValue: hi, Weight: w, IsInput: input}
}

func TestNormalizeValueLinear(t *testing.T) {
	ind := quant("rev", 1, 1e6, 1, false)
	for _, raw := range []float64{1, 2.5, 380000, 620000, 999999.5, 1e6} {
		n, err := engine.NormalizeValue(ind, raw)
		require.Nil(t, err)
		assert.GreaterOrEqual(t, n, 0.0)
		assert.LessOrEqual(t, n, 1.0)
		assert.InDelta(t, raw, ind.MinValue+n*(ind.MaxValue-ind.MinValue), 1e-9*math.Max(1, math.Abs(raw)))
	}
}

func TestNormalizeValueQualitative(t *testing.T) {
	ind := framework.Indicator{
		ID: "sat", Name: "Satisfaction", Kind: framework.KindQualitative,
		Scale: []float64{1, 2, 3, 4, 5}, Weight: 1,
	}

	tests := []struct {
		raw  float64
		want float64
	}{
		{1, 0},
		{2, 0.25},
		{3, 0.5},
		{5, 1},
	}
	for _, tt := range tests {
		got, err := engine.NormalizeValue(ind, tt.raw)
		require.Nil(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "raw %v", tt.raw)
	}

	_, err := engine.NormalizeValue(ind, 2.5)
	require.NotNil(t, err)
	assert.Equal(t, framework.InvalidScaleValue, err.Kind)
}

func TestNormalizeValueOutOfRange(t *testing.T) {
	ind := quant("calls", 1, 500, 1, true)
	for _, raw := range []float64{0.99, 501, math.NaN(), math.Inf(1)} {
		_, err := engine.NormalizeValue(ind, raw)
		require.NotNil(t, err, "raw %v", raw)
		assert.Equal(t, framework.OutOfRange, err.Kind)
	}
}

func TestNormalizeSplitsGroupsInDeclarationOrder(t *testing.T) {
	fw := &framework.Framework{
		ID: "fw",
		Indicators: []framework.Indicator{
			quant("out_a", 0, 10, 1, false),
			quant("in_a", 0, 10, 1, true),
			quant("out_b", 0, 100, 1, false),
		},
	}
	ns, err := engine.Normalize(fw, []framework.DMUScoreSet{
		{DMUID: "d1", Scores: map[string]float64{"out_a": 5, "in_a": 2, "out_b": 100}},
	})
	require.NoError(t, err)
	require.Len(t, ns.DMUs, 1)
	assert.Equal(t, []float64{0.2}, ns.DMUs[0].Inputs)
	assert.Equal(t, []float64{0.5, 1}, ns.DMUs[0].Outputs)

	v, ok := ns.Value(0, "out_b")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestNormalizeErrors(t *testing.T) {
	fw := &framework.Framework{
		ID: "fw",
		Indicators: []framework.Indicator{
			quant("in", 0, 10, 1, true),
			quant("out", 0, 10, 1, false),
		},
	}

	tests := []struct {
		name   string
		fw     *framework.Framework
		scores []framework.DMUScoreSet
		kind   framework.ValidationKind
	}{
		{
			name: "empty population",
			fw:   fw,
			kind: framework.EmptyPopulation,
		},
		{
			name:   "missing score",
			fw:     fw,
			scores: []framework.DMUScoreSet{{DMUID: "d1", Scores: map[string]float64{"in": 1}}},
			kind:   framework.MissingScore,
		},
		{
			name:   "out of range",
			fw:     fw,
			scores: []framework.DMUScoreSet{{DMUID: "d1", Scores: map[string]float64{"in": 1, "out": 11}}},
			kind:   framework.OutOfRange,
		},
		{
			name: "no outputs",
			fw: &framework.Framework{ID: "fw", Indicators: []framework.Indicator{
				quant("in", 0, 10, 1, true),
			}},
			scores: []framework.DMUScoreSet{{DMUID: "d1", Scores: map[string]float64{"in": 1}}},
			kind:   framework.EmptyIndicatorGroup,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Normalize(tt.fw, tt.scores)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrValidation)
			assert.Equal(t, tt.kind, framework.KindOf(err))
		})
	}
}

func TestNormalizeErrorCarriesDMU(t *testing.T) {
	fw := &framework.Framework{
		ID: "fw",
		Indicators: []framework.Indicator{
			quant("in", 0, 10, 1, true),
			quant("out", 0, 10, 1, false),
		},
	}
	_, err := engine.Normalize(fw, []framework.DMUScoreSet{
		{DMUID: "d1", Scores: map[string]float64{"in": 1, "out": 1}},
		{DMUID: "d2", Scores: map[string]float64{"in": -1, "out": 1}},
	})
	var ve *engine.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "d2", ve.DMUID)
	assert.Equal(t, "in", ve.IndicatorID)
	assert.Equal(t, -1.0, ve.Value)
}
