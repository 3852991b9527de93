package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

type stubComputer struct {
	err   error
	calls int
}

func (s *stubComputer) ComputeCycle(ctx context.Context, c *framework.Cycle) (*engine.CycleResults, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &engine.CycleResults{
		CycleID:         c.ID,
		FrameworkID:     c.Framework.ID,
		PopulationStats: engine.PopulationStats{TotalDMUs: len(c.Scores), MeanEfficiency: 0.5},
	}, nil
}

func loadCycle(t *testing.T) *framework.Cycle {
	t.Helper()
	c, err := framework.LoadCycle("../../testdata/sales_cycle.yaml")
	require.NoError(t, err)
	return c
}

func TestServiceRunStoresAndIndexes(t *testing.T) {
	ctx := context.Background()
	storage := NewLocalStorage(t.TempDir())
	index := NewMemoryIndex()
	svc := NewService(storage, index, &stubComputer{}, nil)
	c := loadCycle(t)

	first, err := svc.Run(ctx, c)
	require.NoError(t, err)
	require.NotEmpty(t, first.RunID)

	second, err := svc.Run(ctx, c)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	latest, err := svc.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.RunID)

	byID, err := svc.Get(ctx, c.ID, first.RunID)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, byID.RunID)

	input, err := svc.Input(ctx, c.ID, first.RunID)
	require.NoError(t, err)
	assert.Equal(t, c.Framework.ID, input.Framework.ID)
	assert.Len(t, input.Scores, 3)

	runs, err := svc.Runs(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].ID)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, StatusSuperseded, runs[1].Status)
	require.NotNil(t, runs[0].MeanEfficiency)
	assert.Equal(t, 0.5, *runs[0].MeanEfficiency)
}

func TestServiceRunRecordsFailure(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	boom := errors.New("boom")
	svc := NewService(NewLocalStorage(t.TempDir()), index, &stubComputer{err: boom}, nil)
	c := loadCycle(t)

	_, err := svc.Run(ctx, c)
	require.ErrorIs(t, err, boom)

	runs, err := svc.Runs(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].ErrorMessage)
	assert.Contains(t, *runs[0].ErrorMessage, "boom")

	_, err = svc.Latest(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRunRejectsInvalidCycle(t *testing.T) {
	computer := &stubComputer{}
	index := NewMemoryIndex()
	svc := NewService(NewLocalStorage(t.TempDir()), index, computer, nil)
	c := loadCycle(t)
	c.Scores = nil

	_, err := svc.Run(context.Background(), c)
	require.ErrorIs(t, err, framework.ErrValidation)
	assert.Equal(t, 0, computer.calls)

	runs, err := svc.Runs(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestServiceWithoutIndex(t *testing.T) {
	svc := NewService(NewLocalStorage(t.TempDir()), nil, &stubComputer{}, nil)
	c := loadCycle(t)

	_, err := svc.Run(context.Background(), c)
	require.NoError(t, err)

	_, err = svc.Runs(context.Background(), c.ID)
	assert.ErrorIs(t, err, ErrNoIndex)
}
