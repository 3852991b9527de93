package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// ErrNoIndex is returned by run listing when no RunIndex is configured.
var ErrNoIndex = errors.New("run index not configured")

// Computer abstracts the engine so the service can be tested with a stub.
type Computer interface {
	ComputeCycle(ctx context.Context, c *framework.Cycle) (*engine.CycleResults, error)
}

// Service computes cycles and persists their inputs and results.
type Service struct {
	storage  StorageClient
	index    RunIndex
	computer Computer
	logger   *slog.Logger

	// serializes writes of the latest pointer per process
	mu sync.Mutex
}

// NewService creates a results Service. index may be nil, in which case runs
// are stored but not indexed.
func NewService(storage StorageClient, index RunIndex, computer Computer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage:  storage,
		index:    index,
		computer: computer,
		logger:   logger,
	}
}

// Run validates, computes and stores a cycle. The returned results carry the
// new run id and are also mirrored as the cycle's latest results.
func (s *Service) Run(ctx context.Context, c *framework.Cycle) (res *engine.CycleResults, err error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With("cycle_id", c.ID, "run_id", runID)

	if s.index != nil {
		if err := s.index.CreateRun(ctx, RunRecord{
			ID:          runID,
			CycleID:     c.ID,
			FrameworkID: c.Framework.ID,
			DMUCount:    len(c.Scores),
		}); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				if failErr := s.index.FailRun(context.WithoutCancel(ctx), runID, err.Error()); failErr != nil {
					logger.Error("failed to mark run failed", "error", failErr)
				}
			}
		}()
	}

	res, err = s.computer.ComputeCycle(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("compute cycle %s: %w", c.ID, err)
	}
	res.RunID = runID

	input, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal cycle: %w", err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	if err := s.storage.PutInput(ctx, c.ID, runID, input); err != nil {
		return nil, fmt.Errorf("put input blob: %w", err)
	}
	if err := s.storage.PutResults(ctx, c.ID, runID, data); err != nil {
		return nil, fmt.Errorf("put results blob: %w", err)
	}
	s.mu.Lock()
	err = s.storage.PutResults(ctx, c.ID, LatestRun, data)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("put latest results: %w", err)
	}

	if s.index != nil {
		ms := res.ComputationTimeMs
		mean := res.PopulationStats.MeanEfficiency
		std := res.PopulationStats.StdEfficiency
		ref, _ := objectKey("", c.ID, "results", runID)
		if err := s.index.CompleteRun(ctx, RunRecord{
			ID:             runID,
			CycleID:        c.ID,
			ComputationMs:  &ms,
			MeanEfficiency: &mean,
			StdEfficiency:  &std,
			WarningCount:   len(res.Warnings),
			StorageRef:     &ref,
		}); err != nil {
			return nil, err
		}
	}

	logger.Info("cycle run stored",
		"dmus", res.PopulationStats.TotalDMUs,
		"warnings", len(res.Warnings),
		"computation_ms", res.ComputationTimeMs,
	)
	return res, nil
}

// Latest loads the most recent results of a cycle.
func (s *Service) Latest(ctx context.Context, cycleID string) (*engine.CycleResults, error) {
	return s.Get(ctx, cycleID, LatestRun)
}

// Get loads the results of one run.
func (s *Service) Get(ctx context.Context, cycleID, runID string) (*engine.CycleResults, error) {
	data, err := s.storage.GetResults(ctx, cycleID, runID)
	if err != nil {
		return nil, fmt.Errorf("get results %s/%s: %w", cycleID, runID, err)
	}
	var res engine.CycleResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &res, nil
}

// Input loads the cycle document a run was computed from.
func (s *Service) Input(ctx context.Context, cycleID, runID string) (*framework.Cycle, error) {
	data, err := s.storage.GetInput(ctx, cycleID, runID)
	if err != nil {
		return nil, fmt.Errorf("get input %s/%s: %w", cycleID, runID, err)
	}
	return framework.ParseCycle(data, false)
}

// Runs lists a cycle's runs, newest first.
func (s *Service) Runs(ctx context.Context, cycleID string) ([]RunRecord, error) {
	if s.index == nil {
		return nil, ErrNoIndex
	}
	return s.index.ListRuns(ctx, cycleID)
}

// MemoryIndex is an in-process RunIndex. It is used when no database is
// configured for the API server.
type MemoryIndex struct {
	mu   sync.Mutex
	runs []RunRecord
	now  func() time.Time
}

// NewMemoryIndex creates an empty in-process RunIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{now: time.Now}
}

func (m *MemoryIndex) CreateRun(ctx context.Context, run RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.Status = StatusRunning
	run.CreatedAt = m.now()
	run.UpdatedAt = run.CreatedAt
	m.runs = append(m.runs, run)
	return nil
}

func (m *MemoryIndex) FailRun(ctx context.Context, runID, errMsg string) error {
	return m.update(runID, func(r *RunRecord) {
		r.Status = StatusFailed
		r.ErrorMessage = &errMsg
	})
}

func (m *MemoryIndex) CompleteRun(ctx context.Context, run RunRecord) error {
	m.mu.Lock()
	for i := range m.runs {
		r := &m.runs[i]
		if r.CycleID == run.CycleID && r.Status == StatusCompleted && r.ID != run.ID {
			r.Status = StatusSuperseded
			r.UpdatedAt = m.now()
		}
	}
	m.mu.Unlock()
	return m.update(run.ID, func(r *RunRecord) {
		r.Status = StatusCompleted
		r.ComputationMs = run.ComputationMs
		r.MeanEfficiency = run.MeanEfficiency
		r.StdEfficiency = run.StdEfficiency
		r.WarningCount = run.WarningCount
		r.StorageRef = run.StorageRef
	})
}

func (m *MemoryIndex) ListRuns(ctx context.Context, cycleID string) ([]RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RunRecord
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].CycleID == cycleID {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *MemoryIndex) update(runID string, fn func(*RunRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == runID {
			fn(&m.runs[i])
			m.runs[i].UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("run %s: %w", runID, ErrNotFound)
}
