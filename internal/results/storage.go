// Package results persists computed cycle results: result and input blobs
// in a StorageClient, plus an optional run index.
package results

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// ErrNotFound is returned when a requested blob does not exist.
var ErrNotFound = errors.New("not found")

// LatestRun is the run id under which the most recent results of a cycle
// are mirrored.
const LatestRun = "latest"

// StorageClient abstracts blob storage for cycle inputs and results.
type StorageClient interface {
	PutResults(ctx context.Context, cycleID, runID string, data []byte) error
	GetResults(ctx context.Context, cycleID, runID string) ([]byte, error)
	PutInput(ctx context.Context, cycleID, runID string, data []byte) error
	GetInput(ctx context.Context, cycleID, runID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Used by the CLI and for development.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// path resolves a blob path and refuses ids that would leave BaseDir.
func (s *LocalStorage) path(cycleID, kind, id string) (string, error) {
	if err := checkKey(cycleID, id); err != nil {
		return "", err
	}
	base := filepath.Clean(s.BaseDir)
	p := filepath.Join(base, cycleID, kind, id+".json")
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", framework.Invalid(framework.InvalidIdentifier, "blob path %q escapes storage root", p)
	}
	return p, nil
}

// checkKey validates the ids that become path segments or object keys.
func checkKey(cycleID, id string) error {
	if err := framework.ValidateID("cycle id", cycleID); err != nil {
		return err
	}
	return framework.ValidateID("run id", id)
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStorage) get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, err
}

// PutResults stores a results blob.
func (s *LocalStorage) PutResults(ctx context.Context, cycleID, runID string, data []byte) error {
	p, err := s.path(cycleID, "results", runID)
	if err != nil {
		return err
	}
	return s.put(p, data)
}

// GetResults retrieves a results blob.
func (s *LocalStorage) GetResults(ctx context.Context, cycleID, runID string) ([]byte, error) {
	p, err := s.path(cycleID, "results", runID)
	if err != nil {
		return nil, err
	}
	return s.get(p)
}

// PutInput stores the cycle document a run was computed from.
func (s *LocalStorage) PutInput(ctx context.Context, cycleID, runID string, data []byte) error {
	p, err := s.path(cycleID, "inputs", runID)
	if err != nil {
		return err
	}
	return s.put(p, data)
}

// GetInput retrieves a stored cycle document.
func (s *LocalStorage) GetInput(ctx context.Context, cycleID, runID string) ([]byte, error) {
	p, err := s.path(cycleID, "inputs", runID)
	if err != nil {
		return nil, err
	}
	return s.get(p)
}

// objectKey is the blob key layout shared by the cloud backends.
func objectKey(prefix, cycleID, kind, id string) (string, error) {
	if err := checkKey(cycleID, id); err != nil {
		return "", err
	}
	key := cycleID + "/" + kind + "/" + id + ".json"
	if prefix != "" {
		key = prefix + "/" + key
	}
	return key, nil
}
