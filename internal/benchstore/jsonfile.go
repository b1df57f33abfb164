package benchstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

// JSONFileStore writes one JSON file per run under Dir, for deployments
// without a postgres DSN configured. It favors simplicity over query
// performance: ListRuns reads every file in the directory.
type JSONFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONFileStore returns a Store rooted at dir, creating it if absent.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JSONFileStore{dir: dir}, nil
}

func (s *JSONFileStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

func (s *JSONFileStore) SaveRun(_ context.Context, metrics *model.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := metrics.GetSnapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(snap.RunID), data, 0o600)
}

func (s *JSONFileStore) GetRun(_ context.Context, runID string) (*model.Metrics, error) {
	data, err := os.ReadFile(s.path(runID))
	if os.IsNotExist(err) {
		return nil, domain.NewNotFoundError("bench_run", runID)
	}
	if err != nil {
		return nil, err
	}

	var m model.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *JSONFileStore) ListRuns(_ context.Context, limit int) ([]*model.Metrics, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if limit <= 0 {
		limit = 50
	}
	if len(names) > limit {
		names = names[:limit]
	}

	runs := make([]*model.Metrics, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var m model.Metrics
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		runs = append(runs, &m)
	}
	return runs, nil
}

func (s *JSONFileStore) DeleteRun(_ context.Context, runID string) error {
	err := os.Remove(s.path(runID))
	if os.IsNotExist(err) {
		return domain.NewNotFoundError("bench_run", runID)
	}
	return err
}
