package benchstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

// PostgresStore stores a run's final metrics as JSONB alongside a handful of
// indexed columns used for listing without round-tripping the whole blob.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-connected db (see NewDB) as a Store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveRun(ctx context.Context, metrics *model.Metrics) error {
	snap := metrics.GetSnapshot()

	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("benchstore: marshal metrics: %w", err)
	}

	successRate := 0.0
	if snap.TotalRequests > 0 {
		successRate = float64(snap.SuccessRequests) / float64(snap.TotalRequests) * 100
	}

	const query = `
		INSERT INTO bench_runs (run_id, target_rps, p95_ms, p99_ms, success_rate, metrics)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			target_rps = EXCLUDED.target_rps,
			p95_ms = EXCLUDED.p95_ms,
			p99_ms = EXCLUDED.p99_ms,
			success_rate = EXCLUDED.success_rate,
			metrics = EXCLUDED.metrics
	`

	_, err = s.db.ExecContext(ctx, query,
		snap.RunID, snap.RequestsPerSec, snap.P95LatencyMs, snap.P99LatencyMs, successRate, blob,
	)
	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Metrics, error) {
	const query = `SELECT metrics FROM bench_runs WHERE run_id = $1`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("bench_run", runID)
	}
	if err != nil {
		return nil, err
	}

	var m model.Metrics
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("benchstore: unmarshal metrics: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*model.Metrics, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `SELECT metrics FROM bench_runs ORDER BY completed_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.Metrics
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var m model.Metrics
		if err := json.Unmarshal(blob, &m); err != nil {
			return nil, fmt.Errorf("benchstore: unmarshal metrics: %w", err)
		}
		runs = append(runs, &m)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) DeleteRun(ctx context.Context, runID string) error {
	const query = `DELETE FROM bench_runs WHERE run_id = $1`
	res, err := s.db.ExecContext(ctx, query, runID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewNotFoundError("bench_run", runID)
	}
	return nil
}
