package benchstore

import (
	"context"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

// Store persists the final model.Metrics of completed benchmark runs.
type Store interface {
	SaveRun(ctx context.Context, metrics *model.Metrics) error
	GetRun(ctx context.Context, runID string) (*model.Metrics, error)
	ListRuns(ctx context.Context, limit int) ([]*model.Metrics, error)
	DeleteRun(ctx context.Context, runID string) error
}
