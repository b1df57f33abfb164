package benchstore

import (
	"context"
	"errors"
	"testing"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

func newTestMetrics(runID string) *model.Metrics {
	m := model.NewMetrics(runID)
	m.RecordRequest(true, 12.5, 200, nil)
	m.RecordRequest(false, 30.0, 500, errors.New("boom"))
	return m
}

func TestJSONFileStoreSaveAndGet(t *testing.T) {
	store, err := NewJSONFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONFileStore: %v", err)
	}

	ctx := context.Background()
	m := newTestMetrics("run-1")

	if err := store.SaveRun(ctx, m); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.TotalRequests != 2 {
		t.Errorf("expected 2 total requests, got %d", got.TotalRequests)
	}
	if got.SuccessRequests != 1 || got.FailedRequests != 1 {
		t.Errorf("unexpected success/failure split: %+v", got)
	}
}

func TestJSONFileStoreGetRunNotFound(t *testing.T) {
	store, err := NewJSONFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONFileStore: %v", err)
	}

	_, err = store.GetRun(context.Background(), "missing")
	var nfErr *domain.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestJSONFileStoreListRuns(t *testing.T) {
	store, err := NewJSONFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONFileStore: %v", err)
	}

	ctx := context.Background()
	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.SaveRun(ctx, newTestMetrics(id)); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected limit to cap results at 2, got %d", len(runs))
	}
}

func TestJSONFileStoreDeleteRun(t *testing.T) {
	store, err := NewJSONFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONFileStore: %v", err)
	}

	ctx := context.Background()
	if err := store.SaveRun(ctx, newTestMetrics("run-del")); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if err := store.DeleteRun(ctx, "run-del"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}

	_, err = store.GetRun(ctx, "run-del")
	var nfErr *domain.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
}
