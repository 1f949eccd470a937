package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wardrobe/internal/upload"
	"wardrobe/internal/wardrobe"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	outcomes := []upload.Outcome{
		{
			SessionID: "a", FileName: "shirt.jpg", Origin: "file-picker", Bytes: 2048,
			Stage: upload.StageDone, ItemID: 7, Category: wardrobe.CategoryTop,
			Message: "完成!", StartedAt: base, Duration: 1500 * time.Millisecond,
		},
		{
			SessionID: "b", FileName: "camera-photo.jpg", Origin: "camera", Bytes: 4096,
			Stage: upload.StageFailed, FailedAt: upload.StageRemovingBackground,
			Message: "request failed", StartedAt: base.Add(time.Minute), Duration: 200 * time.Millisecond,
		},
	}
	for _, outcome := range outcomes {
		if err := store.Record(ctx, outcome); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.SessionID != "b" || latest.Succeeded() || latest.FailedAt != upload.StageRemovingBackground {
		t.Fatalf("unexpected latest entry %+v", latest)
	}
	if latest.ItemID != 0 || latest.Category != "" {
		t.Fatalf("failed entry should have no item, got %+v", latest)
	}
	first := entries[1]
	if !first.Succeeded() || first.ItemID != 7 || first.Category != wardrobe.CategoryTop {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if first.Duration != 1500*time.Millisecond || !first.StartedAt.Equal(base) {
		t.Fatalf("unexpected timing %v %v", first.Duration, first.StartedAt)
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), upload.Outcome{SessionID: "x", FileName: "a.png", Stage: upload.StageDone}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.List(context.Background(), 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d (%v)", len(entries), err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestStoreSatisfiesRecorder(t *testing.T) {
	var _ upload.Recorder = (*Store)(nil)
}
