package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carbonlens/emissions-tracker/constants"
	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/entity"
	"github.com/carbonlens/emissions-tracker/internal/pipeline"
	"github.com/carbonlens/emissions-tracker/internal/testutil"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{root},
		Debounce: 50 * time.Millisecond,
	}, discard())
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	target := filepath.Join(root, "drop.csv")
	if err := os.WriteFile(target, []byte("Material\nDiesel\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-paths:
		if got != target {
			t.Fatalf("emitted %q, want %q", got, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestStartWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.txt")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    50 * time.Millisecond,
	}, discard())
	if err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-paths:
		if got != existing {
			t.Fatalf("emitted %q, want %q", got, existing)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial scan")
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, discard()); err == nil {
		t.Fatal("expected error for empty roots")
	}
}

func TestSyncerIngestsDiscoveredFile(t *testing.T) {
	files := testutil.NewFakeFiles()
	records := &testutil.FakeRecords{}
	extractor := &testutil.StubExtractor{}
	materials := &testutil.FakeMaterials{Entries: []entity.MaterialEntry{
		{ID: uuid.New(), Code: "EF001", Name: "Diesel", Category: "scope_1", UnitOfMeasure: "L", EmissionFactor: 2.68},
	}}
	proc := pipeline.NewProcessor(discard(), files, materials, records,
		testutil.NewFakeSessions(), testutil.NewFakeBlobs(), extractor)
	queue := async.NewSyncQueue(proc, discard())

	dir := t.TempDir()
	txtPath := filepath.Join(dir, "receipt.txt")
	if err := os.WriteFile(txtPath, []byte("diesel 50 L"), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "table.csv")
	if err := os.WriteFile(csvPath, []byte("Material\nDiesel\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	syncer := &Syncer{
		Proc:           proc,
		Queue:          queue,
		OrganizationID: uuid.New(),
		ProjectID:      uuid.New(),
		Logger:         discard(),
	}

	paths := make(chan string, 2)
	paths <- txtPath
	paths <- csvPath
	close(paths)
	syncer.Run(context.Background(), paths)

	if len(files.Items) != 2 {
		t.Fatalf("ingested files = %d, want 2", len(files.Items))
	}
	// Only the unstructured file runs extraction; the CSV waits for a
	// mapping.
	if extractor.CallCount() != 1 {
		t.Fatalf("extractor calls = %d, want 1", extractor.CallCount())
	}
	for _, f := range files.Items {
		if f.Source != constants.SourceCloudSync {
			t.Fatalf("source = %q, want cloud_sync", f.Source)
		}
		if f.FileType == constants.FileTypeCSV && f.Status != constants.StatusNeedsReview {
			t.Fatalf("csv status = %q, want needs_review", f.Status)
		}
	}
}
