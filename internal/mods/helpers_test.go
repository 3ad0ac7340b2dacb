package mods_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/JaimeStill/mod-depot/pkg/docstore"
	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/JaimeStill/mod-depot/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

type fixture struct {
	repo     mods.Repository
	storage  storage.System
	sys      mods.System
	dataFile string
	blobDir  string
	metrics  *mods.Metrics
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	dataFile := filepath.Join(dir, "data", "mods.json")
	blobDir := filepath.Join(dir, "uploads")

	lc := lifecycle.New()
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	store, err := docstore.New[mods.Mod](dataFile, nil, testLogger())
	if err != nil {
		t.Fatalf("docstore.New() failed: %v", err)
	}
	if err := store.Start(lc); err != nil {
		t.Fatalf("docstore Start() failed: %v", err)
	}

	blobs, err := storage.NewFilesystem(blobDir, "/uploads", testLogger())
	if err != nil {
		t.Fatalf("storage.NewFilesystem() failed: %v", err)
	}
	if err := blobs.Start(lc); err != nil {
		t.Fatalf("storage Start() failed: %v", err)
	}

	metrics := mods.NewMetrics(prometheus.NewRegistry())
	repo := mods.NewJSONRepository(store, testLogger())
	sys := mods.New(repo, blobs, metrics, testLogger())

	return &fixture{
		repo:     repo,
		storage:  blobs,
		sys:      sys,
		dataFile: dataFile,
		blobDir:  blobDir,
		metrics:  metrics,
	}
}

func strPtr(s string) *string { return &s }

func validCreate(title string) mods.CreateCommand {
	return mods.CreateCommand{
		Title:    title,
		Author:   "tester",
		Category: "vehicles",
		FileName: title + ".zip",
		FileSize: 42,
	}
}
