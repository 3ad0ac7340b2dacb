package mods_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/JaimeStill/mod-depot/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func upload(title, name, body string) mods.UploadCommand {
	return mods.UploadCommand{
		Title:        title,
		Author:       "tester",
		Category:     "maps",
		OriginalName: name,
		Body:         strings.NewReader(body),
	}
}

func blobCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read blob dir: %v", err)
	}
	return len(entries)
}

func TestSystem_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.sys.Create(ctx, upload("Canyon", "Canyon.ZIP", "archive-bytes"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if m.FileSize != int64(len("archive-bytes")) {
		t.Errorf("FileSize = %d, want %d", m.FileSize, len("archive-bytes"))
	}
	if !strings.HasSuffix(m.FileName, ".zip") {
		t.Errorf("FileName = %q, want .zip suffix", m.FileName)
	}

	data, err := os.ReadFile(filepath.Join(f.blobDir, m.FileName))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "archive-bytes" {
		t.Errorf("stored content = %q", data)
	}

	if got := testutil.ToFloat64(f.metrics.Mods); got != 1 {
		t.Errorf("mods gauge = %v, want 1", got)
	}
}

func TestSystem_Create_InvalidMetadataStoresNothing(t *testing.T) {
	f := newFixture(t)

	cmd := upload("", "x.zip", "data")
	if _, err := f.sys.Create(context.Background(), cmd); !errors.Is(err, mods.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}

	if n := blobCount(t, f.blobDir); n != 0 {
		t.Errorf("blob dir has %d entries, want 0", n)
	}
}

func TestSystem_Create_MissingBody(t *testing.T) {
	f := newFixture(t)

	cmd := upload("t", "x.zip", "")
	cmd.Body = nil
	if _, err := f.sys.Create(context.Background(), cmd); !errors.Is(err, mods.ErrInvalidFile) {
		t.Errorf("Create() error = %v, want ErrInvalidFile", err)
	}
}

type failingRepo struct {
	mods.Repository
}

func (failingRepo) Create(context.Context, mods.CreateCommand) (*mods.Mod, error) {
	return nil, errors.New("disk full")
}

// takenStorage reports the first taken keys as existing.
type takenStorage struct {
	storage.System
	taken   int
	checked []string
}

func (s *takenStorage) Validate(ctx context.Context, key string) (bool, error) {
	s.checked = append(s.checked, key)
	if len(s.checked) <= s.taken {
		return true, nil
	}
	return s.System.Validate(ctx, key)
}

func TestSystem_Create_SkipsTakenFileName(t *testing.T) {
	f := newFixture(t)
	blobs := &takenStorage{System: f.storage, taken: 1}
	sys := mods.New(f.repo, blobs, mods.NewMetrics(prometheus.NewRegistry()), testLogger())

	m, err := sys.Create(context.Background(), upload("t", "x.zip", "data"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(blobs.checked) != 2 {
		t.Fatalf("checked %d names, want 2", len(blobs.checked))
	}
	if m.FileName == blobs.checked[0] || m.FileName != blobs.checked[1] {
		t.Errorf("FileName = %s, checked %v", m.FileName, blobs.checked)
	}
}

func TestSystem_Create_NoFreeFileName(t *testing.T) {
	f := newFixture(t)
	blobs := &takenStorage{System: f.storage, taken: 100}
	sys := mods.New(f.repo, blobs, mods.NewMetrics(prometheus.NewRegistry()), testLogger())

	if _, err := sys.Create(context.Background(), upload("t", "x.zip", "data")); !errors.Is(err, mods.ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}
	if n := blobCount(t, f.blobDir); n != 0 {
		t.Errorf("blob dir has %d entries, want 0", n)
	}
}

func TestSystem_Create_RemovesBlobWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	sys := mods.New(failingRepo{f.repo}, f.storage, mods.NewMetrics(prometheus.NewRegistry()), testLogger())

	if _, err := sys.Create(context.Background(), upload("t", "x.zip", "data")); err == nil {
		t.Fatal("Create() expected error")
	}

	if n := blobCount(t, f.blobDir); n != 0 {
		t.Errorf("blob dir has %d entries, want 0", n)
	}
}

func TestSystem_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, _ := f.sys.Create(ctx, upload("t", "x.zip", "data"))

	if err := f.sys.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(f.blobDir, m.FileName)); !os.IsNotExist(err) {
		t.Errorf("stored file still present: %v", err)
	}
	if _, err := f.sys.Find(ctx, m.ID); !errors.Is(err, mods.ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
	if err := f.sys.Delete(ctx, m.ID); !errors.Is(err, mods.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSystem_Delete_MissingBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, _ := f.sys.Create(ctx, upload("t", "x.zip", "data"))
	os.Remove(filepath.Join(f.blobDir, m.FileName))

	if err := f.sys.Delete(ctx, m.ID); err != nil {
		t.Errorf("Delete() error = %v, want nil", err)
	}
}

func TestSystem_Download(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, _ := f.sys.Create(ctx, upload("t", "x.zip", "payload"))

	got, rc, err := f.sys.Download(ctx, m.ID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()

	if string(data) != "payload" || got.ID != m.ID {
		t.Errorf("Download() = %q, %s", data, got.ID)
	}

	after, _ := f.sys.Find(ctx, m.ID)
	if after.DownloadCount != 1 {
		t.Errorf("DownloadCount = %d, want 1", after.DownloadCount)
	}
	if got := testutil.ToFloat64(f.metrics.Downloads); got != 1 {
		t.Errorf("downloads counter = %v, want 1", got)
	}
}

func TestSystem_RecordDownload_UnknownIDNotCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, _ := f.sys.Create(ctx, upload("t", "x.zip", "payload"))

	if err := f.sys.RecordDownload(ctx, "missing"); err != nil {
		t.Fatalf("RecordDownload(missing) error = %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.Downloads); got != 0 {
		t.Errorf("downloads counter after unknown id = %v, want 0", got)
	}

	if err := f.sys.RecordDownload(ctx, m.ID); err != nil {
		t.Fatalf("RecordDownload() error = %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.Downloads); got != 1 {
		t.Errorf("downloads counter = %v, want 1", got)
	}
}

func TestSystem_Download_FileMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, _ := f.sys.Create(ctx, upload("t", "x.zip", "payload"))
	os.Remove(filepath.Join(f.blobDir, m.FileName))

	if _, _, err := f.sys.Download(ctx, m.ID); !errors.Is(err, mods.ErrFileMissing) {
		t.Errorf("Download() error = %v, want ErrFileMissing", err)
	}
}

func TestSystem_Categories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, c := range []string{"maps", "maps", "vehicles", "trailers"} {
		cmd := upload("t", "x.zip", "d")
		cmd.Category = c
		if _, err := f.sys.Create(ctx, cmd); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	counts, err := f.sys.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}

	got := map[string]int{}
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	want := map[string]int{"maps": 2, "vehicles": 1, "trailers": 1}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("count[%s] = %d, want %d", k, got[k], v)
		}
	}
	if counts[len(counts)-1].Category != "trailers" {
		t.Errorf("last category = %q, want trailers", counts[len(counts)-1].Category)
	}
}
