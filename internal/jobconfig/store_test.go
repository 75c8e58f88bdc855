package jobconfig

import (
	"errors"
	"testing"
	"time"

	"pixel-studio/internal/domain"
)

// TestDirStoreCreateAndGet checks snapshot round trip.
func TestDirStoreCreateAndGet(t *testing.T) {
	store := NewDirStore(t.TempDir())
	settings := domain.Settings{
		Parameters: domain.ParameterSettings{Prompt: "a lighthouse"},
		Processing: domain.ProcessingSettings{Mode: "fast"},
	}

	created, err := store.Create(settings)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Settings == nil || got.Settings.Parameters.Prompt != "a lighthouse" {
		t.Fatalf("settings = %+v, want stored prompt", got.Settings)
	}
}

// TestDirStoreGetMissing checks the not-found sentinel.
func TestDirStoreGetMissing(t *testing.T) {
	store := NewDirStore(t.TempDir())
	if _, err := store.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrNotFound)
	}
}

// TestDirStoreUpdateMergesPatch checks in-place section merge.
func TestDirStoreUpdateMergesPatch(t *testing.T) {
	store := NewDirStore(t.TempDir())
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	created, err := store.Create(domain.Settings{
		Parameters: domain.ParameterSettings{Prompt: "a fox", AspectRatio: "1:1"},
		Processing: domain.ProcessingSettings{Mode: "relax"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	patch := domain.SettingsPatch{
		domain.SectionProcessing: {"mode": "turbo", "upscale": true},
	}
	updated, err := store.Update(created.ID, patch)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Settings.Processing.Mode != "turbo" || !updated.Settings.Processing.Upscale {
		t.Fatalf("processing = %+v, want patched", updated.Settings.Processing)
	}
	if updated.Settings.Parameters.Prompt != "a fox" {
		t.Fatalf("prompt = %q, untouched section changed", updated.Settings.Parameters.Prompt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("UpdatedAt not refreshed")
	}
}

// TestDirStoreUpdateMissing checks update of an unknown id.
func TestDirStoreUpdateMissing(t *testing.T) {
	store := NewDirStore(t.TempDir())
	if _, err := store.Update("ghost", domain.SettingsPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrNotFound)
	}
}

// TestDirStoreList checks creation-ordered listing.
func TestDirStoreList(t *testing.T) {
	store := NewDirStore(t.TempDir())
	first, err := store.Create(domain.Settings{Parameters: domain.ParameterSettings{Prompt: "one"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(domain.Settings{Parameters: domain.ParameterSettings{Prompt: "two"}}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != first.ID && list[0].Settings.Parameters.Prompt != "one" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

// TestDirStoreRejectsBadID checks id validation.
func TestDirStoreRejectsBadID(t *testing.T) {
	store := NewDirStore(t.TempDir())
	if _, err := store.Get("../escape"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want validation failure", err)
	}
}

var _ Store = (*DirStore)(nil)
