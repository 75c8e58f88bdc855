// Package jobconfig persists per-job configuration snapshots by id.
package jobconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pixel-studio/internal/domain"
)

// ErrNotFound is returned when a configuration id has no stored snapshot.
var ErrNotFound = errors.New("configuration not found")

// Store defines persistence operations for job configurations.
type Store interface {
	Create(settings domain.Settings) (domain.JobConfiguration, error)
	Get(id string) (domain.JobConfiguration, error)
	Update(id string, patch domain.SettingsPatch) (domain.JobConfiguration, error)
	List() ([]domain.JobConfiguration, error)
}

// DirStore keeps one JSON file per configuration id in a directory.
type DirStore struct {
	dir string
	now func() time.Time
}

// NewDirStore creates a directory-backed configuration store.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir, now: time.Now}
}

// filePath maps a configuration id to its JSON file.
func (s *DirStore) filePath(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("configuration id is required")
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("invalid configuration id: %s", id)
	}
	return filepath.Join(s.dir, trimmed+".json"), nil
}

// Create stores a new configuration snapshot with a generated id.
func (s *DirStore) Create(settings domain.Settings) (domain.JobConfiguration, error) {
	now := s.now().UTC()
	cfg := domain.JobConfiguration{
		ID:        uuid.NewString(),
		Settings:  &settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.write(cfg); err != nil {
		return domain.JobConfiguration{}, err
	}
	return cfg, nil
}

// Get fetches one configuration by id.
func (s *DirStore) Get(id string) (domain.JobConfiguration, error) {
	path, err := s.filePath(id)
	if err != nil {
		return domain.JobConfiguration{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.JobConfiguration{}, ErrNotFound
		}
		return domain.JobConfiguration{}, err
	}

	var cfg domain.JobConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.JobConfiguration{}, err
	}
	return cfg, nil
}

// Update applies a settings patch to a stored configuration in place and
// returns the updated snapshot. The patch merges section by section.
func (s *DirStore) Update(id string, patch domain.SettingsPatch) (domain.JobConfiguration, error) {
	cfg, err := s.Get(id)
	if err != nil {
		return domain.JobConfiguration{}, err
	}

	base := domain.Settings{}
	if cfg.Settings != nil {
		base = *cfg.Settings
	}
	merged, err := domain.ApplyPatch(base, patch)
	if err != nil {
		return domain.JobConfiguration{}, fmt.Errorf("apply settings patch: %w", err)
	}

	cfg.Settings = &merged
	cfg.UpdatedAt = s.now().UTC()
	if err := s.write(cfg); err != nil {
		return domain.JobConfiguration{}, err
	}
	return cfg, nil
}

// List returns all stored configurations ordered by creation time.
func (s *DirStore) List() ([]domain.JobConfiguration, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []domain.JobConfiguration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		cfg, err := s.Get(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, cfg)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// write persists one snapshot as indented JSON.
func (s *DirStore) write(cfg domain.JobConfiguration) error {
	path, err := s.filePath(cfg.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
