package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// APIKeyStore keeps provider API keys in per-provider token files, outside
// the JSON settings object so settings snapshots never leak credentials.
type APIKeyStore struct {
	dir string
}

// NewAPIKeyStore creates a key store rooted at the given directory.
func NewAPIKeyStore(dir string) *APIKeyStore {
	return &APIKeyStore{dir: dir}
}

// tokenPath maps a provider name to its token file.
func (s *APIKeyStore) tokenPath(provider string) (string, error) {
	name := strings.TrimSpace(strings.ToLower(provider))
	if name == "" {
		return "", fmt.Errorf("provider name is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid provider name: %s", provider)
	}
	return filepath.Join(s.dir, name+".token"), nil
}

// Set writes the key for a provider with user-only permissions.
// An empty key removes the stored token.
func (s *APIKeyStore) Set(provider, key string) error {
	path, err := s.tokenPath(provider)
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(trimmed+"\n"), 0o600)
}

// Get resolves a provider key by priority: token file first, then the
// PIXELSTUDIO_API_KEY environment variable. Empty string means not set.
func (s *APIKeyStore) Get(provider string) (string, error) {
	path, err := s.tokenPath(provider)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	return strings.TrimSpace(os.Getenv("PIXELSTUDIO_API_KEY")), nil
}

// MaskKey returns a display-safe form of a key for the settings UI.
func MaskKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return strings.Repeat("*", len(trimmed))
	}
	return trimmed[:4] + strings.Repeat("*", len(trimmed)-8) + trimmed[len(trimmed)-4:]
}
