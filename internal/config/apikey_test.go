package config

import (
	"testing"
)

// TestAPIKeyStoreSetAndGet checks token file round trip.
func TestAPIKeyStoreSetAndGet(t *testing.T) {
	store := NewAPIKeyStore(t.TempDir())

	if err := store.Set("pixelforge", "  sk-test-1234  "); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get("pixelforge")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "sk-test-1234" {
		t.Fatalf("key = %q, want trimmed stored key", got)
	}
}

// TestAPIKeyStoreEmptyKeyRemovesToken checks clearing a stored key.
func TestAPIKeyStoreEmptyKeyRemovesToken(t *testing.T) {
	t.Setenv("PIXELSTUDIO_API_KEY", "")
	store := NewAPIKeyStore(t.TempDir())

	if err := store.Set("pixelforge", "sk-test"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set("pixelforge", ""); err != nil {
		t.Fatalf("clear error = %v", err)
	}

	got, err := store.Get("pixelforge")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Fatalf("key = %q, want empty after clear", got)
	}
}

// TestAPIKeyStoreEnvFallback checks environment resolution order.
func TestAPIKeyStoreEnvFallback(t *testing.T) {
	t.Setenv("PIXELSTUDIO_API_KEY", "sk-env")
	store := NewAPIKeyStore(t.TempDir())

	got, err := store.Get("pixelforge")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "sk-env" {
		t.Fatalf("key = %q, want env fallback", got)
	}

	if err := store.Set("pixelforge", "sk-file"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err = store.Get("pixelforge")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "sk-file" {
		t.Fatalf("key = %q, token file must win over env", got)
	}
}

// TestAPIKeyStoreRejectsBadProvider checks provider name validation.
func TestAPIKeyStoreRejectsBadProvider(t *testing.T) {
	store := NewAPIKeyStore(t.TempDir())

	if err := store.Set("", "sk"); err == nil {
		t.Fatal("expected error for empty provider")
	}
	if err := store.Set("../evil", "sk"); err == nil {
		t.Fatal("expected error for path-like provider")
	}
}

// TestMaskKey checks display masking behavior.
func TestMaskKey(t *testing.T) {
	if got := MaskKey(""); got != "" {
		t.Fatalf("mask empty = %q", got)
	}
	if got := MaskKey("short"); got != "*****" {
		t.Fatalf("mask short = %q", got)
	}
	if got := MaskKey("sk-abcdefgh-wxyz"); got != "sk-a********wxyz" {
		t.Fatalf("mask = %q", got)
	}
}
