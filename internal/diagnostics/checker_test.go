package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pixel-studio/internal/domain"
)

// TestCheckerRunAllPass validates the happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	root := t.TempDir()
	inputImage := filepath.Join(root, "input.png")
	if err := os.WriteFile(inputImage, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	checker := NewCheckerForTests(
		"https://api.pixelforge.dev",
		func(string) (string, error) { return "sk-test", nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		APIKeys: domain.APIKeySettings{ImageProvider: "pixelforge"},
		FilePaths: domain.FilePathSettings{
			InputImage: inputImage,
			OutputDir:  filepath.Join(root, "output"),
		},
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
}

// TestCheckerRunMissingKeyAndPaths validates failure reporting.
func TestCheckerRunMissingKeyAndPaths(t *testing.T) {
	checker := NewCheckerForTests(
		"not a url",
		func(string) (string, error) { return "", nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		APIKeys:   domain.APIKeySettings{ImageProvider: "pixelforge"},
		FilePaths: domain.FilePathSettings{OutputDir: ""},
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}

	byID := map[string]domain.DiagnosticItem{}
	for _, item := range report.Items {
		byID[item.ID] = item
	}
	if byID["api_key"].Status != domain.DiagnosticStatusFail {
		t.Fatalf("api_key = %+v, want fail", byID["api_key"])
	}
	if byID["api_base_url"].Status != domain.DiagnosticStatusFail {
		t.Fatalf("api_base_url = %+v, want fail", byID["api_base_url"])
	}
	if byID["output_dir"].Status != domain.DiagnosticStatusFail {
		t.Fatalf("output_dir = %+v, want fail", byID["output_dir"])
	}
}

// TestCheckerMissingInputImageIsWarning checks the generation-only case.
func TestCheckerMissingInputImageIsWarning(t *testing.T) {
	checker := NewCheckerForTests(
		"https://api.pixelforge.dev",
		func(string) (string, error) { return "sk-test", nil },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		APIKeys:   domain.APIKeySettings{ImageProvider: "pixelforge"},
		FilePaths: domain.FilePathSettings{OutputDir: t.TempDir()},
	})

	if report.HasFailures {
		t.Fatalf("warning must not count as failure: %+v", report.Items)
	}
	var input domain.DiagnosticItem
	for _, item := range report.Items {
		if item.ID == "input_image" {
			input = item
		}
	}
	if input.Status != domain.DiagnosticStatusWarn {
		t.Fatalf("input_image = %+v, want warn", input)
	}
}

// TestCheckerKeyLookupError checks resolver failures surface as failures.
func TestCheckerKeyLookupError(t *testing.T) {
	checker := NewCheckerForTests(
		"https://api.pixelforge.dev",
		func(string) (string, error) { return "", errors.New("token file unreadable") },
		os.Stat,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	report := checker.Run(domain.Settings{
		APIKeys:   domain.APIKeySettings{ImageProvider: "pixelforge"},
		FilePaths: domain.FilePathSettings{OutputDir: t.TempDir()},
	})

	if !report.HasFailures {
		t.Fatal("expected key lookup failure")
	}
}
