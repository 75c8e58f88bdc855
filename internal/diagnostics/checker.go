// Package diagnostics runs startup checks for the generation dashboard.
package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"pixel-studio/internal/domain"
)

// Checker validates API credentials and required filesystem paths.
type Checker struct {
	apiBaseURL string
	keyLookup  func(provider string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies and the given
// API key resolver.
func NewChecker(apiBaseURL string, keyLookup func(provider string) (string, error)) *Checker {
	return &Checker{
		apiBaseURL: apiBaseURL,
		keyLookup:  keyLookup,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkAPIKey(settings.APIKeys.ImageProvider),
		c.checkBaseURL(),
		c.checkOutputDir(settings.FilePaths.OutputDir),
		c.checkInputImage(settings.FilePaths.InputImage),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkAPIKey verifies a key is stored for the configured provider.
func (c *Checker) checkAPIKey(provider string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_key",
		Name: "API key",
	}

	name := strings.TrimSpace(provider)
	if name == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No image provider is configured."
		item.Hint = "Select a provider in the API keys section of settings."
		return item
	}

	key, err := c.keyLookup(name)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot read the stored key for %s.", name)
		item.Hint = "Re-enter the API key in settings."
		return item
	}
	if key == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("No API key stored for %s.", name)
		item.Hint = "Add the provider key in settings before running jobs."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Key configured for %s.", name)
	return item
}

// checkBaseURL verifies the API endpoint is a well-formed absolute URL.
func (c *Checker) checkBaseURL() domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_base_url",
		Name: "API endpoint",
	}

	parsed, err := url.Parse(c.apiBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("API endpoint is not a valid URL: %s", c.apiBaseURL)
		item.Hint = "Check the PIXELSTUDIO_API_URL override or reinstall the app."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Using %s", parsed.Redacted())
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where generated images can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Fixable = true
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for image export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkInputImage validates the optional source image used by edits.
// An unset path is a warning, not a failure: generation-only jobs never
// read a local input.
func (c *Checker) checkInputImage(inputImage string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "input_image",
		Name: "Input image",
	}

	path := strings.TrimSpace(inputImage)
	if path == "" {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = "No input image selected."
		item.Hint = "Pick a source image before running edit-only jobs."
		return item
	}

	info, err := c.stat(path)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Input image does not exist: %s", path)
		} else {
			item.Message = fmt.Sprintf("Cannot access input image: %s", path)
		}
		item.Hint = "Re-select the source image in settings."
		return item
	}
	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Input image path is a directory: %s", path)
		item.Hint = "Pick a file, not a folder."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Input image found: %s", path)
	return item
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	apiBaseURL string,
	keyLookup func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		apiBaseURL: apiBaseURL,
		keyLookup:  keyLookup,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// IsNotExist reports whether an error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
