package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixel-studio/internal/config"
	"pixel-studio/internal/diagnostics"
	"pixel-studio/internal/domain"
)

// FixDiagnostic applies the remediation for one failed diagnostic item and
// returns the refreshed report.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case "output_dir":
		settings, settingsChanged, fixErr = fixOutputDir(settings)
	case "input_image":
		settings, settingsChanged, fixErr = fixInputImage(settings)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

// fixOutputDir creates the configured output directory, falling back to
// the default location when none is set.
func fixOutputDir(settings domain.Settings) (domain.Settings, bool, error) {
	changed := false
	dir := settings.FilePaths.OutputDir
	if dir == "" {
		dir = config.DefaultSettings().FilePaths.OutputDir
		if dir == "" {
			return settings, false, fmt.Errorf("no output directory to create")
		}
		settings.FilePaths.OutputDir = dir
		changed = true
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create output directory: %w", err)
	}
	return settings, changed, nil
}

// fixInputImage clears a stale input path so edit toggles stop targeting a
// file that no longer exists. A present, readable file needs no fix.
func fixInputImage(settings domain.Settings) (domain.Settings, bool, error) {
	path := settings.FilePaths.InputImage
	if path == "" {
		return settings, false, nil
	}

	if _, err := os.Stat(path); err != nil {
		if diagnostics.IsNotExist(err) {
			settings.FilePaths.InputImage = ""
			return settings, true, nil
		}
		return settings, false, fmt.Errorf("check input image %s: %w", filepath.Base(path), err)
	}
	return settings, false, nil
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}
