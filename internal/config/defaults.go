package config

import (
	"os"
	"path/filepath"

	"pixel-studio/internal/domain"
)

// AppDirName is the per-user directory holding settings, keys, and configs.
const AppDirName = ".pixel-studio"

// AppDir resolves the application data directory under the user home.
func AppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, AppDirName)
}

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		APIKeys: domain.APIKeySettings{
			ImageProvider:   "pixelforge",
			EnhanceProvider: "pixelforge",
		},
		FilePaths: domain.FilePathSettings{
			OutputDir: filepath.Join(homeDir, "Pictures", "PixelStudio"),
		},
		Parameters: domain.ParameterSettings{
			AspectRatio: "1:1",
			Stylize:     100,
		},
		Processing: domain.ProcessingSettings{
			Mode:         "relax",
			OutputFormat: "png",
		},
		AI: domain.AISettings{
			Model: "flux-pro",
		},
		Advanced: domain.AdvancedSettings{
			Parameters: map[string]any{},
		},
	}
}
