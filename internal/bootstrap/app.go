package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"pixel-studio/internal/config"
	"pixel-studio/internal/diagnostics"
	"pixel-studio/internal/domain"
	"pixel-studio/internal/editor"
	"pixel-studio/internal/fileselect"
	"pixel-studio/internal/generate"
	"pixel-studio/internal/jobconfig"
	"pixel-studio/internal/jobs"
	"pixel-studio/internal/logging"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// DefaultAPIBaseURL is the production image API endpoint, overridable
// through PIXELSTUDIO_API_URL.
const DefaultAPIBaseURL = "https://api.pixelforge.dev"

var imageAccept = ".png, .jpg, .jpeg, .webp"

// App wires configuration, job configurations, executions, and the UI
// runtime callbacks behind Wails bindings.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Keys        *config.APIKeyStore
	Configs     jobconfig.Store
	Jobs        *jobs.Manager
	Pipeline    pipelineRunner
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	log         *logging.Logger
	apiBaseURL  string

	mu         sync.Mutex
	cancels    map[string]context.CancelFunc
	session    *editor.Session
	events     *jobs.EventBus
	runtimeCtx context.Context
}

// pipelineRunner isolates the generation pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req generate.Request) (generate.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	appDir := config.AppDir()
	store := config.NewJSONStore(filepath.Join(appDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	keys := config.NewAPIKeyStore(filepath.Join(appDir, "keys"))
	baseURL := apiBaseURL()
	checker := diagnostics.NewChecker(baseURL, keys.Get)

	return &App{
		Settings:    settings,
		Store:       store,
		Keys:        keys,
		Configs:     jobconfig.NewDirStore(filepath.Join(appDir, "configs")),
		Jobs:        jobs.NewManager(),
		Diagnostics: checker.Run(settings),
		assets:      assets,
		checker:     checker,
		log:         logging.NewGUILogger(),
		apiBaseURL:  baseURL,
		cancels:     map[string]context.CancelFunc{},
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Pixel Studio",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events and dialogs.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns startup checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	report := a.checker.Run(settings)
	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = report
	a.mu.Unlock()
	return report, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings merges a deep-partial patch over the persisted settings,
// normalizes the result, and refreshes diagnostics.
func (a *App) SaveSettings(patch domain.SettingsPatch) (domain.Settings, error) {
	current, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	merged, err := domain.ApplyPatch(current, patch)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("apply settings patch: %w", err)
	}

	normalized := normalizeSettings(merged)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	report := a.checker.Run(normalized)
	a.mu.Lock()
	a.Settings = normalized
	a.Diagnostics = report
	a.mu.Unlock()

	return normalized, nil
}

// APIKeyStatus reports whether a provider key is configured. The key itself
// never crosses the binding boundary unmasked.
type APIKeyStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	MaskedKey  string `json:"maskedKey,omitempty"`
}

// SetAPIKey stores or removes the key for one provider.
func (a *App) SetAPIKey(provider, key string) (APIKeyStatus, error) {
	if err := a.Keys.Set(provider, key); err != nil {
		return APIKeyStatus{}, err
	}

	a.mu.Lock()
	a.Diagnostics = a.checker.Run(a.Settings)
	a.mu.Unlock()

	return a.GetAPIKeyStatus(provider)
}

// GetAPIKeyStatus returns the masked key state for one provider.
func (a *App) GetAPIKeyStatus(provider string) (APIKeyStatus, error) {
	key, err := a.Keys.Get(provider)
	if err != nil {
		return APIKeyStatus{}, err
	}

	status := APIKeyStatus{Provider: provider, Configured: key != ""}
	if status.Configured {
		status.MaskedKey = config.MaskKey(key)
	}
	return status, nil
}

// DialogRequest describes one native file dialog invocation from the UI.
type DialogRequest struct {
	Title         string   `json:"title"`
	SelectionType string   `json:"selectionType"`
	Accept        string   `json:"accept"`
	Extensions    []string `json:"extensions"`
}

// DialogResult reports the dialog outcome with an explicit success flag.
// Cancellation is not an error.
type DialogResult struct {
	Success   bool   `json:"success"`
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled"`
	Error     string `json:"error,omitempty"`
}

// OpenFileDialog shows a native file or directory picker.
func (a *App) OpenFileDialog(req DialogRequest) DialogResult {
	ctx, err := a.runtimeContext()
	if err != nil {
		return DialogResult{Error: err.Error()}
	}

	selection := fileselect.SelectFile
	if req.SelectionType == string(fileselect.SelectDirectory) {
		selection = fileselect.SelectDirectory
	}

	result, err := (wailsDialog{}).Open(ctx, fileselect.OpenRequest{
		Title:      req.Title,
		Type:       selection,
		Extensions: fileselect.AllowedExtensions(req.Accept, req.Extensions),
	})
	if err != nil {
		return DialogResult{Error: err.Error()}
	}
	return DialogResult{
		Success:   result.Success,
		Path:      result.Path,
		Cancelled: result.Cancelled,
		Error:     result.Error,
	}
}

// SelectInputImage opens an image picker, validates the choice, and
// persists it into settings on success.
func (a *App) SelectInputImage() DialogResult {
	ctx, err := a.runtimeContext()
	if err != nil {
		return DialogResult{Error: err.Error()}
	}

	var chosen string
	selector := fileselect.New(fileselect.Options{
		Title:    "Select input image",
		Type:     fileselect.SelectFile,
		Accept:   imageAccept,
		OnChange: func(path string) { chosen = path },
		Validate: validateImagePath,
	})
	if err := selector.Open(ctx, wailsDialog{}); err != nil {
		return DialogResult{Error: err.Error()}
	}
	if chosen == "" {
		return DialogResult{Success: true, Cancelled: true}
	}
	if selector.State() == fileselect.StateInvalid {
		return DialogResult{Error: "selected file is not a readable image"}
	}

	if _, err := a.SaveSettings(domain.SettingsPatch{}.With(domain.SectionFilePaths, "inputImage", chosen)); err != nil {
		return DialogResult{Error: err.Error()}
	}
	return DialogResult{Success: true, Path: chosen}
}

// SelectOutputDirectory opens a directory picker and persists the choice.
func (a *App) SelectOutputDirectory() DialogResult {
	ctx, err := a.runtimeContext()
	if err != nil {
		return DialogResult{Error: err.Error()}
	}

	var chosen string
	selector := fileselect.New(fileselect.Options{
		Title:    "Select output directory",
		Type:     fileselect.SelectDirectory,
		OnChange: func(path string) { chosen = path },
	})
	if err := selector.Open(ctx, wailsDialog{}); err != nil {
		return DialogResult{Error: err.Error()}
	}
	if chosen == "" {
		return DialogResult{Success: true, Cancelled: true}
	}

	if _, err := a.SaveSettings(domain.SettingsPatch{}.With(domain.SectionFilePaths, "outputDir", chosen)); err != nil {
		return DialogResult{Error: err.Error()}
	}
	return DialogResult{Success: true, Path: chosen}
}

// OpenOutputFolder opens the given path (or configured output dir) in the
// platform file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.FilePaths.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// wailsDialog adapts the Wails runtime dialogs to the fileselect boundary.
type wailsDialog struct{}

// Open shows the native dialog. An empty path from the runtime means the
// user dismissed the dialog.
func (wailsDialog) Open(ctx context.Context, req fileselect.OpenRequest) (fileselect.OpenResult, error) {
	var path string
	var err error
	if req.Type == fileselect.SelectDirectory {
		path, err = wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{Title: req.Title})
	} else {
		path, err = wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
			Title:   req.Title,
			Filters: dialogFilters(req.Extensions),
		})
	}
	if err != nil {
		return fileselect.OpenResult{Error: err.Error()}, nil
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return fileselect.OpenResult{Success: true, Cancelled: true}, nil
	}
	return fileselect.OpenResult{Success: true, Path: path}, nil
}

// dialogFilters converts an extension allow-list to Wails filter patterns.
func dialogFilters(extensions []string) []wailsruntime.FileFilter {
	if len(extensions) == 0 {
		return nil
	}

	patterns := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		patterns = append(patterns, "*"+strings.TrimPrefix(ext, "*"))
	}
	return []wailsruntime.FileFilter{
		{DisplayName: "Supported files", Pattern: strings.Join(patterns, ";")},
		{DisplayName: "All files", Pattern: "*"},
	}
}

// validateImagePath accepts existing regular files only.
func validateImagePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// emitRuntimeEvent pushes one published event to UI subscribers.
func emitRuntimeEvent(ctx context.Context, event jobs.Event) {
	wailsruntime.EventsEmit(ctx, "job:event", event)
}

// runtimeContext returns the Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// bindingContext prefers the runtime context and falls back to Background
// before startup completes.
func (a *App) bindingContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx != nil {
		return a.runtimeCtx
	}
	return context.Background()
}

// normalizeSettings trims user inputs and applies defaults. Advanced
// parameters never survive with the section disabled.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.FilePaths.InputImage = strings.TrimSpace(settings.FilePaths.InputImage)
	settings.FilePaths.OutputDir = strings.TrimSpace(settings.FilePaths.OutputDir)
	settings.Parameters.Prompt = strings.TrimSpace(settings.Parameters.Prompt)
	settings.Processing.Mode = strings.TrimSpace(settings.Processing.Mode)
	if settings.Processing.Mode == "" {
		settings.Processing.Mode = "relax"
	}
	settings.Processing.OutputFormat = strings.TrimSpace(strings.ToLower(settings.Processing.OutputFormat))
	if settings.Processing.OutputFormat == "" {
		settings.Processing.OutputFormat = "png"
	}
	if settings.Parameters.AspectRatio == "" {
		settings.Parameters.AspectRatio = "1:1"
	}
	if !settings.Advanced.Enabled {
		settings.Advanced.Parameters = map[string]any{}
	}
	return settings
}

// apiBaseURL resolves the image API endpoint with an env override.
func apiBaseURL() string {
	if url := strings.TrimSpace(os.Getenv("PIXELSTUDIO_API_URL")); url != "" {
		return url
	}
	return DefaultAPIBaseURL
}

// openInFileManager launches the platform file explorer for the path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
