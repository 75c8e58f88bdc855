package domain

import "time"

// JobStatus tracks each stage of a single generation job execution.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusGenerating JobStatus = "generating"
	JobStatusEnhancing  JobStatus = "enhancing"
	JobStatusExporting  JobStatus = "exporting"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// APIKeySettings names the providers whose keys are stored outside settings.
// Keys themselves live in per-provider token files, never in settings.json.
type APIKeySettings struct {
	ImageProvider   string `json:"imageProvider"`
	EnhanceProvider string `json:"enhanceProvider"`
}

// FilePathSettings contains user-selected input and output locations.
type FilePathSettings struct {
	InputImage string `json:"inputImage"`
	OutputDir  string `json:"outputDir"`
}

// ParameterSettings contains generation parameters sent with every task.
type ParameterSettings struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Stylize     int    `json:"stylize"`
	Seed        int64  `json:"seed"`
}

// ProcessingSettings selects the generation mode and post-processing steps.
type ProcessingSettings struct {
	Mode             string `json:"mode"`
	RemoveBackground bool   `json:"removeBackground"`
	Upscale          bool   `json:"upscale"`
	FaceEnhance      bool   `json:"faceEnhance"`
	OutputFormat     string `json:"outputFormat"`
}

// AISettings selects the generation model and prompt handling.
type AISettings struct {
	Model             string `json:"model"`
	PromptEnhancement bool   `json:"promptEnhancement"`
}

// AdvancedSettings carries raw provider parameters, only meaningful when
// Enabled is strictly true.
type AdvancedSettings struct {
	Enabled    bool           `json:"enabled"`
	Parameters map[string]any `json:"parameters"`
}

// Settings groups all user-editable configuration by named section.
// Unknown JSON keys are ignored on load; every recognized key has a default.
type Settings struct {
	APIKeys    APIKeySettings     `json:"apiKeys"`
	FilePaths  FilePathSettings   `json:"filePaths"`
	Parameters ParameterSettings  `json:"parameters"`
	Processing ProcessingSettings `json:"processing"`
	AI         AISettings         `json:"ai"`
	Advanced   AdvancedSettings   `json:"advanced"`
}

// JobConfiguration is a persisted settings snapshot fetched and updated by id.
type JobConfiguration struct {
	ID        string    `json:"id"`
	Settings  *Settings `json:"settings,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobExecution is one run of a configuration, read-only apart from
// configuration edits performed through the editor.
type JobExecution struct {
	ID       string    `json:"id"`
	ConfigID string    `json:"configId,omitempty"`
	Status   JobStatus `json:"status"`
}

// ConfigResult is the boundary response for configuration operations.
// Callers must check Success rather than relying on a transport error.
type ConfigResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Config  *JobConfiguration `json:"config,omitempty"`
}
