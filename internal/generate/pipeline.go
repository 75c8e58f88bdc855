// Package generate orchestrates one image job: generation, optional
// enhancement edits, and export of the final artifact.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pixel-studio/internal/domain"
	"pixel-studio/internal/genapi"
)

// Request contains the job settings and execution callbacks for one run.
type Request struct {
	Settings domain.Settings
	OnStage  func(stage string)
	OnCall   func(call CallLog)
}

// Result contains the exported artifact and the API calls that produced it.
type Result struct {
	TaskID    string
	ImagePath string
	ImageURL  string
	Logs      []CallLog
}

// CallLog captures one image API operation.
type CallLog struct {
	Operation string `json:"operation"`
	TaskID    string `json:"taskId,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// PipelineError is a stage-aware error with optional call context.
type PipelineError struct {
	Stage   string  `json:"stage"`
	Message string  `json:"message"`
	CallLog CallLog `json:"callLog"`
	Err     error   `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.CallLog.Operation == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}

	return fmt.Sprintf("%s: %s (op=%s task=%s)", e.Stage, e.Message, e.CallLog.Operation, e.CallLog.TaskID)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// apiCaller abstracts the image API client for testability.
type apiCaller interface {
	Imagine(ctx context.Context, req genapi.GenerateRequest) (genapi.Task, error)
	WaitForTask(ctx context.Context, id string) (genapi.Task, error)
	RemoveBackground(ctx context.Context, imageURL string) (genapi.Task, error)
	Upscale(ctx context.Context, imageURL string) (genapi.Task, error)
	EnhanceFaces(ctx context.Context, imageURL string) (genapi.Task, error)
	Download(ctx context.Context, url, destDir, fileName string) (string, error)
}

// Pipeline runs generation jobs against an injected API client.
type Pipeline struct {
	api apiCaller
	now func() time.Time
}

// NewPipeline constructs the production pipeline.
func NewPipeline(api apiCaller) *Pipeline {
	return &Pipeline{api: api, now: time.Now}
}

// Run performs generation, enhancement edits, and artifact export.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Settings.Parameters.Prompt)
	if prompt == "" {
		return Result{}, &PipelineError{
			Stage:   "generating",
			Message: "prompt is required",
		}
	}
	outputDir := strings.TrimSpace(req.Settings.FilePaths.OutputDir)
	if outputDir == "" {
		return Result{}, &PipelineError{
			Stage:   "exporting",
			Message: "output directory is required",
		}
	}

	emitStage(req.OnStage, "generating")
	task, err := p.api.Imagine(ctx, buildGenerateRequest(req.Settings))
	log := CallLog{Operation: "imagine", TaskID: task.ID, Detail: "submitted"}
	emitCall(req.OnCall, log)
	logs := []CallLog{log}
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   "generating",
			Message: "generation submit failed",
			CallLog: log,
			Err:     err,
		}
	}

	task, err = p.api.WaitForTask(ctx, task.ID)
	waitLog := CallLog{Operation: "wait", TaskID: task.ID, Detail: task.Status}
	emitCall(req.OnCall, waitLog)
	logs = append(logs, waitLog)
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   "generating",
			Message: "generation task failed",
			CallLog: waitLog,
			Err:     err,
		}
	}
	if task.ImageURL == "" {
		return Result{}, &PipelineError{
			Stage:   "generating",
			Message: "task succeeded without an image",
			CallLog: waitLog,
		}
	}

	imageURL := task.ImageURL
	taskID := task.ID

	for _, edit := range enabledEdits(req.Settings.Processing) {
		emitStage(req.OnStage, "enhancing")

		editTask, err := edit.submit(ctx, p.api, imageURL)
		editLog := CallLog{Operation: edit.name, TaskID: editTask.ID, Detail: "submitted"}
		emitCall(req.OnCall, editLog)
		logs = append(logs, editLog)
		if err == nil {
			editTask, err = p.api.WaitForTask(ctx, editTask.ID)
		}
		if err != nil {
			return Result{}, &PipelineError{
				Stage:   "enhancing",
				Message: edit.name + " failed",
				CallLog: editLog,
				Err:     err,
			}
		}
		if editTask.ImageURL != "" {
			imageURL = editTask.ImageURL
			taskID = editTask.ID
		}
	}

	emitStage(req.OnStage, "exporting")
	fileName := artifactFileName(taskID, req.Settings.Processing.OutputFormat, p.now())
	imagePath, err := p.api.Download(ctx, imageURL, outputDir, fileName)
	downloadLog := CallLog{Operation: "download", TaskID: taskID, Detail: fileName}
	emitCall(req.OnCall, downloadLog)
	logs = append(logs, downloadLog)
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   "exporting",
			Message: "artifact download failed",
			CallLog: downloadLog,
			Err:     err,
		}
	}

	return Result{
		TaskID:    taskID,
		ImagePath: imagePath,
		ImageURL:  imageURL,
		Logs:      logs,
	}, nil
}

// edit is one optional post-processing step in declared order.
type edit struct {
	name   string
	submit func(ctx context.Context, api apiCaller, imageURL string) (genapi.Task, error)
}

// enabledEdits returns the enhancement steps enabled in settings, in the
// fixed removeBackground, upscale, faceEnhance order.
func enabledEdits(processing domain.ProcessingSettings) []edit {
	var out []edit
	if processing.RemoveBackground {
		out = append(out, edit{"removeBackground", func(ctx context.Context, api apiCaller, imageURL string) (genapi.Task, error) {
			return api.RemoveBackground(ctx, imageURL)
		}})
	}
	if processing.Upscale {
		out = append(out, edit{"upscale", func(ctx context.Context, api apiCaller, imageURL string) (genapi.Task, error) {
			return api.Upscale(ctx, imageURL)
		}})
	}
	if processing.FaceEnhance {
		out = append(out, edit{"faceEnhance", func(ctx context.Context, api apiCaller, imageURL string) (genapi.Task, error) {
			return api.EnhanceFaces(ctx, imageURL)
		}})
	}
	return out
}

// buildGenerateRequest maps job settings onto the API payload. Advanced
// parameters are attached only when explicitly enabled.
func buildGenerateRequest(settings domain.Settings) genapi.GenerateRequest {
	req := genapi.GenerateRequest{
		Prompt:      strings.TrimSpace(settings.Parameters.Prompt),
		Mode:        settings.Processing.Mode,
		Model:       settings.AI.Model,
		AspectRatio: settings.Parameters.AspectRatio,
		Stylize:     settings.Parameters.Stylize,
		Seed:        settings.Parameters.Seed,
	}
	if settings.Advanced.Enabled && len(settings.Advanced.Parameters) > 0 {
		req.Advanced = settings.Advanced.Parameters
	}
	return req
}

// artifactFileName builds a collision-safe output name for one task.
func artifactFileName(taskID, format string, now time.Time) string {
	ext := strings.TrimSpace(strings.ToLower(format))
	if ext == "" {
		ext = "png"
	}
	ext = strings.TrimPrefix(ext, ".")

	id := strings.TrimSpace(taskID)
	if id == "" {
		id = now.UTC().Format("20060102-150405")
	}
	return id + "." + ext
}

// emitStage forwards stage updates when a callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// emitCall forwards call logs when a callback is configured.
func emitCall(cb func(call CallLog), call CallLog) {
	if cb != nil {
		cb(call)
	}
}
