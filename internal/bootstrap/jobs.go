package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"pixel-studio/internal/cost"
	"pixel-studio/internal/domain"
	"pixel-studio/internal/editor"
	"pixel-studio/internal/genapi"
	"pixel-studio/internal/generate"
	"pixel-studio/internal/jobconfig"
	"pixel-studio/internal/jobs"
)

const msgOperationFailed = "operation failed"

// storeBoundary adapts the configuration store to the editor's
// request/response boundary. Expected failures become unsuccessful results;
// only storage faults surface as errors.
type storeBoundary struct {
	configs jobconfig.Store
}

// GetJobConfiguration fetches one configuration by id.
func (b storeBoundary) GetJobConfiguration(_ context.Context, id string) (domain.ConfigResult, error) {
	cfg, err := b.configs.Get(id)
	if errors.Is(err, jobconfig.ErrNotFound) {
		return domain.ConfigResult{Error: editor.MsgNotFound}, nil
	}
	if err != nil {
		return domain.ConfigResult{}, err
	}
	return domain.ConfigResult{Success: true, Config: &cfg}, nil
}

// UpdateJobConfiguration merges a patch into one stored configuration.
func (b storeBoundary) UpdateJobConfiguration(_ context.Context, id string, patch domain.SettingsPatch) (domain.ConfigResult, error) {
	cfg, err := b.configs.Update(id, patch)
	if errors.Is(err, jobconfig.ErrNotFound) {
		return domain.ConfigResult{Error: editor.MsgNotFound}, nil
	}
	if err != nil {
		return domain.ConfigResult{}, err
	}
	return domain.ConfigResult{Success: true, Config: &cfg}, nil
}

// CreateJobConfiguration persists a new configuration snapshot.
func (a *App) CreateJobConfiguration(settings domain.Settings) domain.ConfigResult {
	cfg, err := a.Configs.Create(normalizeSettings(settings))
	if err != nil {
		a.log.Error().Err(err).Msg("create configuration")
		return domain.ConfigResult{Error: msgOperationFailed}
	}
	return domain.ConfigResult{Success: true, Config: &cfg}
}

// GetJobConfiguration returns one stored configuration by id.
func (a *App) GetJobConfiguration(id string) domain.ConfigResult {
	result, err := storeBoundary{a.Configs}.GetJobConfiguration(a.bindingContext(), id)
	if err != nil {
		a.log.Error().Err(err).Str("configId", id).Msg("get configuration")
		return domain.ConfigResult{Error: msgOperationFailed}
	}
	return result
}

// UpdateJobConfiguration merges a deep-partial patch into one configuration.
func (a *App) UpdateJobConfiguration(id string, patch domain.SettingsPatch) domain.ConfigResult {
	result, err := storeBoundary{a.Configs}.UpdateJobConfiguration(a.bindingContext(), id, patch)
	if err != nil {
		a.log.Error().Err(err).Str("configId", id).Msg("update configuration")
		return domain.ConfigResult{Error: msgOperationFailed}
	}
	return result
}

// ListJobConfigurations returns all stored configurations.
func (a *App) ListJobConfigurations() ([]domain.JobConfiguration, error) {
	return a.Configs.List()
}

// EditState is the editor snapshot pushed back to the UI after every
// editor binding call.
type EditState struct {
	Editing bool                     `json:"editing"`
	Draft   domain.SettingsPatch     `json:"draft,omitempty"`
	Error   string                   `json:"error,omitempty"`
	Config  *domain.JobConfiguration `json:"config,omitempty"`
}

// BeginJobEdit opens an edit session for one job execution.
func (a *App) BeginJobEdit(jobID string) EditState {
	exec, ok := a.Jobs.Get(jobID)
	if !ok {
		exec = domain.JobExecution{ID: jobID}
	}

	session := editor.NewSession(storeBoundary{a.Configs}, exec, nil, a.log)
	session.BeginEdit(a.bindingContext())

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	return a.editState(session)
}

// UpdateJobEditField records one field change in the open draft.
func (a *App) UpdateJobEditField(section, key string, value any) EditState {
	session := a.currentSession()
	if session == nil {
		return EditState{}
	}
	session.UpdateField(section, key, value)
	return a.editState(session)
}

// SaveJobEdit persists the open draft through the configuration boundary.
func (a *App) SaveJobEdit() EditState {
	session := a.currentSession()
	if session == nil {
		return EditState{}
	}
	session.Save(a.bindingContext())
	return a.editState(session)
}

// CancelJobEdit discards the open draft and any edit error.
func (a *App) CancelJobEdit() EditState {
	session := a.currentSession()
	if session == nil {
		return EditState{}
	}
	session.CancelEdit()
	return a.editState(session)
}

// JobEditState returns the current editor snapshot without mutating it.
func (a *App) JobEditState() EditState {
	return a.editState(a.currentSession())
}

func (a *App) currentSession() *editor.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) editState(session *editor.Session) EditState {
	if session == nil {
		return EditState{}
	}
	return EditState{
		Editing: session.Editing(),
		Draft:   session.Draft(),
		Error:   session.Err(),
		Config:  session.Config(),
	}
}

// RunJobsResult reports a bulk run request. Configurations that fail to
// load are skipped; the rest still start.
type RunJobsResult struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Started []domain.JobExecution `json:"started,omitempty"`
}

// RunJobs starts one execution per configuration id.
func (a *App) RunJobs(configIDs []string) RunJobsResult {
	var result RunJobsResult
	var failures []string

	for _, configID := range configIDs {
		cfg, err := a.Configs.Get(configID)
		if err != nil {
			a.log.Error().Err(err).Str("configId", configID).Msg("load configuration for run")
			failures = append(failures, configID)
			continue
		}

		settings := a.settingsFor(cfg)
		jobID := uuid.NewString()
		if err := a.Jobs.Start(jobID, configID); err != nil {
			failures = append(failures, configID)
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		a.mu.Lock()
		a.cancels[jobID] = cancel
		a.mu.Unlock()

		a.publishStatus(jobID, domain.JobStatusQueued, "Job started")
		go a.runGenerationJob(ctx, jobID, settings)

		if exec, ok := a.Jobs.Get(jobID); ok {
			result.Started = append(result.Started, exec)
		}
	}

	result.Success = len(failures) == 0
	if len(failures) > 0 {
		result.Error = "failed to start configurations: " + strings.Join(failures, ", ")
	}
	return result
}

// CancelJob cancels one running execution.
func (a *App) CancelJob(jobID string) error {
	a.mu.Lock()
	cancel := a.cancels[jobID]
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningJob
	}

	cancel()
	if err := a.Jobs.Cancel(jobID); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		return err
	}
	a.publishStatus(jobID, domain.JobStatusCancelled, "Cancellation requested")
	return nil
}

// CancelAllJobs cancels every running execution.
func (a *App) CancelAllJobs() {
	for _, jobID := range a.Jobs.Running() {
		_ = a.CancelJob(jobID)
	}
}

// ListJobs returns all executions in start order.
func (a *App) ListJobs() []domain.JobExecution {
	return a.Jobs.List()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// CostEstimate is the binding response for dashboard cost previews.
type CostEstimate struct {
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	Calculation cost.Calculation `json:"calculation"`
	Level       cost.Level       `json:"level"`
}

// EstimateCost prices one prospective job without any API calls.
func (a *App) EstimateCost(mode string, features cost.Features) CostEstimate {
	calc, err := cost.Estimate(cost.Mode(mode), features)
	if err != nil {
		return CostEstimate{Error: err.Error()}
	}
	return CostEstimate{
		Success:     true,
		Calculation: calc,
		Level:       cost.LevelFor(calc.TotalUSD),
	}
}

// settingsFor resolves the settings snapshot a run should use. Stored
// configurations without settings fall back to the live settings.
func (a *App) settingsFor(cfg domain.JobConfiguration) domain.Settings {
	if cfg.Settings != nil {
		return *cfg.Settings
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

// pipelineFor returns the injected pipeline or builds one against the
// image API with the provider key resolved at run time.
func (a *App) pipelineFor(settings domain.Settings) pipelineRunner {
	a.mu.Lock()
	pipeline := a.Pipeline
	a.mu.Unlock()
	if pipeline != nil {
		return pipeline
	}

	key, err := a.Keys.Get(settings.APIKeys.ImageProvider)
	if err != nil {
		a.log.Warn().Err(err).Str("provider", settings.APIKeys.ImageProvider).Msg("resolve api key")
	}
	return generate.NewPipeline(genapi.NewClient(a.apiBaseURL, key, a.log))
}

// runGenerationJob executes the pipeline and maps outcomes to job events.
func (a *App) runGenerationJob(ctx context.Context, jobID string, settings domain.Settings) {
	req := generate.Request{
		Settings: settings,
		OnStage: func(stage string) {
			status, ok := mapStageToStatus(stage)
			if !ok {
				return
			}
			if err := a.Jobs.Transition(jobID, status); err == nil {
				a.publishStatus(jobID, status, "Running "+stage+" stage")
			}
		},
		OnCall: func(call generate.CallLog) {
			a.publishEvent(jobs.Event{
				JobID:     jobID,
				Type:      jobs.EventTypeCall,
				Message:   "API call completed",
				Operation: call.Operation,
				TaskID:    call.TaskID,
				Detail:    call.Detail,
			})
		},
	}

	result, err := a.pipelineFor(settings).Run(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			_ = a.Jobs.Transition(jobID, domain.JobStatusCancelled)
			a.publishStatus(jobID, domain.JobStatusCancelled, "Job cancelled")
			a.clearJob(jobID)
			return
		}

		_ = a.Jobs.Transition(jobID, domain.JobStatusFailed)
		a.publishStatus(jobID, domain.JobStatusFailed, "Job failed")
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		})

		var pipelineErr *generate.PipelineError
		if errors.As(err, &pipelineErr) && pipelineErr.CallLog.Operation != "" {
			a.publishEvent(jobs.Event{
				JobID:     jobID,
				Type:      jobs.EventTypeCall,
				Message:   "Failed API call",
				Operation: pipelineErr.CallLog.Operation,
				TaskID:    pipelineErr.CallLog.TaskID,
				Detail:    pipelineErr.CallLog.Detail,
			})
		}

		a.clearJob(jobID)
		return
	}

	if err := a.Jobs.Transition(jobID, domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, "Job completed")
	}
	a.publishEvent(jobs.Event{
		JobID:     jobID,
		Type:      jobs.EventTypeResult,
		Status:    domain.JobStatusDone,
		Message:   "Image exported",
		TaskID:    result.TaskID,
		ImagePath: result.ImagePath,
		CostUSD:   estimateRunCost(settings),
	})
	a.clearJob(jobID)
}

// estimateRunCost prices a finished run from its settings. Unknown modes
// report zero rather than blocking completion.
func estimateRunCost(settings domain.Settings) float64 {
	calc, err := cost.Estimate(cost.Mode(settings.Processing.Mode), cost.Features{
		RemoveBackground: settings.Processing.RemoveBackground,
		Upscale:          settings.Processing.Upscale,
		FaceEnhance:      settings.Processing.FaceEnhance,
	})
	if err != nil {
		return 0
	}
	return calc.TotalUSD
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		emitRuntimeEvent(ctx, published)
	}
}

// clearJob drops the cancellation handle for a finished execution.
func (a *App) clearJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cancels, jobID)
}

// mapStageToStatus maps pipeline stage names to job statuses.
func mapStageToStatus(stage string) (domain.JobStatus, bool) {
	switch stage {
	case "generating":
		return domain.JobStatusGenerating, true
	case "enhancing":
		return domain.JobStatusEnhancing, true
	case "exporting":
		return domain.JobStatusExporting, true
	default:
		return "", false
	}
}
