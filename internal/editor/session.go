// Package editor owns the edit-session state for a job's configuration:
// a deep-partial draft, its save/normalize flow, and the error state the
// dashboard renders. All boundary failures terminate here as messages;
// nothing propagates to the caller as an error.
package editor

import (
	"context"
	"sync"

	"pixel-studio/internal/domain"
	"pixel-studio/internal/logging"
)

// User-facing messages for the error taxonomy.
const (
	MsgNoConfiguration = "no configuration exists for this job"
	MsgNotFound        = "configuration not found"
	MsgLoadFailed      = "failed to load configuration"
	MsgSaveFailed      = "failed to save configuration"
)

// Boundary is the request/response surface the session depends on. A
// returned error is a transport failure; expected failures come back as
// a result with Success=false and a message.
type Boundary interface {
	GetJobConfiguration(ctx context.Context, id string) (domain.ConfigResult, error)
	UpdateJobConfiguration(ctx context.Context, id string, patch domain.SettingsPatch) (domain.ConfigResult, error)
}

// Session holds one job's configuration edit state. The draft exists only
// between BeginEdit and a successful Save or CancelEdit; after a save the
// fetched configuration becomes the source of truth again.
//
// Overlapping calls are not serialized against each other (the mutex only
// protects field access), matching the UI's single-event-loop usage.
type Session struct {
	boundary Boundary
	log      *logging.Logger

	mu     sync.Mutex
	job    domain.JobExecution
	config *domain.JobConfiguration
	draft  domain.SettingsPatch
	errMsg string
}

// NewSession creates a session for one job and its last known configuration.
// config may be nil when the caller has not loaded one yet.
func NewSession(boundary Boundary, job domain.JobExecution, config *domain.JobConfiguration, log *logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		boundary: boundary,
		log:      log.With("editor"),
		job:      job,
		config:   config,
	}
}

// BeginEdit opens a draft. An in-memory configuration with settings is used
// directly; otherwise the configuration is fetched by id; jobs without a
// configuration id (dashboard-created) get an error state and no draft.
func (s *Session) BeginEdit(ctx context.Context) {
	s.mu.Lock()
	config := s.config
	configID := s.job.ConfigID
	s.mu.Unlock()

	if config != nil && config.Settings != nil {
		s.adoptDraft(config, *config.Settings)
		return
	}

	if configID == "" {
		s.setError(MsgNoConfiguration)
		return
	}

	res, err := s.boundary.GetJobConfiguration(ctx, configID)
	if err != nil {
		s.log.Error().Err(err).Str("configId", configID).Msg("load configuration")
		s.setError(MsgLoadFailed)
		return
	}
	if !res.Success || res.Config == nil || res.Config.Settings == nil {
		msg := res.Error
		if msg == "" {
			msg = MsgNotFound
		}
		s.setError(msg)
		return
	}

	s.adoptDraft(res.Config, *res.Config.Settings)
}

// UpdateField replaces one field inside a named section of the draft,
// leaving every other section referentially unchanged. A no-op without
// an open draft.
func (s *Session) UpdateField(section, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return
	}
	s.draft = s.draft.With(section, key, value)
}

// Save normalizes and persists the draft, then refreshes the held
// configuration from the canonical copy, falling back to merging the draft
// locally when the re-fetch yields nothing usable. Without a draft or a
// configuration id it is a no-op.
func (s *Session) Save(ctx context.Context) {
	s.mu.Lock()
	draft := s.draft
	configID := s.job.ConfigID
	s.mu.Unlock()

	if draft == nil || configID == "" {
		return
	}

	normalized := draft.NormalizeAdvanced()

	res, err := s.boundary.UpdateJobConfiguration(ctx, configID, normalized)
	if err != nil {
		s.log.Error().Err(err).Str("configId", configID).Msg("save configuration")
		s.setError(MsgSaveFailed)
		return
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = MsgSaveFailed
		}
		s.setError(msg)
		return
	}

	s.refreshAfterSave(ctx, configID, normalized)
}

// refreshAfterSave re-fetches the canonical configuration; on any problem
// it shallow-merges the saved draft into the configuration already held.
func (s *Session) refreshAfterSave(ctx context.Context, configID string, saved domain.SettingsPatch) {
	res, err := s.boundary.GetJobConfiguration(ctx, configID)
	if err == nil && res.Success && res.Config != nil && res.Config.Settings != nil {
		s.mu.Lock()
		s.config = res.Config
		s.draft = nil
		s.errMsg = ""
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("configId", configID).Msg("refetch after save")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		s.config = &domain.JobConfiguration{ID: configID}
	}
	base := domain.Settings{}
	if s.config.Settings != nil {
		base = *s.config.Settings
	}
	if merged, mergeErr := domain.ApplyPatch(base, saved); mergeErr == nil {
		s.config.Settings = &merged
	}
	s.draft = nil
	s.errMsg = ""
}

// CancelEdit discards the draft and any error state unconditionally.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
	s.errMsg = ""
}

// Editing reports whether a draft is open.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft != nil
}

// Draft returns the current draft, nil when not editing.
func (s *Session) Draft() domain.SettingsPatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Config returns the last known configuration, nil when never loaded.
func (s *Session) Config() *domain.JobConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Err returns the current error message, empty when none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// adoptDraft installs a draft built from full settings.
func (s *Session) adoptDraft(config *domain.JobConfiguration, settings domain.Settings) {
	patch, err := domain.PatchFromSettings(settings)
	if err != nil {
		s.log.Error().Err(err).Msg("convert settings to draft")
		s.setError(MsgLoadFailed)
		return
	}

	s.mu.Lock()
	s.config = config
	s.draft = patch
	s.errMsg = ""
	s.mu.Unlock()
}

// setError records a terminal message. A draft already open stays open so
// the user can re-invoke save manually.
func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}
