package jobs

import (
	"errors"
	"fmt"
	"sync"

	"pixel-studio/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting an id that is still active.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrJobNotFound is returned for operations on unknown execution ids.
var ErrJobNotFound = errors.New("job not found")

// ErrNoRunningJob is returned when cancel is requested for an idle job.
var ErrNoRunningJob = errors.New("no running job")

// Manager tracks job executions by id and validates their transitions.
type Manager struct {
	mu         sync.RWMutex
	executions map[string]domain.JobExecution
	order      []string
}

// NewManager creates an empty execution tracker.
func NewManager() *Manager {
	return &Manager{executions: map[string]domain.JobExecution{}}
}

// Start registers a new execution in queued state.
func (m *Manager) Start(id, configID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.executions[id]; ok && isRunning(existing.Status) {
		return ErrJobAlreadyRunning
	}
	if _, ok := m.executions[id]; !ok {
		m.order = append(m.order, id)
	}

	m.executions[id] = domain.JobExecution{
		ID:       id,
		ConfigID: configID,
		Status:   domain.JobStatusQueued,
	}
	return nil
}

// Transition validates and applies a state change for one execution.
func (m *Manager) Transition(id string, status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.executions[id]
	if !ok {
		return ErrJobNotFound
	}
	if status == current.Status {
		return nil
	}
	if !isValidTransition(current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", current.Status, status)
	}

	current.Status = status
	m.executions[id] = current
	return nil
}

// Get returns a snapshot of one execution.
func (m *Manager) Get(id string) (domain.JobExecution, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	execution, ok := m.executions[id]
	return execution, ok
}

// List returns all executions in start order.
func (m *Manager) List() []domain.JobExecution {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.JobExecution, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.executions[id])
	}
	return out
}

// Cancel moves an active execution to cancelled state.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.executions[id]
	if !ok {
		return ErrJobNotFound
	}
	if !isRunning(current.Status) {
		return ErrNoRunningJob
	}

	current.Status = domain.JobStatusCancelled
	m.executions[id] = current
	return nil
}

// Running returns the ids of all active executions.
func (m *Manager) Running() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, id := range m.order {
		if isRunning(m.executions[id].Status) {
			out = append(out, id)
		}
	}
	return out
}

// isRunning checks whether a status represents an active stage.
func isRunning(status domain.JobStatus) bool {
	switch status {
	case domain.JobStatusQueued, domain.JobStatusGenerating, domain.JobStatusEnhancing, domain.JobStatusExporting:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed execution state machine edges.
// Enhancing is skippable when no post-processing feature is enabled.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusQueued:
		return to == domain.JobStatusGenerating || to == domain.JobStatusFailed || to == domain.JobStatusCancelled
	case domain.JobStatusGenerating:
		return to == domain.JobStatusEnhancing || to == domain.JobStatusExporting || to == domain.JobStatusFailed || to == domain.JobStatusCancelled
	case domain.JobStatusEnhancing:
		return to == domain.JobStatusExporting || to == domain.JobStatusFailed || to == domain.JobStatusCancelled
	case domain.JobStatusExporting:
		return to == domain.JobStatusDone || to == domain.JobStatusFailed || to == domain.JobStatusCancelled
	case domain.JobStatusDone, domain.JobStatusFailed, domain.JobStatusCancelled:
		return to == domain.JobStatusQueued
	default:
		return false
	}
}
