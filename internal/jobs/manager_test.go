package jobs

import (
	"errors"
	"testing"

	"pixel-studio/internal/domain"
)

// TestManagerLifecycle verifies normal progression to done state.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	if err := m.Start("exec-1", "cfg-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, status := range []domain.JobStatus{
		domain.JobStatusGenerating,
		domain.JobStatusEnhancing,
		domain.JobStatusExporting,
		domain.JobStatusDone,
	} {
		if err := m.Transition("exec-1", status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	execution, ok := m.Get("exec-1")
	if !ok {
		t.Fatal("execution missing")
	}
	if execution.Status != domain.JobStatusDone {
		t.Fatalf("status = %s, want done", execution.Status)
	}
	if execution.ConfigID != "cfg-1" {
		t.Fatalf("configId = %q, want cfg-1", execution.ConfigID)
	}
}

// TestManagerSkipsEnhancingStage checks generating -> exporting is allowed.
func TestManagerSkipsEnhancingStage(t *testing.T) {
	m := NewManager()
	if err := m.Start("exec-1", "cfg-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition("exec-1", domain.JobStatusGenerating); err != nil {
		t.Fatalf("to generating: %v", err)
	}
	if err := m.Transition("exec-1", domain.JobStatusExporting); err != nil {
		t.Fatalf("skip enhancing: %v", err)
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Start("exec-1", "cfg-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Transition("exec-1", domain.JobStatusDone); err == nil {
		t.Fatal("expected invalid transition error")
	}
	if err := m.Transition("missing", domain.JobStatusGenerating); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("unknown id error = %v, want %v", err, ErrJobNotFound)
	}
}

// TestManagerTracksMultipleExecutions checks keyed tracking and ordering.
func TestManagerTracksMultipleExecutions(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"exec-1", "exec-2", "exec-3"} {
		if err := m.Start(id, "cfg-"+id); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
	}

	if err := m.Transition("exec-2", domain.JobStatusGenerating); err != nil {
		t.Fatalf("transition: %v", err)
	}

	list := m.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "exec-1" || list[2].ID != "exec-3" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if got := len(m.Running()); got != 3 {
		t.Fatalf("running = %d, want 3", got)
	}
}

// TestManagerRejectsDuplicateActiveID checks the active-id guard.
func TestManagerRejectsDuplicateActiveID(t *testing.T) {
	m := NewManager()
	if err := m.Start("exec-1", "cfg-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start("exec-1", "cfg-1"); !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("duplicate start error = %v, want %v", err, ErrJobAlreadyRunning)
	}
}

// TestManagerCancel verifies cancel behavior and repeated cancel handling.
func TestManagerCancel(t *testing.T) {
	m := NewManager()
	if err := m.Start("exec-1", "cfg-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Cancel("exec-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	execution, _ := m.Get("exec-1")
	if execution.Status != domain.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", execution.Status)
	}

	if err := m.Cancel("exec-1"); !errors.Is(err, ErrNoRunningJob) {
		t.Fatalf("second cancel error = %v, want %v", err, ErrNoRunningJob)
	}
}
