// Package fileselect wraps native file dialogs behind a validation state
// machine so the UI can track whether a chosen path is usable.
package fileselect

import (
	"context"
	"strings"
	"sync"
)

// State is the validation phase of a selector.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
)

// SelectionType chooses between file and directory dialogs.
type SelectionType string

const (
	SelectFile      SelectionType = "file"
	SelectDirectory SelectionType = "directory"
)

// OpenRequest describes one native dialog invocation.
type OpenRequest struct {
	Title      string
	Type       SelectionType
	Extensions []string
}

// OpenResult is the dialog outcome with an explicit success flag.
type OpenResult struct {
	Success   bool
	Path      string
	Cancelled bool
	Error     string
}

// Dialog is the native dialog boundary, mocked in tests.
type Dialog interface {
	Open(ctx context.Context, req OpenRequest) (OpenResult, error)
}

// Options configures a selector instance.
type Options struct {
	Title string
	Type  SelectionType
	// Accept is a comma-separated extension list used when Extensions is
	// empty, e.g. ".png, .jpg".
	Accept     string
	Extensions []string
	Disabled   bool
	OnChange   func(path string)
	Validate   func(path string) error
}

// Selector tracks one path value and its validation state.
type Selector struct {
	opts Options

	mu    sync.Mutex
	state State
	path  string
}

// New creates an idle selector.
func New(opts Options) *Selector {
	if opts.Type == "" {
		opts.Type = SelectFile
	}
	return &Selector{opts: opts, state: StateIdle}
}

// AllowedExtensions derives the dialog extension allow-list. An explicit
// list wins; otherwise the accept string is split on commas and trimmed.
func AllowedExtensions(accept string, explicit []string) []string {
	if len(explicit) > 0 {
		out := make([]string, len(explicit))
		copy(out, explicit)
		return out
	}

	var out []string
	for _, part := range strings.Split(accept, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// Open shows the native dialog unless disabled. On a successful, non-
// cancelled result the chosen path is propagated through OnChange; on
// cancellation or failure the caller's value stays untouched.
func (s *Selector) Open(ctx context.Context, dialog Dialog) error {
	if s.opts.Disabled || dialog == nil {
		return nil
	}

	req := OpenRequest{
		Title:      s.opts.Title,
		Type:       s.opts.Type,
		Extensions: AllowedExtensions(s.opts.Accept, s.opts.Extensions),
	}

	res, err := dialog.Open(ctx, req)
	if err != nil {
		return err
	}
	if !res.Success || res.Cancelled {
		return nil
	}

	s.SetPath(res.Path)
	return nil
}

// SetPath stores a new path, notifies OnChange, and revalidates.
func (s *Selector) SetPath(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()

	if s.opts.OnChange != nil {
		s.opts.OnChange(path)
	}
	s.Validate()
}

// Validate reruns validation for the current path and returns the new state.
func (s *Selector) Validate() State {
	s.mu.Lock()
	path := s.path
	if path == "" {
		s.state = StateIdle
		s.mu.Unlock()
		return StateIdle
	}
	s.state = StateValidating
	validate := s.opts.Validate
	s.mu.Unlock()

	next := StateValid
	if validate != nil && validate(path) != nil {
		next = StateInvalid
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return next
}

// Clear resets the selector and propagates an empty value.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.path = ""
	s.state = StateIdle
	s.mu.Unlock()

	if s.opts.OnChange != nil {
		s.opts.OnChange("")
	}
}

// Path returns the current path value.
func (s *Selector) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// State returns the current validation state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
