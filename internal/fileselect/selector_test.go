package fileselect

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeDialog returns a scripted result and records the request.
type fakeDialog struct {
	req OpenRequest
	res OpenResult
	err error
}

// Open records the request and returns scripted values.
func (d *fakeDialog) Open(_ context.Context, req OpenRequest) (OpenResult, error) {
	d.req = req
	return d.res, d.err
}

// TestAllowedExtensionsFromAcceptString checks comma splitting and trimming.
func TestAllowedExtensionsFromAcceptString(t *testing.T) {
	got := AllowedExtensions(".txt, .csv", nil)
	want := []string{".txt", ".csv"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extensions = %v, want %v", got, want)
	}
}

// TestAllowedExtensionsExplicitListWins checks precedence.
func TestAllowedExtensionsExplicitListWins(t *testing.T) {
	got := AllowedExtensions(".txt,.csv", []string{".png"})
	if !reflect.DeepEqual(got, []string{".png"}) {
		t.Fatalf("extensions = %v, want explicit list", got)
	}
}

// TestAllowedExtensionsDropsEmptyParts checks messy accept strings.
func TestAllowedExtensionsDropsEmptyParts(t *testing.T) {
	got := AllowedExtensions(" .png, ,, .jpg ", nil)
	want := []string{".png", ".jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extensions = %v, want %v", got, want)
	}
}

// TestOpenPropagatesChosenPath checks the success path.
func TestOpenPropagatesChosenPath(t *testing.T) {
	var changed string
	dialog := &fakeDialog{res: OpenResult{Success: true, Path: "/images/in.png"}}
	sel := New(Options{
		Title:    "Select input image",
		Accept:   ".png, .jpg",
		OnChange: func(path string) { changed = path },
	})

	if err := sel.Open(context.Background(), dialog); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if changed != "/images/in.png" {
		t.Fatalf("onChange path = %q, want chosen path", changed)
	}
	if !reflect.DeepEqual(dialog.req.Extensions, []string{".png", ".jpg"}) {
		t.Fatalf("dialog extensions = %v, want trimmed accept list", dialog.req.Extensions)
	}
	if sel.State() != StateValid {
		t.Fatalf("state = %s, want valid", sel.State())
	}
}

// TestOpenCancelledLeavesValueUntouched checks the cancellation path.
func TestOpenCancelledLeavesValueUntouched(t *testing.T) {
	var calls int
	dialog := &fakeDialog{res: OpenResult{Success: true, Cancelled: true}}
	sel := New(Options{OnChange: func(string) { calls++ }})
	sel.SetPath("/keep/me.png")
	calls = 0

	if err := sel.Open(context.Background(), dialog); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if calls != 0 {
		t.Fatal("cancelled dialog must not invoke onChange")
	}
	if sel.Path() != "/keep/me.png" {
		t.Fatalf("path = %q, want previous value", sel.Path())
	}
}

// TestOpenDisabledIsNoOp checks the disabled guard.
func TestOpenDisabledIsNoOp(t *testing.T) {
	dialog := &fakeDialog{res: OpenResult{Success: true, Path: "/x.png"}}
	sel := New(Options{Disabled: true})

	if err := sel.Open(context.Background(), dialog); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if dialog.req.Title != "" || sel.Path() != "" {
		t.Fatal("disabled selector must not open the dialog")
	}
}

// TestOpenDialogFailure checks failures leave the value untouched.
func TestOpenDialogFailure(t *testing.T) {
	dialog := &fakeDialog{err: errors.New("dialog broken")}
	sel := New(Options{})
	sel.SetPath("/keep.png")

	if err := sel.Open(context.Background(), dialog); err == nil {
		t.Fatal("expected dialog error")
	}
	if sel.Path() != "/keep.png" {
		t.Fatalf("path = %q, want previous value", sel.Path())
	}
}

// TestValidateStates checks the idle/valid/invalid transitions.
func TestValidateStates(t *testing.T) {
	sel := New(Options{Validate: func(path string) error {
		if path == "/bad.png" {
			return errors.New("unsupported")
		}
		return nil
	}})

	if sel.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", sel.State())
	}

	sel.SetPath("/good.png")
	if sel.State() != StateValid {
		t.Fatalf("state = %s, want valid", sel.State())
	}

	sel.SetPath("/bad.png")
	if sel.State() != StateInvalid {
		t.Fatalf("state = %s, want invalid", sel.State())
	}
}

// TestClearPropagatesEmptyPath checks reset behavior.
func TestClearPropagatesEmptyPath(t *testing.T) {
	var changed = "sentinel"
	sel := New(Options{OnChange: func(path string) { changed = path }})
	sel.SetPath("/x.png")

	sel.Clear()
	if changed != "" {
		t.Fatalf("onChange = %q, want empty string", changed)
	}
	if sel.State() != StateIdle {
		t.Fatalf("state = %s, want idle", sel.State())
	}
}
