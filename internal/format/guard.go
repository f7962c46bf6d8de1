// Package format suspends buffer-local formatting while programmatic
// edits run and restores it afterwards.
package format

import (
	"errors"
	"sync"

	"github.com/cxwx/fittencode.nvim/internal/editor"
)

var (
	// ErrAlreadySuspended is returned by Suspend while a previous
	// suspension is still active.
	ErrAlreadySuspended = errors.New("formatting already suspended")

	// ErrNotSuspended is returned by Restore without a matching Suspend.
	ErrNotSuspended = errors.New("formatting not suspended")
)

// Guard temporarily disables the buffer-local options that would mangle
// programmatic inserts: autoindent, smartindent, formatoptions and
// textwidth. A Guard holds at most one suspension at a time; nested
// suspends are a caller bug and fail fast rather than silently clobbering
// the saved settings.
type Guard struct {
	mu        sync.Mutex
	control   editor.FormattingControl
	saved     editor.Settings
	suspended bool
}

// NewGuard creates a guard over control.
func NewGuard(control editor.FormattingControl) *Guard {
	return &Guard{control: control}
}

// Suspend snapshots the current formatting settings and applies plain
// ones in their place.
func (g *Guard) Suspend() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.suspended {
		return ErrAlreadySuspended
	}

	saved, err := g.control.SnapshotSettings()
	if err != nil {
		return err
	}
	if err := g.control.ApplySettings(editor.PlainSettings()); err != nil {
		return err
	}

	g.saved = saved
	g.suspended = true
	return nil
}

// Restore reapplies the settings captured by the matching Suspend. On
// failure the suspension stays active so Restore can be retried.
func (g *Guard) Restore() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.suspended {
		return ErrNotSuspended
	}

	if err := g.control.ApplySettings(g.saved); err != nil {
		return err
	}

	g.saved = editor.Settings{}
	g.suspended = false
	return nil
}

// Suspended reports whether a suspension is active.
func (g *Guard) Suspended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suspended
}
