// Package render draws suggestions as ghost text overlays.
//
// A Renderer owns a single mark namespace on its surface. Every draw
// clears the previous overlay first, so at most one ghost block is ever
// visible, and reads the cursor fresh so the overlay lands where the
// insert cursor actually is rather than where it was when the suggestion
// was produced.
package render

import (
	"sync"

	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/suggestion"
)

// DefaultNamespace is the mark namespace overlays are placed in.
const DefaultNamespace = "fittencode"

// DefaultHighlight is the highlight group applied to ghost text.
const DefaultHighlight = "FittenSuggestion"

// Surface is the editor access the renderer needs: cursor reads, mark
// placement, and the window controls used for recentering.
type Surface interface {
	editor.CursorControl
	editor.MarkSurface
	editor.InputControl
	editor.DisplayControl
}

// Renderer draws one suggestion at a time on a Surface.
type Renderer struct {
	mu        sync.Mutex
	surface   Surface
	namespace string
	highlight string

	ns      int
	created bool
	visible bool
	height  int
}

// New creates a renderer drawing on surface. Empty namespace or highlight
// names fall back to the package defaults.
func New(surface Surface, namespace, highlight string) *Renderer {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if highlight == "" {
		highlight = DefaultHighlight
	}
	return &Renderer{
		surface:   surface,
		namespace: namespace,
		highlight: highlight,
	}
}

// SetHighlight changes the highlight group used for subsequent draws.
func (r *Renderer) SetHighlight(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group != "" {
		r.highlight = group
	}
}

// Render replaces any existing overlay with s drawn at the cursor. An
// empty suggestion is a strict no-op: nothing is drawn and an existing
// overlay is left untouched.
//
// When the ghost block would overflow the window bottom it recenters the
// window on the cursor so the whole block has room to appear.
func (r *Renderer) Render(s suggestion.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ann, ok := s.Annotation(r.highlight)
	if !ok {
		return nil
	}

	if err := r.ensureNamespace(); err != nil {
		return err
	}
	if err := r.surface.ClearNamespace(r.ns); err != nil {
		return err
	}

	at, err := r.surface.Cursor()
	if err != nil {
		return err
	}
	if err := r.surface.PlaceInline(r.ns, at, ann.Inline); err != nil {
		return err
	}
	if len(ann.Below) > 0 {
		if err := r.surface.PlaceBelow(r.ns, at.Row, ann.Below); err != nil {
			return err
		}
	}

	r.visible = true
	r.height = ann.Height()

	return r.recenter(at.Row, ann.Height())
}

// Clear removes the overlay. Before anything has ever been drawn there is
// no namespace to clear and Clear is a no-op.
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked()
}

// Visible reports whether an overlay is currently drawn.
func (r *Renderer) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// Height returns the screen rows the current overlay occupies, zero when
// nothing is drawn.
func (r *Renderer) Height() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

func (r *Renderer) clearLocked() error {
	if !r.created {
		return nil
	}
	if err := r.surface.ClearNamespace(r.ns); err != nil {
		return err
	}
	r.visible = false
	r.height = 0
	return nil
}

func (r *Renderer) ensureNamespace() error {
	if r.created {
		return nil
	}
	ns, err := r.surface.CreateNamespace(r.namespace)
	if err != nil {
		return err
	}
	r.ns = ns
	r.created = true
	return nil
}

func (r *Renderer) recenter(row, height int) error {
	vp, err := r.surface.Viewport()
	if err != nil {
		return err
	}
	if !NeedsRecenter(vp, row, height) {
		return nil
	}
	return r.surface.CenterCursor()
}
