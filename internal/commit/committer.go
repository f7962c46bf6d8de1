// Package commit splices accepted suggestion lines into the real buffer.
//
// The first suggestion line continues the cursor line, so it is inserted
// as text at the cursor rather than as a new line. Every later line is
// aimed at the row below the previous one and placed by a reuse-friendly
// policy: grow the buffer when the target is at or past the last line,
// push existing content down when the target holds text, and write into
// the target in place when it is blank. Blank lines left behind by an
// earlier auto-indent are therefore absorbed instead of being pushed down.
package commit

import (
	"sync"

	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/format"
	"github.com/cxwx/fittencode.nvim/internal/suggestion"
)

// Editor is the host access a commit needs: the cursor, line edits, and
// the input and display intents fired once the splice is done.
type Editor interface {
	editor.CursorControl
	editor.LineAccess
	editor.InputControl
	editor.DisplayControl
}

// Committer writes suggestions into the buffer at the cursor.
type Committer struct {
	mu    sync.Mutex
	ed    Editor
	guard *format.Guard
	nudge bool
}

// New creates a committer editing through ed. The guard is suspended for
// the duration of every commit so host auto-formatting cannot rewrite the
// spliced lines. Tooling nudges are enabled by default.
func New(ed Editor, guard *format.Guard) *Committer {
	return &Committer{ed: ed, guard: guard, nudge: true}
}

// SetNudge controls whether a commit pokes attached tooling afterwards so
// stale popups (signature help and the like) refresh.
func (c *Committer) SetNudge(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nudge = enabled
}

// Commit splices s into the buffer at the current cursor, joins the edit
// with the previous undo step, and leaves the cursor at the end of the
// inserted text. An empty suggestion is a silent no-op.
//
// Formatting is suspended around the whole splice and restored on every
// path out, including errors.
func (c *Committer) Commit(s suggestion.Suggestion) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.IsEmpty() {
		return nil
	}

	pos, err := c.ed.Cursor()
	if err != nil {
		return err
	}

	if err = c.guard.Suspend(); err != nil {
		return err
	}
	defer func() {
		if rerr := c.guard.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err = c.ed.JoinUndo(); err != nil {
		return err
	}

	lines := s.Lines()
	for i, line := range lines {
		if err = c.place(pos, i, line); err != nil {
			return err
		}
	}

	if err = c.reposition(pos, lines); err != nil {
		return err
	}

	if c.nudge {
		// Best effort: a host without attached tooling loses nothing.
		_ = c.ed.NudgeAttachedTooling()
	}

	return c.ed.Redraw()
}

// place puts the line at index i of the suggestion into the buffer. pos
// is the cursor position read at the start of the commit.
func (c *Committer) place(pos editor.Position, i int, line string) error {
	if i == 0 {
		if line == "" {
			return nil
		}
		return c.ed.InsertText(pos, line)
	}

	target := pos.Row + i
	count, err := c.ed.LineCount()
	if err != nil {
		return err
	}

	// At or past the last line: grow the buffer.
	if target >= count-1 {
		return c.ed.AppendLine(line)
	}

	existing, err := c.ed.Line(target)
	if err != nil {
		return err
	}
	if existing != "" {
		return c.ed.InsertLineBefore(target, line)
	}

	// Reuse the blank line in place instead of pushing it down.
	return c.ed.SetLine(target, line)
}

// reposition leaves the cursor at the end of the inserted text. A
// single-line commit advances the column; a multi-line commit lands on
// the final inserted row.
func (c *Committer) reposition(pos editor.Position, lines []string) error {
	last := lines[len(lines)-1]
	if len(lines) == 1 {
		if last == "" {
			return nil
		}
		return c.ed.SetCursor(editor.Position{Row: pos.Row, Col: pos.Col + len(last)})
	}
	return c.ed.SetCursor(editor.Position{
		Row: pos.Row + len(lines) - 1,
		Col: len(last),
	})
}
