package editor

// CursorControl reads and moves the active cursor.
type CursorControl interface {
	// Cursor returns the current cursor position.
	Cursor() (Position, error)

	// SetCursor moves the cursor. Positions outside the buffer are a
	// host-side fault.
	SetCursor(Position) error
}

// LineAccess reads and mutates real buffer content.
type LineAccess interface {
	// LineCount returns the number of lines in the buffer. A buffer
	// always has at least one line.
	LineCount() (int, error)

	// Line returns the content of the given zero-based row.
	Line(row int) (string, error)

	// InsertText inserts text into an existing line at the given
	// position without creating a new line.
	InsertText(at Position, text string) error

	// SetLine replaces the content of an existing line.
	SetLine(row int, text string) error

	// InsertLineBefore inserts a new line above row, pushing row and
	// everything below it down.
	InsertLineBefore(row int, text string) error

	// AppendLine appends a new line at the end of the buffer.
	AppendLine(text string) error
}

// MarkSurface manages namespaced virtual-text marks. Marks are purely
// visual: they never alter buffer content or line count.
type MarkSurface interface {
	// CreateNamespace returns the namespace handle for name, creating
	// it on first use. Calling with the same name returns the same
	// handle.
	CreateNamespace(name string) (int, error)

	// ClearNamespace removes every mark in the namespace from the
	// current buffer. Clearing an empty namespace is a no-op.
	ClearNamespace(ns int) error

	// PlaceInline draws one chunk inline at the given position.
	PlaceInline(ns int, at Position, chunk Chunk) error

	// PlaceBelow draws rows of chunks as virtual lines attached below
	// the given buffer row, in order.
	PlaceBelow(ns int, row int, rows [][]Chunk) error
}

// FormattingControl snapshots and applies the buffer-local formatting
// settings the committer toggles around a splice.
type FormattingControl interface {
	SnapshotSettings() (Settings, error)
	ApplySettings(Settings) error
}

// InputControl carries the engine's input intents. The host translates
// each intent to whatever low-level input simulation it uses; all are
// best effort.
type InputControl interface {
	// JoinUndo marks the upcoming edit as part of the previous undo
	// step rather than a new one.
	JoinUndo() error

	// NudgeAttachedTooling pokes any editor-attached language tooling
	// UI (signature help and the like) to refresh or dismiss.
	NudgeAttachedTooling() error

	// InsertTab injects a literal tab keypress.
	InsertTab() error

	// CenterCursor scrolls the window so the cursor row sits at
	// vertical center, preserving the cursor position.
	CenterCursor() error
}

// DisplayControl exposes window geometry and redraw.
type DisplayControl interface {
	// Redraw forces a full repaint of the display.
	Redraw() error

	// Viewport returns the current window geometry.
	Viewport() (Viewport, error)
}

// Host is the full capability set the engine needs from an editor.
type Host interface {
	CursorControl
	LineAccess
	MarkSurface
	FormattingControl
	InputControl
	DisplayControl
}
