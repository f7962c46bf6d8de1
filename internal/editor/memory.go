package editor

import (
	"errors"
	"strings"
	"sync"
)

// Memory host faults. A real host raises equivalent errors through its
// own API; the engine treats all of them as unhandled.
var (
	// ErrRowOutOfRange indicates a row index outside the buffer.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrColOutOfRange indicates a byte column outside the line.
	ErrColOutOfRange = errors.New("column out of range")
)

// MarkKind distinguishes the two shapes of virtual-text marks.
type MarkKind int

const (
	// MarkInline is a single chunk drawn inline at a position.
	MarkInline MarkKind = iota

	// MarkBelow is a block of virtual lines attached below a row.
	MarkBelow
)

// Mark records one virtual-text placement on the memory host. Tests
// and the preview read marks back to verify or draw the overlay.
type Mark struct {
	Kind  MarkKind
	At    Position  // inline anchor; for MarkBelow only At.Row is set
	Chunk Chunk     // inline content (MarkInline)
	Rows  [][]Chunk // virtual rows (MarkBelow)
}

// Counts reports how many of each intent and redraw the memory host
// has observed.
type Counts struct {
	UndoJoins int
	Nudges    int
	Tabs      int
	Centers   int
	Redraws   int
}

// MemoryHost is a complete in-memory Host implementation. It backs the
// package tests and the standalone preview, and models the semantics
// the engine relies on: byte-based columns, stable namespace handles,
// and purely visual marks.
type MemoryHost struct {
	mu sync.Mutex

	lines    []string
	cursor   Position
	settings Settings
	viewport Viewport

	namespaces map[string]int
	nextNS     int
	marks      map[int][]Mark

	counts Counts
}

// NewMemoryHost creates a memory host holding the given lines. A host
// buffer always has at least one line, so no lines means one empty
// line.
func NewMemoryHost(lines ...string) *MemoryHost {
	content := make([]string, len(lines))
	copy(content, lines)
	if len(content) == 0 {
		content = []string{""}
	}
	return &MemoryHost{
		lines:      content,
		settings:   Settings{AutoIndent: true, FormatOptions: "tcq", TextWidth: 0},
		viewport:   Viewport{TopLine: 0, Height: 24, ScrollOff: 0},
		namespaces: make(map[string]int),
		nextNS:     1,
		marks:      make(map[int][]Mark),
	}
}

// Cursor returns the current cursor position.
func (h *MemoryHost) Cursor() (Position, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor, nil
}

// SetCursor moves the cursor. The column is clamped into the target line,
// matching how editors treat cursor moves; an out-of-range row is an error.
func (h *MemoryHost) SetCursor(p Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p.Row < 0 || p.Row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if max := len(h.lines[p.Row]); p.Col > max {
		p.Col = max
	}
	h.cursor = p
	return nil
}

// LineCount returns the number of buffer lines.
func (h *MemoryHost) LineCount() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lines), nil
}

// Line returns the content of row.
func (h *MemoryHost) Line(row int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if row < 0 || row >= len(h.lines) {
		return "", ErrRowOutOfRange
	}
	return h.lines[row], nil
}

// InsertText splices text into an existing line at the byte column.
func (h *MemoryHost) InsertText(at Position, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if at.Row < 0 || at.Row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	line := h.lines[at.Row]
	if at.Col < 0 || at.Col > len(line) {
		return ErrColOutOfRange
	}
	h.lines[at.Row] = line[:at.Col] + text + line[at.Col:]
	return nil
}

// SetLine replaces the content of row.
func (h *MemoryHost) SetLine(row int, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if row < 0 || row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	h.lines[row] = text
	return nil
}

// InsertLineBefore inserts a new line above row.
func (h *MemoryHost) InsertLineBefore(row int, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if row < 0 || row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	h.lines = append(h.lines, "")
	copy(h.lines[row+1:], h.lines[row:])
	h.lines[row] = text
	return nil
}

// AppendLine appends a new line at the end of the buffer.
func (h *MemoryHost) AppendLine(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, text)
	return nil
}

// CreateNamespace returns the handle for name, creating it on first
// use. The same name always maps to the same handle.
func (h *MemoryHost) CreateNamespace(name string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id, ok := h.namespaces[name]; ok {
		return id, nil
	}
	id := h.nextNS
	h.nextNS++
	h.namespaces[name] = id
	return id, nil
}

// ClearNamespace removes every mark in ns. Unknown or empty namespaces
// clear to nothing.
func (h *MemoryHost) ClearNamespace(ns int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.marks, ns)
	return nil
}

// PlaceInline records an inline chunk at the given position.
func (h *MemoryHost) PlaceInline(ns int, at Position, chunk Chunk) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if at.Row < 0 || at.Row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	if at.Col < 0 || at.Col > len(h.lines[at.Row]) {
		return ErrColOutOfRange
	}
	h.marks[ns] = append(h.marks[ns], Mark{Kind: MarkInline, At: at, Chunk: chunk})
	return nil
}

// PlaceBelow records rows of virtual lines below the given buffer row.
func (h *MemoryHost) PlaceBelow(ns int, row int, rows [][]Chunk) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if row < 0 || row >= len(h.lines) {
		return ErrRowOutOfRange
	}
	copied := make([][]Chunk, len(rows))
	for i, r := range rows {
		copied[i] = append([]Chunk(nil), r...)
	}
	h.marks[ns] = append(h.marks[ns], Mark{Kind: MarkBelow, At: Position{Row: row}, Rows: copied})
	return nil
}

// SnapshotSettings returns the current formatting settings.
func (h *MemoryHost) SnapshotSettings() (Settings, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings, nil
}

// ApplySettings overwrites the formatting settings.
func (h *MemoryHost) ApplySettings(s Settings) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings = s
	return nil
}

// JoinUndo counts the undo-join intent.
func (h *MemoryHost) JoinUndo() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts.UndoJoins++
	return nil
}

// NudgeAttachedTooling counts the nudge intent.
func (h *MemoryHost) NudgeAttachedTooling() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts.Nudges++
	return nil
}

// InsertTab counts the tab intent.
func (h *MemoryHost) InsertTab() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts.Tabs++
	return nil
}

// CenterCursor recenters the viewport on the cursor row, the way a
// host-side scroll-to-center would.
func (h *MemoryHost) CenterCursor() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	top := h.cursor.Row - h.viewport.Height/2
	if top < 0 {
		top = 0
	}
	h.viewport.TopLine = top
	h.counts.Centers++
	return nil
}

// Redraw counts the redraw request.
func (h *MemoryHost) Redraw() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts.Redraws++
	return nil
}

// Viewport returns the current window geometry.
func (h *MemoryHost) Viewport() (Viewport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport, nil
}

// SetViewport sets the window geometry reported to the engine.
func (h *MemoryHost) SetViewport(vp Viewport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewport = vp
}

// Lines returns a copy of the buffer content.
func (h *MemoryHost) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}

// Text returns the buffer content joined with newlines.
func (h *MemoryHost) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return strings.Join(h.lines, "\n")
}

// Marks returns a copy of the marks recorded in ns.
func (h *MemoryHost) Marks(ns int) []Mark {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Mark(nil), h.marks[ns]...)
}

// MarkCount returns the number of marks across all namespaces.
func (h *MemoryHost) MarkCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, ms := range h.marks {
		n += len(ms)
	}
	return n
}

// Namespace looks up the handle for name without creating it.
func (h *MemoryHost) Namespace(name string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.namespaces[name]
	return id, ok
}

// NamespaceCount returns the number of namespaces created.
func (h *MemoryHost) NamespaceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.namespaces)
}

// Counts returns the observed intent and redraw counters.
func (h *MemoryHost) Counts() Counts {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts
}
