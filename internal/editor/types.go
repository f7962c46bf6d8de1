// Package editor defines the capability surface a host editor provides
// to the suggestion engine, together with the small value types shared
// across it.
//
// The engine never owns buffer text. Cursor reads, line splices,
// virtual-text marks and formatting toggles all go through the
// interfaces in this package. A production host adapts these to Neovim
// RPC (internal/nvimhost); the in-memory host in this package backs
// tests and the standalone preview.
package editor

import "fmt"

// Position is a location in the buffer. Row is the zero-based line
// index; Col is a byte offset within that line. Col may equal the line
// length (cursor past the last byte, as in insert mode).
type Position struct {
	Row int
	Col int
}

// String returns the position as "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Chunk is one styled fragment of virtual text. Highlight names the
// host-side highlight group applied to Text.
type Chunk struct {
	Text      string
	Highlight string
}

// Settings is a snapshot of the buffer-local formatting options that
// auto-reformat text as it is typed. The committer suspends these
// around programmatic insertion so the host does not re-indent or wrap
// the spliced lines.
type Settings struct {
	// AutoIndent copies indent from the current line onto new lines.
	AutoIndent bool

	// SmartIndent adds language-aware indentation on new lines.
	SmartIndent bool

	// FormatOptions is the host's format-option flag string.
	FormatOptions string

	// TextWidth is the auto-wrap column; zero disables wrapping.
	TextWidth int
}

// PlainSettings returns the "no auto-formatting" values applied while
// a commit is in flight.
func PlainSettings() Settings {
	return Settings{}
}

// Viewport describes the visible window geometry at a point in time.
type Viewport struct {
	// TopLine is the zero-based buffer row of the first visible line.
	TopLine int

	// Height is the window height in text rows.
	Height int

	// ScrollOff is the host's configured bottom scroll margin: the
	// minimum number of rows kept between the cursor and the window
	// edge.
	ScrollOff int
}
