// Package nvimhost adapts a live Neovim instance to the editor
// capability set and registers the remote-plugin RPC surface.
//
// Every operation addresses the current buffer and window, matching how
// the plugin is driven: the front end only calls in for the buffer
// being edited.
package nvimhost

import (
	"github.com/neovim/go-client/nvim"

	"github.com/cxwx/fittencode.nvim/internal/editor"
)

// Host implements editor.Host over a Neovim RPC connection.
type Host struct {
	v *nvim.Nvim
}

// New wraps an RPC connection. The connection may be nil during
// manifest generation; no methods are called in that mode.
func New(v *nvim.Nvim) *Host {
	return &Host{v: v}
}

var _ editor.Host = (*Host)(nil)

// Cursor returns the cursor position with the row converted from
// Neovim's 1-based convention.
func (h *Host) Cursor() (editor.Position, error) {
	win, err := h.v.CurrentWindow()
	if err != nil {
		return editor.Position{}, err
	}
	pos, err := h.v.WindowCursor(win)
	if err != nil {
		return editor.Position{}, err
	}
	return editor.Position{Row: pos[0] - 1, Col: pos[1]}, nil
}

func (h *Host) SetCursor(p editor.Position) error {
	win, err := h.v.CurrentWindow()
	if err != nil {
		return err
	}
	return h.v.SetWindowCursor(win, [2]int{p.Row + 1, p.Col})
}

func (h *Host) LineCount() (int, error) {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return 0, err
	}
	return h.v.BufferLineCount(buf)
}

func (h *Host) Line(row int) (string, error) {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return "", err
	}
	lines, err := h.v.BufferLines(buf, row, row+1, true)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return string(lines[0]), nil
}

func (h *Host) InsertText(at editor.Position, text string) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	return h.v.SetBufferText(buf, at.Row, at.Col, at.Row, at.Col, [][]byte{[]byte(text)})
}

func (h *Host) SetLine(row int, text string) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	return h.v.SetBufferLines(buf, row, row+1, true, [][]byte{[]byte(text)})
}

func (h *Host) InsertLineBefore(row int, text string) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	return h.v.SetBufferLines(buf, row, row, true, [][]byte{[]byte(text)})
}

func (h *Host) AppendLine(text string) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	return h.v.SetBufferLines(buf, -1, -1, true, [][]byte{[]byte(text)})
}

func (h *Host) CreateNamespace(name string) (int, error) {
	return h.v.CreateNamespace(name)
}

func (h *Host) ClearNamespace(ns int) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	return h.v.ClearBufferNamespace(buf, ns, 0, -1)
}

func (h *Host) PlaceInline(ns int, at editor.Position, chunk editor.Chunk) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	_, err = h.v.SetBufferExtmark(buf, ns, at.Row, at.Col, map[string]interface{}{
		"virt_text":     []interface{}{[]interface{}{chunk.Text, chunk.Highlight}},
		"virt_text_pos": "inline",
	})
	return err
}

func (h *Host) PlaceBelow(ns int, row int, rows [][]editor.Chunk) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}
	virtLines := make([]interface{}, 0, len(rows))
	for _, chunks := range rows {
		line := make([]interface{}, 0, len(chunks))
		for _, c := range chunks {
			line = append(line, []interface{}{c.Text, c.Highlight})
		}
		virtLines = append(virtLines, line)
	}
	_, err = h.v.SetBufferExtmark(buf, ns, row, 0, map[string]interface{}{
		"virt_lines": virtLines,
	})
	return err
}

// SnapshotSettings reads the four formatting options in one round trip.
func (h *Host) SnapshotSettings() (editor.Settings, error) {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return editor.Settings{}, err
	}

	var s editor.Settings
	b := h.v.NewBatch()
	b.BufferOption(buf, "autoindent", &s.AutoIndent)
	b.BufferOption(buf, "smartindent", &s.SmartIndent)
	b.BufferOption(buf, "formatoptions", &s.FormatOptions)
	b.BufferOption(buf, "textwidth", &s.TextWidth)
	if err := b.Execute(); err != nil {
		return editor.Settings{}, err
	}
	return s, nil
}

func (h *Host) ApplySettings(s editor.Settings) error {
	buf, err := h.v.CurrentBuffer()
	if err != nil {
		return err
	}

	b := h.v.NewBatch()
	b.SetBufferOption(buf, "autoindent", s.AutoIndent)
	b.SetBufferOption(buf, "smartindent", s.SmartIndent)
	b.SetBufferOption(buf, "formatoptions", s.FormatOptions)
	b.SetBufferOption(buf, "textwidth", s.TextWidth)
	return b.Execute()
}

// JoinUndo folds the next edit into the previous undo step. undojoin
// fails right after an undo, so the failure is swallowed host-side.
func (h *Host) JoinUndo() error {
	return h.v.Command("silent! undojoin")
}

// NudgeAttachedTooling leaves and re-enters insert mode, which prompts
// attached language tooling to drop stale popups.
func (h *Host) NudgeAttachedTooling() error {
	return h.feed("<Esc>a")
}

func (h *Host) InsertTab() error {
	return h.feed("<Tab>")
}

// CenterCursor recenters the window on the cursor, preserving insert
// mode via gi.
func (h *Host) CenterCursor() error {
	return h.feed("<Esc>zzgi")
}

// feed pushes keys through the typeahead without remapping.
func (h *Host) feed(keys string) error {
	seq, err := h.v.ReplaceTermcodes(keys, true, true, true)
	if err != nil {
		return err
	}
	return h.v.FeedKeys(seq, "n", true)
}

func (h *Host) Redraw() error {
	return h.v.Command("redraw!")
}

func (h *Host) Viewport() (editor.Viewport, error) {
	win, err := h.v.CurrentWindow()
	if err != nil {
		return editor.Viewport{}, err
	}
	height, err := h.v.WindowHeight(win)
	if err != nil {
		return editor.Viewport{}, err
	}

	var top, scrolloff int
	b := h.v.NewBatch()
	b.Eval("line('w0')", &top)
	b.Eval("&scrolloff", &scrolloff)
	if err := b.Execute(); err != nil {
		return editor.Viewport{}, err
	}
	return editor.Viewport{TopLine: top - 1, Height: height, ScrollOff: scrolloff}, nil
}
