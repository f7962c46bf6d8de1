// Package preview is a standalone terminal harness for the suggestion
// engine. It runs a session against the in-memory host, draws the
// buffer with the ghost overlay the way Neovim would, and maps a few
// keys onto the accept operations so the splice and cursor behavior can
// be watched without a live editor.
package preview

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/cxwx/fittencode.nvim/internal/config"
	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/session"
)

// tabWidth matches Neovim's default tabstop.
const tabWidth = 8

var (
	styleText   = tcell.StyleDefault
	styleGhost  = tcell.StyleDefault.Dim(true).Italic(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// Options configures the preview. Zero values fall back to the built-in
// config, the sample buffer, and the sample suggestion ring.
type Options struct {
	Config  config.Config
	Buffer  []string
	Samples [][]string
	Logger  session.Logger
}

// UI owns the screen, the memory host, and the session under test.
type UI struct {
	screen  tcell.Screen
	host    *editor.MemoryHost
	session *session.Session

	namespace string
	samples   [][]string
	next      int
	status    string
}

// New builds the preview but does not touch the terminal until Run.
func New(opts Options) (*UI, error) {
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	buffer := opts.Buffer
	if len(buffer) == 0 {
		buffer = SampleBuffer()
	}
	samples := opts.Samples
	if len(samples) == 0 {
		samples = SampleSuggestions()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	host := editor.NewMemoryHost(buffer...)
	row := len(buffer) - 1
	if err := host.SetCursor(editor.Position{Row: row, Col: len(buffer[row])}); err != nil {
		return nil, err
	}

	return &UI{
		screen:    screen,
		host:      host,
		session:   session.New(host, session.Options{Config: cfg, Logger: opts.Logger}),
		namespace: cfg.Namespace,
		samples:   samples,
	}, nil
}

// Run initializes the terminal, renders the first sample, and blocks in
// the event loop until q, Escape, or Ctrl-C.
func (u *UI) Run() error {
	if err := u.screen.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()

	u.syncViewport()
	u.renderNext()
	u.draw()

	for {
		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventResize:
			u.screen.Sync()
			u.syncViewport()
			u.draw()
		case *tcell.EventKey:
			if !u.handleKey(ev) {
				return nil
			}
			u.followCursor()
			u.draw()
		}
	}
}

// handleKey dispatches one key. Returns false to quit.
func (u *UI) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		u.accept()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'w':
			u.report("word", u.session.AcceptWord())
		case 'l':
			u.report("line", u.session.AcceptLine())
		case 'c':
			u.report("clear", u.session.ClearSuggestion())
		case 'r':
			u.renderNext()
		}
	}
	return true
}

// accept commits the whole suggestion, falling back to a literal tab
// when nothing is rendered, the same way the plugin's Tab mapping does.
func (u *UI) accept() {
	err := u.session.Accept()
	if errors.Is(err, session.ErrNoSuggestion) {
		u.report("tab", u.session.FeedFallbackKey())
		return
	}
	u.report("accept", err)
}

func (u *UI) renderNext() {
	if len(u.samples) == 0 {
		return
	}
	lines := u.samples[u.next%len(u.samples)]
	u.next++
	u.report("render", u.session.RenderSuggestion(lines))
}

func (u *UI) report(op string, err error) {
	if err != nil {
		u.status = op + ": " + err.Error()
		return
	}
	u.status = ""
}

// syncViewport keeps the host's window height in step with the screen,
// reserving the bottom row for the status line.
func (u *UI) syncViewport() {
	_, height := u.screen.Size()
	vp, _ := u.host.Viewport()
	if h := height - 1; h > 0 {
		vp.Height = h
	}
	u.host.SetViewport(vp)
}

// followCursor nudges the top line just enough to keep the cursor in
// view. Recentering after a commit is the session's job; this only
// covers manual scroll drift.
func (u *UI) followCursor() {
	vp, _ := u.host.Viewport()
	cursor, _ := u.host.Cursor()
	top := vp.TopLine
	if cursor.Row < top {
		top = cursor.Row
	}
	if cursor.Row >= top+vp.Height {
		top = cursor.Row - vp.Height + 1
	}
	if top != vp.TopLine {
		vp.TopLine = top
		u.host.SetViewport(vp)
	}
}

func (u *UI) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	if height < 1 {
		u.screen.Show()
		return
	}

	lines := u.host.Lines()
	cursor, _ := u.host.Cursor()
	vp, _ := u.host.Viewport()
	inline, below := u.overlay()

	u.screen.HideCursor()
	y := 0
	for row := vp.TopLine; row >= 0 && row < len(lines) && y < height-1; row++ {
		text := lines[row]
		if inline != nil && inline.At.Row == row {
			x := u.drawText(0, y, text[:inline.At.Col], styleText)
			x = u.drawText(x, y, inline.Chunk.Text, styleGhost)
			u.drawText(x, y, text[inline.At.Col:], styleText)
		} else {
			u.drawText(0, y, text, styleText)
		}
		if row == cursor.Row {
			u.screen.ShowCursor(screenCol(text, cursor.Col), y)
		}
		y++
		for _, chunks := range below[row] {
			if y >= height-1 {
				break
			}
			x := 0
			for _, c := range chunks {
				x = u.drawText(x, y, c.Text, styleGhost)
			}
			y++
		}
	}
	u.drawStatus(width, height-1)
	u.screen.Show()
}

// overlay reads the session's marks back from the host: at most one
// inline chunk plus virtual rows grouped by anchor line.
func (u *UI) overlay() (*editor.Mark, map[int][][]editor.Chunk) {
	ns, ok := u.host.Namespace(u.namespace)
	if !ok {
		return nil, nil
	}
	var inline *editor.Mark
	below := make(map[int][][]editor.Chunk)
	for _, m := range u.host.Marks(ns) {
		switch m.Kind {
		case editor.MarkInline:
			mark := m
			inline = &mark
		case editor.MarkBelow:
			below[m.At.Row] = append(below[m.At.Row], m.Rows...)
		}
	}
	return inline, below
}

func (u *UI) drawStatus(width, y int) {
	stats := u.session.Stats()
	left := " tab accept  w word  l line  c clear  r cycle  q quit "
	if u.status != "" {
		left = " " + u.status + " "
	}
	right := fmt.Sprintf(" %dL/%dB accepted  renders %d  commits %d ",
		stats.AcceptedLines, stats.AcceptedBytes, stats.Renders, stats.Commits)

	for x := 0; x < width; x++ {
		u.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	u.drawText(0, y, left, styleStatus)
	if start := width - len(right); start > len(left) {
		u.drawText(start, y, right, styleStatus)
	}
}

// drawText writes s starting at x and returns the next column. Tabs
// expand to the next tab stop.
func (u *UI) drawText(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		if r == '\t' {
			next := x + tabWidth - x%tabWidth
			for ; x < next; x++ {
				u.screen.SetContent(x, y, ' ', nil, style)
			}
			continue
		}
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// screenCol converts a byte offset in line to a screen column, expanding
// tabs at tab stops.
func screenCol(line string, byteCol int) int {
	col := 0
	offset := 0
	for _, r := range line {
		if offset >= byteCol {
			return col
		}
		if r == '\t' {
			col += tabWidth - col%tabWidth
		} else {
			col++
		}
		offset += utf8.RuneLen(r)
	}
	return col
}
