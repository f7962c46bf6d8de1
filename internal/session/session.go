// Package session ties the suggestion engine together: one Session owns
// the overlay renderer, the buffer committer, the formatting guard and
// the current suggestion, and exposes the operations the editor calls.
//
// All state lives on the Session rather than in package variables, so two
// editors (or a test and a preview) can run side by side without sharing
// overlay namespaces or formatting snapshots.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/cxwx/fittencode.nvim/internal/commit"
	"github.com/cxwx/fittencode.nvim/internal/config"
	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/event"
	"github.com/cxwx/fittencode.nvim/internal/format"
	"github.com/cxwx/fittencode.nvim/internal/render"
	"github.com/cxwx/fittencode.nvim/internal/suggestion"
)

// ErrNoSuggestion is returned by accept operations when nothing is
// rendered.
var ErrNoSuggestion = errors.New("no suggestion to accept")

// Logger is the logging surface the session uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Transformer rewrites suggestion lines before they render. A hook
// runner satisfies it.
type Transformer interface {
	Loaded() bool
	Transform(lines []string) ([]string, error)
}

// RenderInfo is the payload published with every rendered suggestion.
type RenderInfo struct {
	SessionID string
	Lines     int
	Height    int
}

// ClearInfo is the payload published when an overlay is cleared.
type ClearInfo struct {
	SessionID string
}

// CommitInfo is the payload published with every committed suggestion.
type CommitInfo struct {
	SessionID string
	Lines     int
	Bytes     int
	Cursor    editor.Position
}

// Stats counts what a session has done.
type Stats struct {
	Renders       uint64
	Clears        uint64
	Commits       uint64
	AcceptedLines uint64
	AcceptedBytes uint64
}

// Options configures a Session. Zero values fall back to defaults: the
// built-in config, a private bus, no logging, no hook.
type Options struct {
	Config config.Config
	Bus    *event.Bus
	Logger Logger
	Hook   Transformer
}

// Session drives suggestion rendering and acceptance for one editor.
type Session struct {
	mu        sync.Mutex
	id        string
	host      editor.Host
	renderer  *render.Renderer
	committer *commit.Committer
	guard     *format.Guard
	bus       *event.Bus
	log       Logger
	hook      Transformer
	cfg       config.Config

	current suggestion.Suggestion
	stats   Stats
}

// New creates a session on host.
func New(host editor.Host, opts Options) *Session {
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	guard := format.NewGuard(host)
	committer := commit.New(host, guard)
	committer.SetNudge(cfg.Nudge)

	return &Session{
		id:        uuid.NewString(),
		host:      host,
		renderer:  render.New(host, cfg.Namespace, cfg.Highlight),
		committer: committer,
		guard:     guard,
		bus:       bus,
		log:       log,
		hook:      opts.Hook,
		cfg:       cfg,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Bus returns the event bus the session publishes on.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// RenderSuggestion draws lines as a ghost overlay at the cursor,
// replacing any previous overlay. Empty input is a silent no-op that
// leaves existing state alone. A loaded hook sees the lines first and may
// rewrite or suppress them.
func (s *Session) RenderSuggestion(lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines = s.applyHook(lines)

	sg := suggestion.New(lines)
	if sg.IsEmpty() {
		return nil
	}

	if err := s.renderer.Render(sg); err != nil {
		return err
	}
	s.current = sg
	s.stats.Renders++
	s.bus.Publish(event.TopicRendered, RenderInfo{
		SessionID: s.id,
		Lines:     sg.LineCount(),
		Height:    s.renderer.Height(),
	})
	s.log.Debug("rendered suggestion: %d line(s)", sg.LineCount())
	return nil
}

// ClearSuggestion removes the overlay and forgets the current
// suggestion. Calling it with nothing rendered is harmless.
func (s *Session) ClearSuggestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.renderer.Clear(); err != nil {
		return err
	}
	s.current = suggestion.Suggestion{}
	s.stats.Clears++
	s.bus.Publish(event.TopicCleared, ClearInfo{SessionID: s.id})
	return nil
}

// CommitSuggestion splices the given lines into the buffer at the
// cursor. It does not touch the overlay or the current suggestion; it is
// the raw commit operation for callers that manage rendering themselves.
func (s *Session) CommitSuggestion(lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(suggestion.New(lines))
}

// Accept commits the current suggestion and clears the overlay.
func (s *Session) Accept() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsEmpty() {
		return ErrNoSuggestion
	}
	if err := s.commitLocked(s.current); err != nil {
		return err
	}
	return s.consumeLocked(suggestion.Suggestion{})
}

// AcceptWord commits the next word of the current suggestion and
// re-renders the remainder at the advanced cursor.
func (s *Session) AcceptWord() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, rest, ok := s.current.SplitWord()
	if !ok {
		return ErrNoSuggestion
	}
	if err := s.commitLocked(head); err != nil {
		return err
	}
	return s.consumeLocked(rest)
}

// AcceptLine commits the first line of the current suggestion and
// re-renders the remainder at the advanced cursor.
func (s *Session) AcceptLine() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, rest, ok := s.current.SplitLine()
	if !ok {
		return ErrNoSuggestion
	}
	if err := s.commitLocked(head); err != nil {
		return err
	}
	return s.consumeLocked(rest)
}

// FeedFallbackKey injects a plain tab key, the input path used when an
// accept key is pressed with nothing to accept.
func (s *Session) FeedFallbackKey() error {
	return s.host.InsertTab()
}

// Visible reports whether an overlay is currently drawn.
func (s *Session) Visible() bool {
	return s.renderer.Visible()
}

// Current returns the lines of the current suggestion, nil when there is
// none.
func (s *Session) Current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.IsEmpty() {
		return nil
	}
	return s.current.Lines()
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// SetConfig applies a reloaded configuration. The overlay namespace is
// fixed for the session's lifetime; highlight, nudge and the rest take
// effect immediately.
func (s *Session) SetConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.renderer.SetHighlight(cfg.Highlight)
	s.committer.SetNudge(cfg.Nudge)
	s.log.Debug("config applied: highlight=%s nudge=%v", cfg.Highlight, cfg.Nudge)
}

// Config returns the session's active configuration.
func (s *Session) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Session) applyHook(lines []string) []string {
	if s.hook == nil || !s.hook.Loaded() {
		return lines
	}
	out, err := s.hook.Transform(lines)
	if err != nil {
		s.log.Warn("suggestion hook failed, using original lines: %v", err)
		return lines
	}
	return out
}

// commitLocked writes sg into the buffer and records it. Empty input is
// a silent no-op.
func (s *Session) commitLocked(sg suggestion.Suggestion) error {
	if sg.IsEmpty() {
		return nil
	}
	if err := s.committer.Commit(sg); err != nil {
		return err
	}

	info := CommitInfo{SessionID: s.id, Lines: sg.LineCount(), Bytes: len(sg.Text())}
	if pos, err := s.host.Cursor(); err == nil {
		info.Cursor = pos
	}
	s.stats.Commits++
	s.stats.AcceptedLines += uint64(info.Lines)
	s.stats.AcceptedBytes += uint64(info.Bytes)
	s.bus.Publish(event.TopicCommitted, info)
	s.log.Debug("committed suggestion: %d line(s), %d byte(s)", info.Lines, info.Bytes)
	return nil
}

// consumeLocked replaces the current suggestion after a commit: clear
// the overlay when nothing remains, re-render the remainder otherwise.
func (s *Session) consumeLocked(rest suggestion.Suggestion) error {
	if rest.IsEmpty() {
		s.current = suggestion.Suggestion{}
		return s.renderer.Clear()
	}
	if err := s.renderer.Render(rest); err != nil {
		return err
	}
	s.current = rest
	return nil
}
