package session

import (
	"errors"
	"testing"

	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/event"
	"github.com/cxwx/fittencode.nvim/internal/hook"
)

func TestRenderThenClearLeavesBufferUntouched(t *testing.T) {
	host := editor.NewMemoryHost("func main() {", "}")
	if err := host.SetCursor(editor.Position{Row: 0, Col: 13}); err != nil {
		t.Fatal(err)
	}
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"// entry", "return"}); err != nil {
		t.Fatalf("RenderSuggestion() error: %v", err)
	}
	if host.MarkCount() == 0 {
		t.Fatal("no overlay marks after render")
	}
	if host.Text() != "func main() {\n}" {
		t.Errorf("buffer text changed by render: %q", host.Text())
	}

	if err := s.ClearSuggestion(); err != nil {
		t.Fatalf("ClearSuggestion() error: %v", err)
	}
	if host.MarkCount() != 0 {
		t.Errorf("MarkCount() = %d after clear, want 0", host.MarkCount())
	}
	if host.Text() != "func main() {\n}" {
		t.Errorf("buffer text changed: %q", host.Text())
	}
	pos, _ := host.Cursor()
	if pos != (editor.Position{Row: 0, Col: 13}) {
		t.Errorf("cursor = %v, want unchanged (0,13)", pos)
	}
}

func TestRenderEmptyIsNoOp(t *testing.T) {
	host := editor.NewMemoryHost("text")
	s := New(host, Options{})

	if err := s.RenderSuggestion(nil); err != nil {
		t.Fatalf("RenderSuggestion(nil) error: %v", err)
	}
	if host.NamespaceCount() != 0 {
		t.Errorf("NamespaceCount() = %d, want 0", host.NamespaceCount())
	}
	if err := s.ClearSuggestion(); err != nil {
		t.Fatalf("ClearSuggestion() error: %v", err)
	}
	if s.Visible() {
		t.Error("Visible() = true, want false")
	}
	pos, _ := host.Cursor()
	if pos != (editor.Position{}) {
		t.Errorf("cursor = %v, want unchanged origin", pos)
	}
}

func TestAcceptCommitsAndClears(t *testing.T) {
	host := editor.NewMemoryHost("he")
	if err := host.SetCursor(editor.Position{Row: 0, Col: 2}); err != nil {
		t.Fatal(err)
	}
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"llo world"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Accept(); err != nil {
		t.Fatalf("Accept() error: %v", err)
	}

	if host.Text() != "hello world" {
		t.Errorf("text = %q, want %q", host.Text(), "hello world")
	}
	pos, _ := host.Cursor()
	if pos != (editor.Position{Row: 0, Col: 11}) {
		t.Errorf("cursor = %v, want (0,11)", pos)
	}
	if host.MarkCount() != 0 {
		t.Errorf("MarkCount() = %d after accept, want 0", host.MarkCount())
	}
	if s.Current() != nil {
		t.Errorf("Current() = %v after accept, want nil", s.Current())
	}

	if err := s.Accept(); !errors.Is(err, ErrNoSuggestion) {
		t.Errorf("second Accept() error = %v, want ErrNoSuggestion", err)
	}
}

func TestAcceptWordSequence(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"foo bar"}); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		wantText   string
		wantCursor editor.Position
	}{
		{"foo", editor.Position{Row: 0, Col: 3}},
		{"foo ", editor.Position{Row: 0, Col: 4}},
		{"foo bar", editor.Position{Row: 0, Col: 7}},
	}
	for i, step := range steps {
		if err := s.AcceptWord(); err != nil {
			t.Fatalf("AcceptWord() step %d error: %v", i, err)
		}
		if host.Text() != step.wantText {
			t.Errorf("step %d text = %q, want %q", i, host.Text(), step.wantText)
		}
		if pos, _ := host.Cursor(); pos != step.wantCursor {
			t.Errorf("step %d cursor = %v, want %v", i, pos, step.wantCursor)
		}
	}

	if host.MarkCount() != 0 {
		t.Errorf("MarkCount() = %d after last word, want 0", host.MarkCount())
	}
	if err := s.AcceptWord(); !errors.Is(err, ErrNoSuggestion) {
		t.Errorf("AcceptWord() after exhaustion error = %v, want ErrNoSuggestion", err)
	}
	if got := s.Stats().Commits; got != 3 {
		t.Errorf("Commits = %d, want 3", got)
	}
}

func TestAcceptWordAcrossLineBreak(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"foo", "bar"}); err != nil {
		t.Fatal(err)
	}

	// Word, then the line break, then the word on the next line.
	for i := 0; i < 3; i++ {
		if err := s.AcceptWord(); err != nil {
			t.Fatalf("AcceptWord() step %d error: %v", i, err)
		}
	}

	if host.Text() != "foo\nbar" {
		t.Errorf("text = %q, want %q", host.Text(), "foo\nbar")
	}
	pos, _ := host.Cursor()
	if pos != (editor.Position{Row: 1, Col: 3}) {
		t.Errorf("cursor = %v, want (1,3)", pos)
	}
}

func TestAcceptLine(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"alpha", "beta"}); err != nil {
		t.Fatal(err)
	}

	if err := s.AcceptLine(); err != nil {
		t.Fatalf("AcceptLine() error: %v", err)
	}
	if host.Text() != "alpha\n" {
		t.Errorf("text = %q after first line, want %q", host.Text(), "alpha\n")
	}
	if pos, _ := host.Cursor(); pos != (editor.Position{Row: 1, Col: 0}) {
		t.Errorf("cursor = %v, want (1,0)", pos)
	}
	if !s.Visible() {
		t.Error("Visible() = false with remainder pending, want true")
	}

	if err := s.AcceptLine(); err != nil {
		t.Fatalf("AcceptLine() error: %v", err)
	}
	if host.Text() != "alpha\nbeta" {
		t.Errorf("text = %q, want %q", host.Text(), "alpha\nbeta")
	}
	if s.Visible() {
		t.Error("Visible() = true after last line, want false")
	}
}

func TestCommitSuggestionLeavesOverlayAlone(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"ghost"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitSuggestion([]string{"real"}); err != nil {
		t.Fatalf("CommitSuggestion() error: %v", err)
	}

	if host.Text() != "real" {
		t.Errorf("text = %q, want %q", host.Text(), "real")
	}
	if host.MarkCount() == 0 {
		t.Error("overlay cleared by raw commit, want untouched")
	}
	if got := s.Current(); len(got) != 1 || got[0] != "ghost" {
		t.Errorf("Current() = %v, want [ghost]", got)
	}
}

func TestHookRewritesSuggestion(t *testing.T) {
	r := hook.NewRunner()
	t.Cleanup(r.Close)
	if err := r.LoadString(`
function on_suggestion(lines)
	local out = {}
	for i, line in ipairs(lines) do
		out[i] = string.upper(line)
	end
	return out
end
`); err != nil {
		t.Fatal(err)
	}

	host := editor.NewMemoryHost("")
	s := New(host, Options{Hook: r})

	if err := s.RenderSuggestion([]string{"quiet"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Current(); len(got) != 1 || got[0] != "QUIET" {
		t.Errorf("Current() = %v, want [QUIET]", got)
	}
}

func TestHookSuppressesSuggestion(t *testing.T) {
	r := hook.NewRunner()
	t.Cleanup(r.Close)
	if err := r.LoadString(`function on_suggestion(lines) return {} end`); err != nil {
		t.Fatal(err)
	}

	host := editor.NewMemoryHost("")
	s := New(host, Options{Hook: r})

	if err := s.RenderSuggestion([]string{"blocked"}); err != nil {
		t.Fatal(err)
	}
	if s.Visible() {
		t.Error("Visible() = true for suppressed suggestion, want false")
	}
	if host.NamespaceCount() != 0 {
		t.Errorf("NamespaceCount() = %d, want 0", host.NamespaceCount())
	}
}

func TestHookFailureFallsBackToOriginal(t *testing.T) {
	r := hook.NewRunner()
	t.Cleanup(r.Close)
	if err := r.LoadString(`function on_suggestion(lines) error("broken hook") end`); err != nil {
		t.Fatal(err)
	}

	host := editor.NewMemoryHost("")
	s := New(host, Options{Hook: r})

	if err := s.RenderSuggestion([]string{"survives"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Current(); len(got) != 1 || got[0] != "survives" {
		t.Errorf("Current() = %v, want [survives]", got)
	}
}

func TestEventsPublishedInOrder(t *testing.T) {
	bus := event.NewBus()
	var topics []event.Topic
	var committed CommitInfo
	if _, err := bus.SubscribeFunc("*", func(ev event.Event) {
		topics = append(topics, ev.Topic)
		if info, ok := ev.Payload.(CommitInfo); ok {
			committed = info
		}
	}); err != nil {
		t.Fatal(err)
	}

	host := editor.NewMemoryHost("")
	s := New(host, Options{Bus: bus})

	if err := s.RenderSuggestion([]string{"ab"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Accept(); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearSuggestion(); err != nil {
		t.Fatal(err)
	}

	want := []event.Topic{event.TopicRendered, event.TopicCommitted, event.TopicCleared}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, topics[i], want[i])
		}
	}
	wantInfo := CommitInfo{
		SessionID: s.ID(),
		Lines:     1,
		Bytes:     2,
		Cursor:    editor.Position{Row: 0, Col: 2},
	}
	if committed != wantInfo {
		t.Errorf("committed payload = %+v, want %+v", committed, wantInfo)
	}
}

func TestFeedFallbackKey(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.FeedFallbackKey(); err != nil {
		t.Fatalf("FeedFallbackKey() error: %v", err)
	}
	if got := host.Counts().Tabs; got != 1 {
		t.Errorf("Tabs = %d, want 1", got)
	}
}

func TestStatsAccumulate(t *testing.T) {
	host := editor.NewMemoryHost("")
	s := New(host, Options{})

	if err := s.RenderSuggestion([]string{"one", "two"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Accept(); err != nil {
		t.Fatal(err)
	}

	stats := s.Stats()
	if stats.Renders != 1 {
		t.Errorf("Renders = %d, want 1", stats.Renders)
	}
	if stats.Commits != 1 {
		t.Errorf("Commits = %d, want 1", stats.Commits)
	}
	if stats.AcceptedLines != 2 {
		t.Errorf("AcceptedLines = %d, want 2", stats.AcceptedLines)
	}
	if stats.AcceptedBytes != 7 {
		t.Errorf("AcceptedBytes = %d, want 7 (len of one\\ntwo)", stats.AcceptedBytes)
	}

	if got := s.ID(); got == "" {
		t.Error("ID() empty, want uuid")
	}
}
