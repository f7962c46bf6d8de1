package nvimhost

import (
	"runtime/debug"

	"github.com/neovim/go-client/nvim/plugin"

	"github.com/cxwx/fittencode.nvim/internal/app"
	"github.com/cxwx/fittencode.nvim/internal/session"
)

// Register attaches a session for the Neovim connection and exposes the
// plugin's RPC functions. Called by plugin.Main during both manifest
// generation and normal serving.
func Register(p *plugin.Plugin, application *app.Application) error {
	host := New(p.Nvim)
	s, err := application.Attach(host)
	if err != nil {
		return err
	}

	h := &handlers{
		app:     application,
		session: s,
		log:     application.Logger().WithComponent("rpc"),
	}

	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeRender"}, h.render)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeClear"}, h.clear)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeCommit"}, h.commit)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeAccept"}, h.accept)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeAcceptWord"}, h.acceptWord)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeAcceptLine"}, h.acceptLine)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeTab"}, h.tab)
	p.HandleFunction(&plugin.FunctionOptions{Name: "FittencodeStatus"}, h.status)

	p.HandleAutocmd(&plugin.AutocmdOptions{
		Event:   "VimLeavePre",
		Group:   "fittencode",
		Pattern: "*",
	}, h.shutdown)

	return nil
}

type handlers struct {
	app     *app.Application
	session *session.Session
	log     *app.Logger
}

// guard times the request and turns handler panics into errors Neovim
// can display instead of killing the plugin host.
func (h *handlers) guard(op string, fn func() error) (err error) {
	timer := app.StartTimer()
	defer func() {
		h.app.Metrics().RecordRequest(timer.Elapsed())
	}()
	defer func() {
		if r := recover(); r != nil {
			err = app.NewRecoveredPanicError(r, string(debug.Stack()))
			h.log.Error("%s recovered: %v", op, r)
		}
	}()

	if err := fn(); err != nil {
		return app.NewOperationError(op, h.session.ID(), err)
	}
	return nil
}

func (h *handlers) render(lines []string) error {
	return h.guard("render", func() error {
		return h.session.RenderSuggestion(lines)
	})
}

func (h *handlers) clear() error {
	return h.guard("clear", func() error {
		return h.session.ClearSuggestion()
	})
}

func (h *handlers) commit(lines []string) error {
	return h.guard("commit", func() error {
		return h.session.CommitSuggestion(lines)
	})
}

func (h *handlers) accept() error {
	return h.guard("accept", func() error {
		return h.session.Accept()
	})
}

func (h *handlers) acceptWord() error {
	return h.guard("accept-word", func() error {
		return h.session.AcceptWord()
	})
}

func (h *handlers) acceptLine() error {
	return h.guard("accept-line", func() error {
		return h.session.AcceptLine()
	})
}

func (h *handlers) tab() error {
	return h.guard("tab", func() error {
		return h.session.FeedFallbackKey()
	})
}

// status reports session and lifetime counters for statusline
// integrations.
func (h *handlers) status() (map[string]interface{}, error) {
	stats := h.session.Stats()
	snap := h.app.Metrics().Snapshot()
	return map[string]interface{}{
		"session":        h.session.ID(),
		"visible":        h.session.Visible(),
		"renders":        stats.Renders,
		"clears":         stats.Clears,
		"commits":        stats.Commits,
		"accepted_lines": stats.AcceptedLines,
		"accepted_bytes": stats.AcceptedBytes,
		"accept_rate":    snap.AcceptRate(),
		"uptime_ms":      snap.Uptime.Milliseconds(),
	}, nil
}

func (h *handlers) shutdown() {
	if err := h.app.Shutdown(); err != nil {
		h.log.Error("shutdown: %v", err)
	}
}
