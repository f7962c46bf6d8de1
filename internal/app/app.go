package app

import (
	"os"
	"sync"
	"time"

	"github.com/cxwx/fittencode.nvim/internal/config"
	"github.com/cxwx/fittencode.nvim/internal/editor"
	"github.com/cxwx/fittencode.nvim/internal/event"
	"github.com/cxwx/fittencode.nvim/internal/hook"
	"github.com/cxwx/fittencode.nvim/internal/session"
)

// Application is the central coordinator for the plugin engine. It owns
// the configuration, logger, event bus, optional Lua hook and config
// watcher, and hands out sessions bound to editor hosts.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	cfg     config.Config
	log     *Logger
	logFile *os.File
	bus     *event.Bus
	metrics *Metrics

	// Optional components
	hook    *hook.Runner
	watcher *config.Watcher

	// Attached sessions by ID
	sessions map[string]*session.Session

	closed bool

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty runs on
	// built-in defaults plus environment overrides.
	ConfigPath string

	// LogLevel overrides the configured logging level when set.
	LogLevel string

	// LogFile overrides the configured log destination when set.
	LogFile string

	// Debug forces debug-level logging.
	Debug bool

	// Watch reloads the config file when it changes on disk.
	Watch bool
}

// New creates an application with the given options. Component failures
// degrade rather than abort: a broken config file falls back to
// defaults, a broken hook leaves suggestions untransformed, a failed
// watch leaves the config static. Every fallback is logged.
func New(opts Options) *Application {
	app := &Application{
		opts:     opts,
		sessions: make(map[string]*session.Session),
	}
	app.bootstrap()
	return app
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() {
	// 1. Config
	cfg, loadErr := config.Load(app.opts.ConfigPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if app.opts.LogLevel != "" {
		cfg.LogLevel = app.opts.LogLevel
	}
	if app.opts.Debug {
		cfg.LogLevel = "debug"
	}
	if app.opts.LogFile != "" {
		cfg.LogFile = app.opts.LogFile
	}
	app.cfg = cfg

	// 2. Logger
	log, logFile, err := NewLoggerFromConfig(cfg)
	if err != nil {
		lc := DefaultLoggerConfig()
		lc.Level = ParseLogLevel(cfg.LogLevel)
		log = NewLogger(lc)
		log.Warn("cannot open log file %s, logging to stderr: %v", cfg.LogFile, err)
	}
	app.log = log
	app.logFile = logFile
	if loadErr != nil {
		app.log.Warn("config load failed, using defaults: %v", loadErr)
	}

	// 3. Event bus, with metrics fed from it
	app.bus = event.NewBus()
	app.metrics = NewMetrics()
	app.wireMetrics()

	// 4. Lua hook
	if cfg.HookPath != "" {
		r := hook.NewRunner()
		if err := r.Load(cfg.HookPath); err != nil {
			app.log.Warn("suggestion hook %s not loaded: %v", cfg.HookPath, err)
			r.Close()
		} else {
			app.hook = r
			app.log.Info("suggestion hook loaded: %s", cfg.HookPath)
		}
	}

	// 5. Config watcher
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.Watch(app.opts.ConfigPath, cfg.ReloadDebounce(), app.applyConfig, app.reloadError)
		if err != nil {
			app.log.Warn("config watch on %s failed: %v", app.opts.ConfigPath, err)
		} else {
			app.watcher = w
		}
	}
}

// wireMetrics feeds the lifecycle counters from bus events.
func (app *Application) wireMetrics() {
	_, _ = app.bus.SubscribeFunc("suggestion.*", func(ev event.Event) {
		switch ev.Topic {
		case event.TopicRendered:
			app.metrics.RecordRender()
		case event.TopicCleared:
			app.metrics.RecordClear()
		case event.TopicCommitted:
			info, _ := ev.Payload.(session.CommitInfo)
			app.metrics.RecordCommit(info.Lines, info.Bytes)
		}
	})
	_, _ = app.bus.SubscribeFunc(event.TopicReloaded, func(event.Event) {
		app.metrics.RecordReload()
	})
}

// Attach creates a session bound to the given editor host. The session
// shares the application's config, bus, logger and hook.
func (app *Application) Attach(host editor.Host) (*session.Session, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return nil, ErrClosed
	}

	opts := session.Options{
		Config: app.cfg,
		Bus:    app.bus,
		Logger: app.log.WithComponent("session"),
	}
	if app.hook != nil {
		opts.Hook = app.hook
	}

	s := session.New(host, opts)
	app.sessions[s.ID()] = s
	app.log.Info("session attached: %s", s.ID())
	return s, nil
}

// Detach removes a session, clearing its overlay best effort.
func (app *Application) Detach(id string) error {
	app.mu.Lock()
	s, ok := app.sessions[id]
	if ok {
		delete(app.sessions, id)
	}
	app.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	_ = s.ClearSuggestion()
	app.log.Info("session detached: %s", id)
	return nil
}

// Session returns the attached session with the given ID.
func (app *Application) Session(id string) (*session.Session, bool) {
	app.mu.RLock()
	defer app.mu.RUnlock()
	s, ok := app.sessions[id]
	return s, ok
}

// Sessions returns all attached sessions.
func (app *Application) Sessions() []*session.Session {
	app.mu.RLock()
	defer app.mu.RUnlock()
	out := make([]*session.Session, 0, len(app.sessions))
	for _, s := range app.sessions {
		out = append(out, s)
	}
	return out
}

// SessionCount returns the number of attached sessions.
func (app *Application) SessionCount() int {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return len(app.sessions)
}

// applyConfig swaps in a new config and pushes it to every attached
// session. The watcher calls it on each reload.
func (app *Application) applyConfig(cfg config.Config) {
	app.mu.Lock()
	app.cfg = cfg
	sessions := make([]*session.Session, 0, len(app.sessions))
	for _, s := range app.sessions {
		sessions = append(sessions, s)
	}
	app.mu.Unlock()

	app.log.SetLevel(ParseLogLevel(cfg.LogLevel))
	for _, s := range sessions {
		s.SetConfig(cfg)
	}
	app.bus.Publish(event.TopicReloaded, cfg)
	app.log.Info("config reloaded: highlight=%s nudge=%v level=%s",
		cfg.Highlight, cfg.Nudge, cfg.LogLevel)
}

func (app *Application) reloadError(err error) {
	app.log.Warn("config reload failed: %v", err)
}

// Shutdown stops the watcher and hook, logs final stats and closes the
// log file. Safe to call more than once.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	watcher := app.watcher
	runner := app.hook
	logFile := app.logFile
	app.watcher = nil
	app.hook = nil
	app.logFile = nil
	app.mu.Unlock()

	errs := NewErrorList()
	if watcher != nil {
		errs.Add(WrapError(watcher.Close(), "closing config watcher"))
	}
	if runner != nil {
		runner.Close()
	}

	snap := app.metrics.Snapshot()
	app.log.Info("shutting down: uptime=%s requests=%d renders=%d commits=%d accept-rate=%.0f%% reloads=%d",
		snap.Uptime.Round(time.Millisecond), snap.RequestCount, snap.Renders,
		snap.Commits, snap.AcceptRate(), snap.Reloads)

	if logFile != nil {
		app.log.SetOutput(os.Stderr)
		errs.Add(WrapError(logFile.Close(), "closing log file"))
	}
	return errs.AsError()
}

// Config returns the current configuration.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.log
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Watching reports whether the config file is being watched for
// changes.
func (app *Application) Watching() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.watcher != nil
}
