// Package hook runs a user-supplied Lua script that can rewrite
// suggestions before they render.
//
// The script defines a global function on_suggestion(lines) receiving the
// suggestion as an array of strings. It may return a replacement array,
// an empty array to suppress the suggestion, or nil to leave it alone.
//
// Scripts run in a restricted state: base, table, string and math
// libraries only, with the file and chunk loaders removed. A hook is a
// text transformer, not a plugin system.
package hook

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// FuncName is the global function a hook script must define.
const FuncName = "on_suggestion"

var (
	// ErrNotLoaded is returned by Transform before a script is loaded.
	ErrNotLoaded = errors.New("no hook script loaded")

	// ErrClosed is returned by operations on a closed runner.
	ErrClosed = errors.New("hook runner closed")

	// ErrMissingFunction is returned when a script defines no
	// on_suggestion function.
	ErrMissingFunction = errors.New("hook script defines no on_suggestion function")
)

// Runner owns one Lua state and serializes all access to it; the state
// itself is not goroutine-safe.
type Runner struct {
	mu     sync.Mutex
	state  *lua.LState
	path   string
	loaded bool
	closed bool
}

// NewRunner creates a runner with a fresh restricted Lua state.
func NewRunner() *Runner {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetTop(0)

	// Base brings the chunk loaders along; hooks get none of them.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &Runner{state: L}
}

// Load executes the script at path and checks that it defined the hook
// function.
func (r *Runner) Load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("loading hook %s: %w", path, err)
	}
	return r.bind(path)
}

// LoadString executes an in-memory script, for embedded hooks and tests.
func (r *Runner) LoadString(src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if err := r.state.DoString(src); err != nil {
		return fmt.Errorf("loading hook: %w", err)
	}
	return r.bind("<string>")
}

func (r *Runner) bind(path string) error {
	if r.state.GetGlobal(FuncName).Type() != lua.LTFunction {
		return fmt.Errorf("hook %s: %w", path, ErrMissingFunction)
	}
	r.path = path
	r.loaded = true
	return nil
}

// Loaded reports whether a script with a hook function is loaded.
func (r *Runner) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded && !r.closed
}

// Transform passes lines through the hook function. A nil return from the
// script keeps the input; a table return replaces it.
func (r *Runner) Transform(lines []string) (out []string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if !r.loaded {
		return nil, ErrNotLoaded
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("hook %s: panic: %v", r.path, rec)
		}
	}()

	L := r.state
	tbl := L.NewTable()
	for _, line := range lines {
		tbl.Append(lua.LString(line))
	}

	L.Push(L.GetGlobal(FuncName))
	L.Push(tbl)
	if err := L.PCall(1, 1, nil); err != nil {
		return nil, fmt.Errorf("hook %s: %w", r.path, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if ret == lua.LNil {
		return lines, nil
	}
	replacement, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("hook %s: returned %s, want table or nil", r.path, ret.Type())
	}

	n := replacement.Len()
	out = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		item := replacement.RawGetInt(i)
		s, ok := item.(lua.LString)
		if !ok {
			return nil, fmt.Errorf("hook %s: entry %d is %s, want string", r.path, i, item.Type())
		}
		out = append(out, string(s))
	}
	return out, nil
}

// Close releases the Lua state. Safe to call more than once.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.loaded = false
	r.state.Close()
}
