package hook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func loadedRunner(t *testing.T, src string) *Runner {
	t.Helper()
	r := NewRunner()
	t.Cleanup(r.Close)
	if err := r.LoadString(src); err != nil {
		t.Fatalf("LoadString() error: %v", err)
	}
	return r
}

func TestTransformRewritesLines(t *testing.T) {
	r := loadedRunner(t, `
function on_suggestion(lines)
	local out = {}
	for i, line in ipairs(lines) do
		out[i] = string.upper(line)
	end
	return out
end
`)

	got, err := r.Transform([]string{"foo", "bar"})
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if len(got) != 2 || got[0] != "FOO" || got[1] != "BAR" {
		t.Errorf("Transform() = %v, want [FOO BAR]", got)
	}
}

func TestTransformNilKeepsInput(t *testing.T) {
	r := loadedRunner(t, `
function on_suggestion(lines)
	return nil
end
`)

	got, err := r.Transform([]string{"keep", "me"})
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if len(got) != 2 || got[0] != "keep" || got[1] != "me" {
		t.Errorf("Transform() = %v, want input unchanged", got)
	}
}

func TestTransformEmptyTableSuppresses(t *testing.T) {
	r := loadedRunner(t, `
function on_suggestion(lines)
	return {}
end
`)

	got, err := r.Transform([]string{"gone"})
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Transform() = %v, want empty", got)
	}
}

func TestTransformScriptError(t *testing.T) {
	r := loadedRunner(t, `
function on_suggestion(lines)
	error("hook bug")
end
`)

	if _, err := r.Transform([]string{"x"}); err == nil {
		t.Error("Transform() = nil error, want script error")
	}
}

func TestTransformRejectsBadReturns(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"number return", `function on_suggestion(lines) return 7 end`},
		{"non-string entry", `function on_suggestion(lines) return {"ok", 5} end`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := loadedRunner(t, tt.src)
			if _, err := r.Transform([]string{"x"}); err == nil {
				t.Error("Transform() = nil error, want type error")
			}
		})
	}
}

func TestTransformBeforeLoad(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	if _, err := r.Transform([]string{"x"}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Transform() error = %v, want ErrNotLoaded", err)
	}
}

func TestLoadRequiresHookFunction(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	err := r.LoadString(`local x = 1`)
	if !errors.Is(err, ErrMissingFunction) {
		t.Errorf("LoadString() error = %v, want ErrMissingFunction", err)
	}
	if r.Loaded() {
		t.Error("Loaded() = true after failed load, want false")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hook.lua")
	script := `
function on_suggestion(lines)
	return {lines[1]}
end
`
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner()
	defer r.Close()
	if err := r.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got, err := r.Transform([]string{"first", "second"})
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if len(got) != 1 || got[0] != "first" {
		t.Errorf("Transform() = %v, want [first]", got)
	}
}

func TestChunkLoadersUnavailable(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	if err := r.LoadString(`dofile("/etc/passwd")`); err == nil {
		t.Error("LoadString() = nil error, want failure calling removed dofile")
	}
}

func TestTransformAfterClose(t *testing.T) {
	r := NewRunner()
	if err := r.LoadString(`function on_suggestion(lines) return nil end`); err != nil {
		t.Fatal(err)
	}
	r.Close()

	if _, err := r.Transform([]string{"x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Transform() error = %v, want ErrClosed", err)
	}
	if err := r.LoadString(`x = 1`); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadString() error = %v, want ErrClosed", err)
	}
}
