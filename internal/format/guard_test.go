package format

import (
	"errors"
	"testing"

	"github.com/cxwx/fittencode.nvim/internal/editor"
)

func TestSuspendAppliesPlainSettings(t *testing.T) {
	host := editor.NewMemoryHost("line")
	g := NewGuard(host)

	before, err := host.SnapshotSettings()
	if err != nil {
		t.Fatal(err)
	}
	if before == editor.PlainSettings() {
		t.Fatal("host settings already plain, test would prove nothing")
	}

	if err := g.Suspend(); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}

	during, _ := host.SnapshotSettings()
	if during != editor.PlainSettings() {
		t.Errorf("settings during suspension = %+v, want plain", during)
	}
	if !g.Suspended() {
		t.Error("Suspended() = false after Suspend, want true")
	}
}

func TestRestoreBringsSettingsBack(t *testing.T) {
	host := editor.NewMemoryHost("line")
	custom := editor.Settings{
		AutoIndent:    true,
		SmartIndent:   true,
		FormatOptions: "croql",
		TextWidth:     100,
	}
	if err := host.ApplySettings(custom); err != nil {
		t.Fatal(err)
	}

	g := NewGuard(host)
	if err := g.Suspend(); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}
	if err := g.Restore(); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	after, _ := host.SnapshotSettings()
	if after != custom {
		t.Errorf("settings after restore = %+v, want %+v", after, custom)
	}
	if g.Suspended() {
		t.Error("Suspended() = true after Restore, want false")
	}
}

func TestNestedSuspendFails(t *testing.T) {
	g := NewGuard(editor.NewMemoryHost("line"))

	if err := g.Suspend(); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}
	if err := g.Suspend(); !errors.Is(err, ErrAlreadySuspended) {
		t.Errorf("second Suspend() error = %v, want ErrAlreadySuspended", err)
	}
}

func TestRestoreWithoutSuspendFails(t *testing.T) {
	g := NewGuard(editor.NewMemoryHost("line"))

	if err := g.Restore(); !errors.Is(err, ErrNotSuspended) {
		t.Errorf("Restore() error = %v, want ErrNotSuspended", err)
	}
}

func TestGuardReusableAfterRestore(t *testing.T) {
	g := NewGuard(editor.NewMemoryHost("line"))

	for i := 0; i < 3; i++ {
		if err := g.Suspend(); err != nil {
			t.Fatalf("Suspend() round %d error: %v", i, err)
		}
		if err := g.Restore(); err != nil {
			t.Fatalf("Restore() round %d error: %v", i, err)
		}
	}
}
