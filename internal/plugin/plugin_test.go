package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstallThenUninstall(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home) // os.UserHomeDir reads this on windows

	src := filepath.Join(t.TempDir(), "plugin.rbxm")
	if err := os.WriteFile(src, []byte("fake plugin bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := Install(src); err != nil {
		t.Fatalf("Install: %v", err)
	}

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	dest := filepath.Join(dir, pluginFileName)
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read installed plugin: %v", err)
	}
	if string(got) != "fake plugin bytes" {
		t.Errorf("got %q", got)
	}

	if err := Uninstall(); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("expected plugin file to be removed")
	}
}

func TestUninstallWithoutInstallIsNoop(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	if err := Uninstall(); err != nil {
		t.Fatalf("Uninstall on a clean home: %v", err)
	}
}
