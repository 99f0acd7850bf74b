// Package plugin installs and removes the companion editor plugin file from
// the local editor's plugin directory: find the platform's plugin directory,
// then copy (or remove) a single file there.
package plugin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

const pluginFileName = "InstanceSync.rbxm"

// Dir returns the local editor's plugin directory for the current platform,
// creating it if it doesn't already exist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("plugin: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Documents", "Roblox", "Plugins")
	case "windows":
		dir = filepath.Join(home, "AppData", "Local", "Roblox", "Plugins")
	default:
		dir = filepath.Join(home, ".local", "share", "roblox", "plugins")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("plugin: create %s: %w", dir, err)
	}
	return dir, nil
}

// Install copies the compiled plugin at pluginPath into the editor's plugin
// directory.
func Install(pluginPath string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	dest := filepath.Join(dir, pluginFileName)

	src, err := os.Open(pluginPath)
	if err != nil {
		return fmt.Errorf("plugin: open %s: %w", pluginPath, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("plugin: create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("plugin: copy to %s: %w", dest, err)
	}
	return nil
}

// Uninstall removes the installed plugin file, if present.
func Uninstall() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	dest := filepath.Join(dir, pluginFileName)
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("plugin: remove %s: %w", dest, err)
	}
	return nil
}
