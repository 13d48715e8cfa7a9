// Package dotdir resolves the .mnemosyne/ directory holding config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the mnemosyne directory.
	dirName = ".mnemosyne"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .mnemosyne/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.mnemosyne/ dir
//  3. Home ~/.mnemosyne/ dir
//
// Returns an empty string when no override is given and neither directory
// exists; callers then run on defaults and environment alone.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating mnemosyne directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if local := filepath.Join(cwd, dirName); isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory is not fatal: fall back to defaults.
		return "", nil
	}
	if homeDir := filepath.Join(home, dirName); isDir(homeDir) {
		return homeDir, nil
	}

	return "", nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
