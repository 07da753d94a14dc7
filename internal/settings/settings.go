// Package settings persists the small amount of state the tool keeps
// between runs: the last sequence file, the selected sequences, and the
// toggle hotkey. One flat JSON file, nothing else.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
)

const appDirName = "wow-auto"

// Settings mirrors the JSON settings file.
type Settings struct {
	JSONPath          string   `json:"json_path"`               // Last loaded sequence file
	SelectedSequences []string `json:"selected_sequences"`      // Names chosen for the session
	ToggleKey         string   `json:"toggle_key"`              // Global hotkey flipping the active flag
	WindowTitles      []string `json:"window_titles,omitempty"` // Foreground titles that open the gate
	DryRun            bool     `json:"dry_run,omitempty"`       // Suppress real input injection
}

// Default returns the settings used before anything was saved.
func Default() Settings {
	return Settings{
		ToggleKey:    "f8",
		WindowTitles: []string{"World of Warcraft"},
	}
}

// Dir returns the per-OS settings directory.
func Dir() string {
	var dir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\wow-auto
		if appData := os.Getenv("APPDATA"); appData != "" {
			dir = filepath.Join(appData, appDirName)
		}
	case "darwin":
		// macOS: ~/Library/Application Support/wow-auto
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, "Library", "Application Support", appDirName)
		}
	}

	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, "."+appDirName)
		} else {
			dir = filepath.Join(".", appDirName)
		}
	}

	return dir
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "settings.json")
}

// Load reads settings from path. A missing file is not an error: the
// defaults come back instead.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, errors.Wrapf(err, "read settings %s", path)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, errors.Wrapf(err, "parse settings %s", path)
	}
	return s, nil
}

// Save writes settings to path, creating the directory if needed.
func (s Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create settings directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write settings")
	}
	return nil
}
