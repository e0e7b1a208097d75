package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "gf"

// Dirs holds the per-user locations used by gf
type Dirs struct {
	ConfigPath string // config.yaml
	StatePath  string // logs and other runtime state
}

// New resolves XDG-compliant paths for the current user
func New() (*Dirs, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}

	statePath, err := getStatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine state path: %w", err)
	}

	return &Dirs{
		ConfigPath: configPath,
		StatePath:  statePath,
	}, nil
}

// getConfigPath follows XDG_CONFIG_HOME on Unix and APPDATA on Windows
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// getStatePath follows XDG_STATE_HOME on Unix and LOCALAPPDATA on Windows
func getStatePath() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}

	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		return filepath.Join(localAppData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "state", appName), nil
}

// Initialize creates the directories if they don't exist
func (d *Dirs) Initialize() error {
	directories := []string{
		filepath.Dir(d.ConfigPath),
		d.StatePath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogPath returns the path of the structured log file
func (d *Dirs) LogPath() string {
	return filepath.Join(d.StatePath, appName+".log")
}
