package config

import (
	"os"
	"path/filepath"
)

const AppName = "targetwatch"

// configDirOverride is set by SetConfigDir; tests and the --config-dir flag use it.
var configDirOverride string

// SetConfigDir points every path helper at dir instead of ~/.config/targetwatch.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

func GetConfigDir() (string, error) {
	configDir := configDirOverride
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config", AppName)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}

func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "dashboard.yaml"), nil
}

func GetDatabasePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "targetwatch.db"), nil
}

func GetLogsDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	logsDir := filepath.Join(configDir, "logs")

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}

	return logsDir, nil
}

func GetLogPath() (string, error) {
	logsDir, err := GetLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logsDir, "targetwatch.log"), nil
}

// EnsureConfigExists writes a starter dashboard.yaml when none is present.
func EnsureConfigExists() (string, error) {
	configFile, err := GetConfigFile()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := `# targetwatch dashboard
server:
  base_url: "http://127.0.0.1:5000"
  timeout: 30s

ui:
  panel_padding: 1
  animation_frames: 8
  animation_interval: 16ms

instances:
  - name: "example"
    targets:
      - id: "1"
        name: "localhost"
        paused: false
        details:
          - "127.0.0.1"
`

		if err := os.WriteFile(configFile, []byte(defaultConfig), 0644); err != nil {
			return "", err
		}
	}

	return configFile, nil
}
