package config

import (
	"os"
	"path/filepath"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/errors"
)

// GlobalConfigDir returns the path to the global devplan configuration
// directory, typically ~/.devplan.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.DevplanHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory, always .devplan relative to the project root.
func ProjectConfigDir() string {
	return constants.DevplanHome
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.devplan/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .devplan/config.yaml relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}
