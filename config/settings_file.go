package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// LoadSettingsFile reads player settings from a .yaml, .yml or .json file.
// Keys missing from the file keep their core.DefaultSettings values. A YAML
// rules list must contain all five slots; a shorter JSON rules array leaves
// the remaining slots empty and disabled.
func LoadSettingsFile(path string) (core.Settings, error) {
	settings := core.DefaultSettings()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return core.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	case ".json":
		err = json.Unmarshal(data, &settings)
	default:
		return core.Settings{}, fmt.Errorf("settings file %s must be .yaml, .yml or .json", path)
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("parse settings file %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return settings, nil
}

// WriteSettingsFile stores settings as YAML or JSON depending on the extension.
func WriteSettingsFile(path string, settings core.Settings) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(settings)
	case ".json":
		data, err = json.MarshalIndent(settings, "", "  ")
	default:
		return fmt.Errorf("settings file %s must be .yaml, .yml or .json", path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
