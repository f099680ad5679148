package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName  = "config.yaml"
	ConfigDirName   = ".ytmon"
	GlobalConfigDir = "ytmon"
)

// Loader handles configuration loading and discovery
type Loader struct {
	startDir  string
	explicit  string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new config loader starting from the given directory.
// A non-empty configPath bypasses discovery.
func NewLoader(startDir, configPath string) *Loader {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			startDir = "."
		}
	}

	return &Loader{
		startDir:  startDir,
		explicit:  configPath,
		lookupEnv: os.LookupEnv,
	}
}

// Load returns the defaults overlaid with the config file (when one exists)
// and YTMON_* environment variables. It does not validate; flags are applied
// on top by the caller first.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	configPath, err := l.findConfigFile()
	switch {
	case err == nil:
		if err := l.loadFromFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	case l.explicit != "":
		return nil, err
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return config, nil
}

// findConfigFile searches upward from the start directory for a config file
func (l *Loader) findConfigFile() (string, error) {
	if l.explicit != "" {
		if _, err := os.Stat(l.explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", l.explicit, err)
		}
		return l.explicit, nil
	}

	dir := l.startDir
	for {
		configPath := filepath.Join(dir, ConfigDirName, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	globalConfig := filepath.Join(xdg.ConfigHome, GlobalConfigDir, ConfigFileName)
	if _, err := os.Stat(globalConfig); err == nil {
		return globalConfig, nil
	}

	return "", fmt.Errorf("no config file found (searched upward from %s)", l.startDir)
}

// loadFromFile overlays a YAML file onto config. Keys absent from the file
// keep their current values.
func (l *Loader) loadFromFile(configPath string, config *Config) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	if v, ok := l.lookupEnv("YTMON_CHROME_BINARY"); ok && v != "" {
		config.Chrome.Binary = v
	}
	if v, ok := l.lookupEnv("YTMON_CHROMEDRIVER"); ok && v != "" {
		config.Driver.Path = v
	}
	if v, ok := l.lookupEnv("YTMON_USER_DATA_DIR"); ok && v != "" {
		config.Chrome.UserDataDir = v
	}
	if v, ok := l.lookupEnv("YTMON_LOG_FILE"); ok && v != "" {
		config.LogFile = v
	}
	if v, ok := l.lookupEnv("YTMON_BACKEND"); ok && v != "" {
		config.Driver.Backend = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"YTMON_DEBUG_PORT", &config.Chrome.DebugPort},
		{"YTMON_DRIVER_PORT", &config.Driver.Port},
		{"YTMON_WAIT_TIME", &config.Chrome.WaitTime},
	}
	for _, e := range ints {
		v, ok := l.lookupEnv(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	return nil
}

// Save writes the configuration as YAML to configPath
func (l *Loader) Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the file Load would read, or "" when none exists.
func (l *Loader) ConfigPath() string {
	path, err := l.findConfigFile()
	if err != nil {
		return ""
	}
	return path
}
