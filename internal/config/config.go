package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Driver backends
const (
	BackendWebDriver = "webdriver"
	BackendCDP       = "cdp"
)

// Config represents the complete ytmon configuration
type Config struct {
	Chrome  ChromeConfig  `yaml:"chrome"`
	Driver  DriverConfig  `yaml:"driver"`
	Monitor MonitorConfig `yaml:"monitor"`
	Cleanup CleanupConfig `yaml:"cleanup"`
	LogFile string        `yaml:"log_file"`
}

// ChromeConfig describes the browser process ytmon launches
type ChromeConfig struct {
	Binary      string `yaml:"binary"`
	UserDataDir string `yaml:"user_data_dir"`
	DebugPort   int    `yaml:"debug_port"`
	StartURL    string `yaml:"start_url"`
	WaitTime    int    `yaml:"wait_time"` // seconds
}

// DriverConfig holds the remote-control driver settings
type DriverConfig struct {
	Path    string `yaml:"path"`
	Port    int    `yaml:"port"`
	Backend string `yaml:"backend"` // webdriver, cdp
}

// MonitorConfig holds the polling loop settings
type MonitorConfig struct {
	ExpectedDomain        string        `yaml:"expected_domain"`
	TitleSelector         string        `yaml:"title_selector"`
	ArtistSelector        string        `yaml:"artist_selector"`
	PollInterval          time.Duration `yaml:"poll_interval"`
	RetryInterval         time.Duration `yaml:"retry_interval"`
	ElementTimeout        time.Duration `yaml:"element_timeout"`
	PageLoadTimeout       time.Duration `yaml:"page_load_timeout"`
	MaxConnectionFailures int           `yaml:"max_connection_failures"`
}

// CleanupConfig controls the pre-launch process sweep
type CleanupConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ProcessNames []string `yaml:"process_names,omitempty"` // empty means the per-OS defaults
}

// DefaultConfig returns a new config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Chrome: ChromeConfig{
			DebugPort: 9222,
			StartURL:  "https://music.youtube.com",
			WaitTime:  15,
		},
		Driver: DriverConfig{
			Port:    9515,
			Backend: BackendWebDriver,
		},
		Monitor: MonitorConfig{
			ExpectedDomain:        "music.youtube.com",
			TitleSelector:         "ytmusic-player-bar .title",
			ArtistSelector:        "ytmusic-player-bar .byline a",
			PollInterval:          3 * time.Second,
			RetryInterval:         5 * time.Second,
			ElementTimeout:        10 * time.Second,
			PageLoadTimeout:       30 * time.Second,
			MaxConnectionFailures: 5,
		},
		Cleanup: CleanupConfig{
			Enabled: true,
		},
		LogFile: "playlist_log.txt",
	}
}

// Validate checks that the configuration is complete and in range. File
// existence is checked separately by ValidatePaths.
func (c *Config) Validate() error {
	var missing []string
	if c.Chrome.Binary == "" {
		missing = append(missing, "--chrome-binary")
	}
	if c.Driver.Path == "" {
		missing = append(missing, "--chromedriver")
	}
	if c.Chrome.UserDataDir == "" {
		missing = append(missing, "--user-data-dir")
	}
	if len(missing) > 0 {
		return NewValidationError("required settings missing: " + strings.Join(missing, ", "))
	}

	if !validPort(c.Chrome.DebugPort) {
		return NewValidationError(fmt.Sprintf("debug port out of range: %d", c.Chrome.DebugPort))
	}
	if !validPort(c.Driver.Port) {
		return NewValidationError(fmt.Sprintf("driver port out of range: %d", c.Driver.Port))
	}
	if c.Driver.Port == c.Chrome.DebugPort {
		return NewValidationError("driver port and debug port must differ")
	}

	switch c.Driver.Backend {
	case BackendWebDriver, BackendCDP:
	default:
		return NewValidationError("unknown driver backend: " + c.Driver.Backend)
	}

	if c.Chrome.WaitTime <= 0 {
		return NewValidationError("wait time must be positive")
	}
	if c.LogFile == "" {
		return NewValidationError("log file is required")
	}
	if c.Monitor.TitleSelector == "" || c.Monitor.ArtistSelector == "" {
		return NewValidationError("title and artist selectors are required")
	}
	if c.Monitor.PollInterval <= 0 || c.Monitor.RetryInterval <= 0 ||
		c.Monitor.ElementTimeout <= 0 || c.Monitor.PageLoadTimeout <= 0 {
		return NewValidationError("monitor intervals and timeouts must be positive")
	}
	if c.Monitor.MaxConnectionFailures < 0 {
		return NewValidationError("max connection failures cannot be negative")
	}

	return nil
}

// ValidatePaths reports every configured executable that does not exist.
func (c *Config) ValidatePaths() []error {
	var errs []error
	if !isFile(c.Chrome.Binary) {
		errs = append(errs, NewValidationError("Chrome not found at "+c.Chrome.Binary))
	}
	if !isFile(c.Driver.Path) {
		errs = append(errs, NewValidationError("ChromeDriver not found at "+c.Driver.Path))
	}
	return errs
}

// WaitTimeout is the readiness budget for the launched browser.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Chrome.WaitTime) * time.Second
}

// DebuggerAddr is the host:port of the browser's debugging endpoint.
func (c *Config) DebuggerAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Chrome.DebugPort)
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}
