// Package config provides configuration management for the editor daemon.
// Defaults are overridden first by an optional YAML config file, then by
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort             = 8686
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".editord"
	DefaultAutosaveInterval = 30 * time.Second
	DefaultFrameRate        = 30.0
	DefaultRevisionsKept    = 50

	// Environment variable names
	EnvPort             = "EDITORD_PORT"
	EnvLogLevel         = "EDITORD_LOG_LEVEL"
	EnvDataDir          = "EDITORD_DATA_DIR"
	EnvMediaDir         = "EDITORD_MEDIA_DIR"
	EnvAutosaveInterval = "EDITORD_AUTOSAVE_INTERVAL"
	EnvAIBaseURL        = "EDITORD_AI_BASE_URL"
	EnvAIToken          = "EDITORD_AI_TOKEN"
	EnvConfigFile       = "EDITORD_CONFIG_FILE"

	// Database filename
	DBFilename = "editor.db"

	// Config filename looked up inside the data dir when EnvConfigFile is
	// unset
	ConfigFilename = "config.yaml"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	RevisionsDir() string
	AutosaveInterval() time.Duration
	FrameRate() float64
	RevisionsKept() int
	AIBaseURL() string
	AIToken() string
}

// fileConfig is the YAML config file schema. Zero values mean "not set".
type fileConfig struct {
	Port             int     `yaml:"port"`
	LogLevel         string  `yaml:"log_level"`
	MediaDir         string  `yaml:"media_dir"`
	AutosaveInterval string  `yaml:"autosave_interval"`
	FrameRate        float64 `yaml:"frame_rate"`
	RevisionsKept    int     `yaml:"revisions_kept"`
	AI               struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"ai"`
}

// EnvConfig resolves configuration from defaults, the config file and
// environment variables, in that order.
type EnvConfig struct {
	port             int
	logLevel         string
	dataDir          string
	mediaDir         string
	autosaveInterval time.Duration
	frameRate        float64
	revisionsKept    int
	aiBaseURL        string
	aiToken          string
}

// New builds the configuration. The config file is optional; a missing file
// is not an error, a malformed one is.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		autosaveInterval: DefaultAutosaveInterval,
		frameRate:        DefaultFrameRate,
		revisionsKept:    DefaultRevisionsKept,
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if err := cfg.applyFile(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.mediaDir == "" {
		cfg.mediaDir = filepath.Join(cfg.dataDir, "media")
	}
	return cfg, nil
}

func (c *EnvConfig) applyFile() error {
	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.dataDir, ConfigFilename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Port != 0 {
		if fc.Port < 1 || fc.Port > 65535 {
			return fmt.Errorf("config file: port must be between 1 and 65535")
		}
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.MediaDir != "" {
		c.mediaDir = fc.MediaDir
	}
	if fc.AutosaveInterval != "" {
		d, err := time.ParseDuration(fc.AutosaveInterval)
		if err != nil {
			return fmt.Errorf("config file: invalid autosave_interval: %w", err)
		}
		c.autosaveInterval = d
	}
	if fc.FrameRate != 0 {
		c.frameRate = fc.FrameRate
	}
	if fc.RevisionsKept != 0 {
		c.revisionsKept = fc.RevisionsKept
	}
	if fc.AI.BaseURL != "" {
		c.aiBaseURL = fc.AI.BaseURL
	}
	if fc.AI.Token != "" {
		c.aiToken = fc.AI.Token
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		c.port = port
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}
	if md := os.Getenv(EnvMediaDir); md != "" {
		c.mediaDir = md
	}
	if ai := os.Getenv(EnvAutosaveInterval); ai != "" {
		d, err := time.ParseDuration(ai)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAutosaveInterval, err)
		}
		c.autosaveInterval = d
	}
	if u := os.Getenv(EnvAIBaseURL); u != "" {
		c.aiBaseURL = u
	}
	if t := os.Getenv(EnvAIToken); t != "" {
		c.aiToken = t
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns the directory uploaded assets are stored in
func (c *EnvConfig) MediaDir() string {
	return c.mediaDir
}

// RevisionsDir returns the directory timeline revisions are stored in
func (c *EnvConfig) RevisionsDir() string {
	return filepath.Join(c.dataDir, "revisions")
}

// AutosaveInterval returns how often dirty timelines are persisted
func (c *EnvConfig) AutosaveInterval() time.Duration {
	return c.autosaveInterval
}

// FrameRate returns the frame rate used for EDL export timecodes
func (c *EnvConfig) FrameRate() float64 {
	return c.frameRate
}

// RevisionsKept returns how many revisions are retained per project
func (c *EnvConfig) RevisionsKept() int {
	return c.revisionsKept
}

// AIBaseURL returns the AI service base URL; empty selects the stub client
func (c *EnvConfig) AIBaseURL() string {
	return c.aiBaseURL
}

// AIToken returns the AI service bearer token
func (c *EnvConfig) AIToken() string {
	return c.aiToken
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
