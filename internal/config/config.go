package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration. It is built once at
// startup (defaults, then config file, then CLI flags) and passed by
// value into the components that need it; nothing mutates it afterwards.
type Config struct {
	LastfmAPIKey          string   `json:"lastfm_api_key" yaml:"lastfm_api_key"`
	LogFile               string   `json:"log_file" yaml:"log_file"`
	Folder                string   `json:"folder" yaml:"folder"`
	MaxWorkers            int      `json:"max_workers" yaml:"max_workers"`
	AudioExtensions       []string `json:"audio_extensions" yaml:"audio_extensions"`
	CachePath             string   `json:"cache_path" yaml:"cache_path"`
	MinConfidence         float64  `json:"min_confidence" yaml:"min_confidence"`
	Verbose               bool     `json:"verbose" yaml:"verbose"`
	RequestTimeoutSeconds int      `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	Retries               int      `json:"retries" yaml:"retries"`
	RetryDelaySeconds     int      `json:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	UserAgent             string   `json:"user_agent" yaml:"user_agent"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LogFile:               "metatagger.log",
		Folder:                "./music",
		MaxWorkers:            8,
		AudioExtensions:       []string{".flac", ".mp3", ".ape", ".wav", ".m4a", ".ogg", ".aac"},
		CachePath:             "metadata_cache.db",
		MinConfidence:         0.5,
		RequestTimeoutSeconds: 10,
		Retries:               3,
		RetryDelaySeconds:     2,
		UserAgent:             "metatagger/1.0",
	}
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryDelay returns the base backoff delay between retried requests.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// LoadConfigFile loads configuration layered over the defaults.
// If path is empty, standard locations are searched and a missing file
// just yields the defaults. An explicit path that cannot be read or
// parsed is an error: bad user input should fail loudly.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.Folder = ExpandHome(cfg.Folder)
	cfg.CachePath = ExpandHome(cfg.CachePath)
	cfg.LogFile = ExpandHome(cfg.LogFile)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./metatagger.json",
		"./metatagger.yaml",
		filepath.Join(home, ".config", "metatagger", "config.json"),
		filepath.Join(home, ".config", "metatagger", "config.yaml"),
		filepath.Join(home, ".metatagger.json"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the configuration as pretty-printed JSON.
func SaveConfigFile(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "metatagger", "config.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Folder == "" {
		return fmt.Errorf("folder cannot be empty")
	}

	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be at least 1, got %d", c.MaxWorkers)
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0.0 and 1.0, got %.2f", c.MinConfidence)
	}

	if len(c.AudioExtensions) == 0 {
		return fmt.Errorf("audio_extensions cannot be empty")
	}
	for _, ext := range c.AudioExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("audio extension %q must start with a dot", ext)
		}
	}

	if c.CachePath == "" {
		return fmt.Errorf("cache_path cannot be empty")
	}

	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1, got %d", c.RequestTimeoutSeconds)
	}
	if c.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds cannot be negative, got %d", c.RetryDelaySeconds)
	}

	return nil
}
