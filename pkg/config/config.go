// Package config handles loading and managing typedensity configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for typedensity.
type Config struct {
	Study    StudyConfig    `yaml:"study"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
}

// StudyConfig controls how a study runs.
type StudyConfig struct {
	Parallelism int    `yaml:"parallelism"`
	Output      string `yaml:"output"` // text, json, csv or markdown
}

// StorageConfig selects where units are read from and reports archived.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, badger, s3 or gcs
	BaseDir   string `yaml:"base_dir"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// DatabaseConfig controls the optional Postgres report sink.
type DatabaseConfig struct {
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Study: StudyConfig{
			Parallelism: 4,
			Output:      "text",
		},
		Storage: StorageConfig{
			Backend: "local",
		},
		Database: DatabaseConfig{
			AutoMigrate: true,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "local", "badger", "s3", "gcs":
	default:
		return fmt.Errorf("unknown storage backend %q (want local, badger, s3 or gcs)", c.Storage.Backend)
	}
	if (c.Storage.Backend == "s3" || c.Storage.Backend == "gcs") && c.Storage.Bucket == "" {
		return fmt.Errorf("storage backend %s requires a bucket", c.Storage.Backend)
	}
	if c.Study.Parallelism < 0 {
		return fmt.Errorf("study parallelism must not be negative, got %d", c.Study.Parallelism)
	}
	return nil
}

// FindConfigFile looks for .typedensity/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".typedensity", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the cache directory for a given project path.
// Uses ~/.cache/typedensity/<project-slug>/ to avoid polluting the project.
func CacheDir(projectPath string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "typedensity", projectSlug(projectPath))
}

// StorageDir returns the local blob storage directory for a project, used
// when the storage section names no base directory.
func StorageDir(projectPath string) string {
	return filepath.Join(CacheDir(projectPath), "storage")
}

// projectSlug creates a filesystem-safe identifier from a project path.
// Uses the last two path components (e.g., "user_myrepo" from "/home/user/myrepo").
func projectSlug(projectPath string) string {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}
