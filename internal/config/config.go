// Package config provides configuration loading and structs for the Manabu server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Seed      SeedConfig      `yaml:"seed"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MaxBodyBytes bounds the request body the chat endpoint accepts.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// StorageConfig selects and configures the fact store backend.
type StorageConfig struct {
	// Driver is "sqlite" or "mongo".
	Driver string `yaml:"driver"`
	// DatabasePath is the SQLite file location.
	DatabasePath string `yaml:"database_path"`
	// MongoURI and MongoDatabase configure the mongo driver.
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	// QueryTimeout bounds every single store operation.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// RetrievalConfig tunes the candidate filter and ranking.
type RetrievalConfig struct {
	MinContentLength int    `yaml:"min_content_length"`
	MaxContentLength int    `yaml:"max_content_length"`
	CandidateLimit   int    `yaml:"candidate_limit"`
	TrustedSource    string `yaml:"trusted_source"`
}

// SeedConfig controls the startup arithmetic seeding.
type SeedConfig struct {
	// Enabled defaults to true when unset.
	Enabled *bool `yaml:"enabled"`
	// MaxOperand is the largest operand in the seeded tables.
	MaxOperand int `yaml:"max_operand"`
}

// EnabledOrDefault returns whether seeding runs at startup.
func (s *SeedConfig) EnabledOrDefault() bool {
	if s.Enabled != nil {
		return *s.Enabled
	}
	return true
}

// IngestConfig holds document ingestion and drop-directory settings.
type IngestConfig struct {
	// WatchDirectories are ingested automatically when files appear.
	WatchDirectories []string      `yaml:"watch_directories"`
	Extensions       []string      `yaml:"extensions"`
	MaxStatements    int           `yaml:"max_statements"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Ingest.WatchDirectories {
		cfg.Ingest.WatchDirectories[i] = expandPath(cfg.Ingest.WatchDirectories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
