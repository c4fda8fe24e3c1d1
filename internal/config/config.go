// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatvault.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatvault/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatvault configuration.
type Config struct {
	// DBPath is the source message database (chat.db).
	DBPath string `toml:"db_path"`

	// WorkDBPath, when set, is an existing snapshot of the source database to
	// query instead of copying chat.db on open.
	WorkDBPath string `toml:"work_db_path"`

	// ContactsDir is a directory containing AddressBook .abcddb databases for
	// sender name resolution. Empty disables contact lookup.
	ContactsDir string `toml:"contacts_dir"`

	// OutputDir is the root for exported conversations.
	OutputDir string `toml:"output_dir"`

	// MetadataPath is the JSON metadata store (cache + watermarks).
	MetadataPath string `toml:"metadata_path"`

	// Workers is the attachment worker pool size.
	Workers int `toml:"workers"`

	// HelperTimeoutSecs bounds a single OCR/transcription helper invocation.
	HelperTimeoutSecs int `toml:"helper_timeout_secs"`

	// TimestampedFilenames appends a timestamp to export filenames so repeated
	// runs never overwrite earlier exports.
	TimestampedFilenames bool `toml:"timestamped_filenames"`

	// OCR is the image text-extraction helper.
	OCR HelperConfig `toml:"ocr"`

	// Transcribe is the audio transcription helper.
	Transcribe HelperConfig `toml:"transcribe"`

	// Log configures structured logging.
	Log LogConfig `toml:"log"`
}

// HelperConfig describes an optional external helper binary.
type HelperConfig struct {
	// Bin is the helper executable path. Empty disables the helper.
	Bin string `toml:"bin"`
	// SHA256 is the pinned content hash the binary must match before it is
	// ever executed.
	SHA256 string `toml:"sha256"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Pinned helper hashes. A helper binary whose content does not hash to the
// pinned value is never executed.
const (
	DefaultOCRHash        = "62e7dd0608edfb3a46dda9411dc9b24cfcdafe50a2d565613ed785f8fe7bb29b"
	DefaultTranscribeHash = "8ef2b3237023d5cefc35a0a1a2a60353cd54852d785241f76551de0f8ea56ced"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		DBPath:            util.ExpandHome("~/Library/Messages/chat.db"),
		OutputDir:         util.ExpandHome("~/Analyzed"),
		MetadataPath:      util.ExpandHome("~/.chatvault/metadata.json"),
		Workers:           8,
		HelperTimeoutSecs: 30,
		OCR: HelperConfig{
			SHA256: DefaultOCRHash,
		},
		Transcribe: HelperConfig{
			SHA256: DefaultTranscribeHash,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the chatvault configuration directory (~/.chatvault).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatvault"), nil
}

// ConfigPath returns the default TOML configuration path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default location, applies environment
// overrides, and validates. A missing configuration file is not an error;
// defaults are used.
func Load() (*Config, error) {
	path := os.Getenv("CHATVAULT_CONFIG")
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from an explicit path. A missing file
// yields defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CHATVAULT_* environment variables over the loaded
// configuration. Environment always wins over file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATVAULT_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CHATVAULT_WORK_DB"); v != "" {
		c.WorkDBPath = v
	}
	if v := os.Getenv("CHATVAULT_CONTACTS_DIR"); v != "" {
		c.ContactsDir = v
	}
	if v := os.Getenv("CHATVAULT_OUT"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CHATVAULT_METADATA"); v != "" {
		c.MetadataPath = v
	}
	if v := os.Getenv("CHATVAULT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("CHATVAULT_OCR_BIN"); v != "" {
		c.OCR.Bin = v
	}
	if v := os.Getenv("CHATVAULT_TRANSCRIBE_BIN"); v != "" {
		c.Transcribe.Bin = v
	}
	if v := os.Getenv("CHATVAULT_TIMESTAMP_FILENAME"); v == "1" {
		c.TimestampedFilenames = true
	}
	if v := os.Getenv("CHATVAULT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// expandPaths expands "~" in all path-valued fields.
func (c *Config) expandPaths() {
	c.DBPath = util.ExpandHome(c.DBPath)
	c.WorkDBPath = util.ExpandHome(c.WorkDBPath)
	c.ContactsDir = util.ExpandHome(c.ContactsDir)
	c.OutputDir = util.ExpandHome(c.OutputDir)
	c.MetadataPath = util.ExpandHome(c.MetadataPath)
	c.OCR.Bin = util.ExpandHome(c.OCR.Bin)
	c.Transcribe.Bin = util.ExpandHome(c.Transcribe.Bin)
}

// HelperTimeout returns the helper invocation timeout as a duration.
func (c *Config) HelperTimeout() time.Duration {
	if c.HelperTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HelperTimeoutSecs) * time.Second
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return ValidationError{Field: "db_path", Message: "must not be empty"}
	}
	if c.OutputDir == "" {
		return ValidationError{Field: "output_dir", Message: "must not be empty"}
	}
	if c.MetadataPath == "" {
		return ValidationError{Field: "metadata_path", Message: "must not be empty"}
	}
	if c.Workers <= 0 || c.Workers > 64 {
		return ValidationError{Field: "workers", Message: "must be between 1 and 64"}
	}
	if c.HelperTimeoutSecs < 0 {
		return ValidationError{Field: "helper_timeout_secs", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be debug, info, warn or error"}
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML to an explicit path.
func SaveTo(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}
