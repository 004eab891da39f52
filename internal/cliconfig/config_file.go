package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config with string durations for TOML and YAML.
type FileConfig struct {
	Input         string `toml:"input" yaml:"input"`
	OutDir        string `toml:"out_dir" yaml:"out_dir"`
	BytesPerCode  int    `toml:"bytes_per_code" yaml:"bytes_per_code"`
	QRVersion     int    `toml:"qr_version" yaml:"qr_version"`
	ECC           string `toml:"ecc" yaml:"ecc"`
	Checksum      string `toml:"checksum" yaml:"checksum"`
	Listen        string `toml:"listen" yaml:"listen"`
	MaxBodyBytes  int    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	LogLevel      string `toml:"log_level" yaml:"log_level"`
	DebounceDelay string `toml:"debounce_delay" yaml:"debounce_delay"`
	Watch         *bool  `toml:"watch" yaml:"watch"`
	NoProgress    *bool  `toml:"no_progress" yaml:"no_progress"`
}

// LoadFileConfig reads a config file. Paths ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.qrship/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".qrship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping flags that were
// set explicitly (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("out", fc.OutDir, &cfg.OutDir)
	s.setString("ecc", fc.ECC, &cfg.ECC)
	s.setString("checksum", fc.Checksum, &cfg.Checksum)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("bytes-per-code", fc.BytesPerCode, &cfg.BytesPerCode)
	s.setInt("qr-version", fc.QRVersion, &cfg.QRVersion)
	s.setInt("max-body-bytes", fc.MaxBodyBytes, &cfg.MaxBodyBytes)

	if err := s.setDuration("debounce", fc.DebounceDelay, &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("no-progress", fc.NoProgress, &cfg.NoProgress)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
