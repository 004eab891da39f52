package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/qrship/internal/adapters/digest"
	"github.com/bft-labs/qrship/internal/domain"
)

// DefaultListen is the default HTTP listen address for serve.
const DefaultListen = ":8080"

// Config holds CLI configuration for qrship.
type Config struct {
	Input  string
	OutDir string
	Name   string

	BytesPerCode int
	QRVersion    int
	ECC          string
	Checksum     string

	Listen       string
	MaxBodyBytes int

	LogLevel      string
	Watch         bool
	DebounceDelay time.Duration
	NoProgress    bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutDir:        "qrcodes",
		BytesPerCode:  domain.DefaultBytesPerCode,
		QRVersion:     domain.DefaultVersion,
		ECC:           domain.DefaultECLevel.String(),
		Checksum:      digest.Default,
		Listen:        DefaultListen,
		MaxBodyBytes:  16 << 20, // 16MB
		LogLevel:      "info",
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and normalizes names.
func (c *Config) Validate() error {
	if c.BytesPerCode <= 0 {
		return fmt.Errorf("bytes-per-code must be positive")
	}
	if c.BytesPerCode > domain.MaxBytesPerCode {
		return fmt.Errorf("bytes-per-code %d cannot fit any QR version", c.BytesPerCode)
	}
	if c.QRVersion < 1 || c.QRVersion > 40 {
		return fmt.Errorf("qr-version must be between 1 and 40")
	}
	level, err := domain.ParseECLevel(c.ECC)
	if err != nil {
		return err
	}
	c.ECC = level.String()

	if _, err := digest.ByName(c.Checksum); err != nil {
		return err
	}
	c.Checksum = strings.ToLower(c.Checksum)

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("debounce delay must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max-body-bytes must be positive")
	}
	return nil
}

// QrConfig returns the pipeline parameters. Call after Validate.
func (c Config) QrConfig() (domain.QrConfig, error) {
	level, err := domain.ParseECLevel(c.ECC)
	if err != nil {
		return domain.QrConfig{}, err
	}
	cfg := domain.QrConfig{
		BytesPerCode: c.BytesPerCode,
		Version:      c.QRVersion,
		Level:        level,
	}
	return cfg, cfg.Validate()
}

// configSetter applies values only where the corresponding flag was not
// set explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses an environment value; non-positive values are ignored.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
