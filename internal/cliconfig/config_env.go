package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "QRSHIP_"

// ApplyEnvConfig applies QRSHIP_* environment variables to cfg. Values
// override the config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("input", env("INPUT"), &cfg.Input)
	s.setString("out", env("OUT_DIR"), &cfg.OutDir)
	s.setString("ecc", env("ECC"), &cfg.ECC)
	s.setString("checksum", env("CHECKSUM"), &cfg.Checksum)
	s.setString("listen", env("LISTEN"), &cfg.Listen)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("bytes-per-code", env("BYTES_PER_CODE"), &cfg.BytesPerCode); err != nil {
		return err
	}
	if err := s.setIntFromString("qr-version", env("QR_VERSION"), &cfg.QRVersion); err != nil {
		return err
	}
	if err := s.setIntFromString("max-body-bytes", env("MAX_BODY_BYTES"), &cfg.MaxBodyBytes); err != nil {
		return err
	}
	if err := s.setDuration("debounce", env("DEBOUNCE_DELAY"), &cfg.DebounceDelay); err != nil {
		return err
	}

	s.setBoolFromString("watch", env("WATCH"), &cfg.Watch)
	s.setBoolFromString("no-progress", env("NO_PROGRESS"), &cfg.NoProgress)
	return nil
}
