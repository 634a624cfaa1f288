package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvIdentityDir overrides paths.identity_dir when set.
const EnvIdentityDir = "BS_IDENTITY_DIR"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(EnvIdentityDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.IdentityDir = value
	}

	var err error
	if strings.TrimSpace(c.Paths.IdentityDir) == "" {
		c.Paths.IdentityDir = defaultIdentityDir
	}
	if c.Paths.IdentityDir, err = expandPath(c.Paths.IdentityDir); err != nil {
		return fmt.Errorf("paths.identity_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.Progress = strings.ToLower(strings.TrimSpace(c.Output.Progress))
	if c.Output.Progress == "" {
		c.Output.Progress = defaultProgress
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
