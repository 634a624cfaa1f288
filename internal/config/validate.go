package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks a normalized config for values bs cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Engine.Workers < 0 {
		problems = append(problems, fmt.Sprintf("engine.workers must not be negative (got %d)", c.Engine.Workers))
	}

	switch c.Output.Progress {
	case "auto", "always", "never":
	default:
		problems = append(problems, fmt.Sprintf("output.progress must be auto, always, or never (got %q)", c.Output.Progress))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json (got %q)", c.Logging.Format))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
