package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration errors that would prevent startup.
func (c *Config) Validate() error {
	var problems []string

	switch c.Detector.Backend {
	case "mock":
	case "remote":
		if c.Detector.BaseURL == "" {
			problems = append(problems, "detector.base_url is required when detector.backend is \"remote\"")
		}
		if c.Detector.APIKey == "" {
			problems = append(problems, "detector.api_key is required when detector.backend is \"remote\"")
		}
	default:
		problems = append(problems, fmt.Sprintf("detector.backend: unsupported value %q", c.Detector.Backend))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir must not be empty")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
