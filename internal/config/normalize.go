package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.StagingDir, &c.Paths.LogDir, &c.Paths.DataDir} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Detector.Backend = strings.ToLower(strings.TrimSpace(c.Detector.Backend))
	if c.Detector.Backend == "" {
		c.Detector.Backend = "mock"
	}
	c.Detector.BaseURL = strings.TrimSpace(c.Detector.BaseURL)
	c.Detector.APIKey = strings.TrimSpace(c.Detector.APIKey)
	c.Detector.Model = strings.TrimSpace(c.Detector.Model)

	if c.Video.FrameStride <= 0 {
		c.Video.FrameStride = 30
	}
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = 5
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = 10
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = 15
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = 120
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}
