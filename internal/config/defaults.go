package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: "~/.local/share/voltcheck/staging",
			LogDir:     "~/.local/share/voltcheck/logs",
			DataDir:    "~/.local/share/voltcheck/data",
		},
		Detector: Detector{
			Backend:        "mock",
			TimeoutSeconds: 30,
		},
		Video: Video{
			FrameStride: 30,
		},
		Workflow: Workflow{
			PollInterval:       5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  15,
			HeartbeatTimeout:   120,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
