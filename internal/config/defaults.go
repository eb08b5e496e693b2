package config

const (
	defaultDataDir             = "~/.local/share/storyforge/data"
	defaultLogDir              = "~/.local/share/storyforge/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultStuckThresholdHours = 2
	defaultMaxBatchSize        = 100
	defaultNtfyRequestTimeout  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Workflow: Workflow{
			StuckThresholdHours: defaultStuckThresholdHours,
			MaxBatchSize:        defaultMaxBatchSize,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			StageChanges:   false,
			Completions:    true,
			Failures:       true,
			StuckItems:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
