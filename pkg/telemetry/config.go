package telemetry

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	// Level is the minimum level to emit: trace, debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is "console" for human-readable output or "json" for
	// structured output.
	Format string `yaml:"format" json:"format"`

	// Output is "stderr", "stdout", or a file path.
	Output string `yaml:"output" json:"output"`
}

// DefaultLoggingConfig returns the CLI's standard logging behavior:
// human-readable logs on stderr at info level, keeping stdout free for
// command output.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}
