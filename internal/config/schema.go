package config

// Config holds lompack configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server ServerCfg `mapstructure:"server" yaml:"server"`
	Export ExportCfg `mapstructure:"export" yaml:"export"`
	Assist AssistCfg `mapstructure:"assist" yaml:"assist"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// ExportCfg configures SCORM package builds.
type ExportCfg struct {
	// SpoolThresholdMB is how many megabytes an archive may hold in memory
	// before spilling to a temporary file.
	SpoolThresholdMB int64 `mapstructure:"spool_threshold_mb" yaml:"spool_threshold_mb"`
}

// AssistCfg configures the metadata suggestion service.
type AssistCfg struct {
	APIKey     string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model      string  `mapstructure:"model" yaml:"model"`
	MaxRetries int     `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    float64 `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Export: ExportCfg{
			SpoolThresholdMB: 50,
		},
		Assist: AssistCfg{
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o-mini",
			MaxRetries: 3,
			Timeout:    60,
			Enabled:    true,
		},
	}
}
