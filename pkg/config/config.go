package config

import (
	"time"

	"nasdate/pkg/models"
	"nasdate/pkg/retry"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Performance PerformanceConfig `yaml:"performance"`
	Backup      BackupConfig      `yaml:"backup"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds SMB connection settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Share    string `yaml:"share"`
	Domain   string `yaml:"domain"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	BasePath string `yaml:"base_path"`

	// TimeoutSeconds bounds connect and negotiation
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// ResolutionMillis is the verification granularity. NAS servers
	// commonly truncate sub-second precision, so the default is 1000.
	ResolutionMillis int `yaml:"resolution_ms"`
}

// PerformanceConfig holds pool, worker and retry settings
type PerformanceConfig struct {
	// PoolSize is the number of pooled SMB connections, which caps
	// in-flight transactions
	PoolSize int `yaml:"pool_size"`

	// MaxWorkers caps batch workers (usually equal to PoolSize)
	MaxWorkers int `yaml:"max_workers"`

	// CallTimeoutSeconds bounds each remote call inside a transaction
	CallTimeoutSeconds int `yaml:"call_timeout_seconds"`

	// Retry schedule for transient connectivity failures
	RetryMaxAttempts  int     `yaml:"retry_max_attempts"`
	RetryDelaySeconds float64 `yaml:"retry_delay_seconds"`
	RetryBackoff      float64 `yaml:"retry_backoff"`

	// BandwidthLimit caps checksum download speed in bytes/sec
	// (0 = unlimited)
	BandwidthLimit int64 `yaml:"bandwidth_limit"`

	// MaxIdleSeconds is how long a pooled connection is trusted unused
	MaxIdleSeconds int `yaml:"max_idle_seconds"`

	// HealthCheck pings pooled connections before reuse
	HealthCheck bool `yaml:"health_check"`
}

// BackupConfig holds snapshot settings
type BackupConfig struct {
	// VerifyChecksums captures a content checksum before mutation and
	// re-checks it after commit
	VerifyChecksums bool `yaml:"verify_checksums"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = disabled)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             445,
			BasePath:         "/",
			TimeoutSeconds:   30,
			ResolutionMillis: 1000,
		},
		Performance: PerformanceConfig{
			PoolSize:           3,
			MaxWorkers:         3,
			CallTimeoutSeconds: 30,
			RetryMaxAttempts:   3,
			RetryDelaySeconds:  1.0,
			RetryBackoff:       2.0,
			BandwidthLimit:     0,
			MaxIdleSeconds:     300,
			HealthCheck:        true,
		},
		Backup: BackupConfig{
			VerifyChecksums: true,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
	}
}

// DialTimeout returns the connect timeout as a duration
func (s *ServerConfig) DialTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Resolution returns the verification granularity as a duration
func (s *ServerConfig) Resolution() time.Duration {
	if s.ResolutionMillis <= 0 {
		return time.Second
	}
	return time.Duration(s.ResolutionMillis) * time.Millisecond
}

// CallTimeout returns the per-call timeout as a duration
func (p *PerformanceConfig) CallTimeout() time.Duration {
	return time.Duration(p.CallTimeoutSeconds) * time.Second
}

// MaxIdle returns the pooled-connection idle limit as a duration
func (p *PerformanceConfig) MaxIdle() time.Duration {
	return time.Duration(p.MaxIdleSeconds) * time.Second
}

// RetryPolicy builds the retry policy from the configured schedule
func (p *PerformanceConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  p.RetryMaxAttempts,
		InitialDelay: time.Duration(p.RetryDelaySeconds * float64(time.Second)),
		Multiplier:   p.RetryBackoff,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &models.ValidationError{
			Field:   "server.port",
			Message: "must be between 1 and 65535",
		}
	}

	if c.Performance.PoolSize < 1 {
		return &models.ValidationError{
			Field:   "performance.pool_size",
			Message: "must be at least 1",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.RetryMaxAttempts < 1 {
		return &models.ValidationError{
			Field:   "performance.retry_max_attempts",
			Message: "must be at least 1",
		}
	}

	if c.Performance.RetryBackoff < 1.0 {
		return &models.ValidationError{
			Field:   "performance.retry_backoff",
			Message: "must be at least 1.0",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
