// Package logger provides module-scoped zap loggers with context-aware
// trace-id enrichment and file rotation.
package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig configures the logger manager and every module logger it hands out.
type ManagerConfig struct {
	// AppName is injected into every log line as app_name.
	AppName string `mapstructure:"app_name"`

	// Level is the default level: debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format: json or console.
	Format string `mapstructure:"format"`

	// Output: stdout, file or both.
	Output string `mapstructure:"output"`

	// Dir is the log directory when file output is enabled.
	Dir string `mapstructure:"dir"`

	// Rotation settings (lumberjack).
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`

	// EnableTraceID extracts a trace id from the context on every Ctx call.
	EnableTraceID bool `mapstructure:"enable_trace_id"`

	// TraceIDKey is the custom context key checked after the otel span.
	TraceIDKey string `mapstructure:"trace_id_key"`

	// TraceIDFieldName overrides the emitted field name (default trace_id).
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`

	// ModuleLevels overrides the level per module name.
	ModuleLevels map[string]string `mapstructure:"module_levels"`
}

// DefaultManagerConfig returns the stdout/console development defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		AppName:       "scribe",
		Level:         "info",
		Format:        "console",
		Output:        "stdout",
		Dir:           "logs",
		MaxSizeMB:     100,
		MaxBackups:    5,
		MaxAgeDays:    30,
		EnableTraceID: true,
	}
}

// ApplyDefaults fills the zero fields in place.
func (c *ManagerConfig) ApplyDefaults() {
	def := DefaultManagerConfig()
	if c.AppName == "" {
		c.AppName = def.AppName
	}
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Dir == "" {
		c.Dir = def.Dir
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = def.MaxSizeMB
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = def.MaxBackups
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = def.MaxAgeDays
	}
}

// Validate rejects unknown enum values.
func (c ManagerConfig) Validate() error {
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logger: unknown format %q", c.Format)
	}
	switch c.Output {
	case "", "stdout", "file", "both":
	default:
		return fmt.Errorf("logger: unknown output %q", c.Output)
	}
	if _, err := zapcore.ParseLevel(normalizeLevel(c.Level)); c.Level != "" && err != nil {
		return fmt.Errorf("logger: unknown level %q", c.Level)
	}
	return nil
}

// ParseLevel maps a level string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(normalizeLevel(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func normalizeLevel(level string) string {
	if level == "" {
		return "info"
	}
	return level
}
