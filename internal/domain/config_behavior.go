package domain

import (
	"strings"
	"time"
)

// ExecutionTimeout parses execution.timeout, falling back to the default
// for empty, invalid or non-positive values.
func (c *Config) ExecutionTimeout() time.Duration {
	raw := strings.TrimSpace(c.Execution.Timeout)
	if raw == "" {
		return DefaultExecutionTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return DefaultExecutionTimeout
	}
	return d
}

// HistoryBackend returns the normalised backend name.
func (c *Config) HistoryBackend() string {
	switch strings.ToLower(strings.TrimSpace(c.History.Backend)) {
	case BackendSQLite:
		return BackendSQLite
	default:
		return BackendFile
	}
}

// DirectorySource returns the normalised directory_source value.
func (c *Config) DirectorySource() string {
	switch strings.ToLower(strings.TrimSpace(c.Execution.DirectorySource)) {
	case DirectorySourceFinder:
		return DirectorySourceFinder
	case DirectorySourceNone:
		return DirectorySourceNone
	default:
		return DirectorySourceAuto
	}
}

// HistoryCapacity returns max_history_size, or the default when unset.
func (p Preferences) HistoryCapacity() int {
	if p.MaxHistorySize <= 0 {
		return DefaultMaxHistorySize
	}
	return p.MaxHistorySize
}

// Shell returns the configured shell binary, or the default when unset.
func (p Preferences) Shell() string {
	if shell := strings.TrimSpace(p.DefaultShell); shell != "" {
		return shell
	}
	return DefaultShell
}

// Profile returns the trimmed shell profile override.
func (p Preferences) Profile() string {
	return strings.TrimSpace(p.ShellProfile)
}
