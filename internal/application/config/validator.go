package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := validatePreferences(cfg.Preferences); err != nil {
		errs = append(errs, err)
	}
	if err := validateHistory(cfg.History); err != nil {
		errs = append(errs, err)
	}
	if err := validateExecution(cfg.Execution); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validatePreferences(prefs domain.Preferences) error {
	if prefs.MaxHistorySize < 1 {
		return fmt.Errorf("preferences.max_history_size must be >= 1, got %d", prefs.MaxHistorySize)
	}
	if strings.TrimSpace(prefs.DefaultShell) == "" {
		return errors.New("preferences.default_shell must be set")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch strings.ToLower(history.Backend) {
	case "", domain.BackendFile, domain.BackendSQLite:
	default:
		return fmt.Errorf("history.backend must be file|sqlite, got %s", history.Backend)
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	switch strings.ToLower(exec.DirectorySource) {
	case "", domain.DirectorySourceAuto, domain.DirectorySourceFinder, domain.DirectorySourceNone:
	default:
		return fmt.Errorf("execution.directory_source must be auto|finder|none, got %s", exec.DirectorySource)
	}
	if exec.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(exec.Timeout)
	if err != nil {
		return fmt.Errorf("execution.timeout invalid: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("execution.timeout must be positive, got %s", exec.Timeout)
	}
	return nil
}
