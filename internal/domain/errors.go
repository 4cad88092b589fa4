package domain

import "errors"

var (
	// ErrExecutionTimeout marks a run that exceeded its time bound and was killed.
	ErrExecutionTimeout = errors.New("execution timed out")
	// ErrExecutionFailure marks a non-zero exit or a spawn error.
	ErrExecutionFailure = errors.New("execution failed")
	// ErrEmptyCommand is returned for blank command strings.
	ErrEmptyCommand = errors.New("command is empty")
)
