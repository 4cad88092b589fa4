package domain

import "time"

// OutcomeStatus classifies one execution attempt.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusWarning   OutcomeStatus = "warning"
	StatusFailed    OutcomeStatus = "failed"
	StatusTimedOut  OutcomeStatus = "timed_out"
)

// ExecutionRequest is everything the pipeline needs for one run.
// Preferences are passed per call rather than read from process state.
type ExecutionRequest struct {
	Command          string
	Preferences      Preferences
	WorkingDirectory string
	Timeout          time.Duration
}

// ExecutionOutcome is the captured result of one execution attempt.
type ExecutionOutcome struct {
	ID            string
	Command       string
	Status        OutcomeStatus
	Stdout        string
	Stderr        string
	ErrorMessage  string
	ExecutionPath string
	ExitCode      int
	Duration      time.Duration
	// Hint is advisory remediation text and never drives control flow.
	Hint string
	// Err wraps ErrExecutionTimeout or ErrExecutionFailure when the run did not succeed.
	Err error
}

// Succeeded is true for clean runs and runs that completed with warnings.
func (o ExecutionOutcome) Succeeded() bool {
	return o.Status == StatusSucceeded || o.Status == StatusWarning
}

// TimedOut reports whether the run was killed by the timeout.
func (o ExecutionOutcome) TimedOut() bool {
	return o.Status == StatusTimedOut
}

// RecordedError is the text the ledger stores in CommandRecord.Error.
func (o ExecutionOutcome) RecordedError() string {
	switch o.Status {
	case StatusFailed, StatusTimedOut:
		return o.ErrorMessage
	case StatusWarning:
		return o.Stderr
	default:
		return ""
	}
}

// LaunchRequest captures a user's request to run a command.
type LaunchRequest struct {
	Command     string
	Preferences Preferences
	// WorkingDirectory overrides inference when non-empty.
	WorkingDirectory string
	// Infer asks the directory resolver for a best-effort working directory.
	Infer   bool
	Timeout time.Duration
}

// LaunchResponse is what the presentation layer renders after a run.
type LaunchResponse struct {
	Outcome ExecutionOutcome
	Record  CommandRecord
	History []CommandRecord
}
