// Package executor runs user commands through the configured shell with a
// working directory, shell initialisation and a hard timeout.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/pkg/logger"
	"github.com/doeshing/shlaunch/internal/ports"
)

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	timeout   time.Duration
	waitDelay time.Duration
	env       []string
	logger    ports.Logger
	newID     func() string
}

// Option configures a LocalExecutor.
type Option func(*LocalExecutor)

// WithTimeout sets the bound used when a request carries no timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *LocalExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger for execution state transitions.
func WithLogger(l ports.Logger) Option {
	return func(e *LocalExecutor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEnv replaces the inherited environment of the child shell.
func WithEnv(env []string) Option {
	return func(e *LocalExecutor) {
		e.env = env
	}
}

// NewLocalExecutor builds an executor with a 30 second default bound.
func NewLocalExecutor(opts ...Option) *LocalExecutor {
	e := &LocalExecutor{
		timeout:   domain.DefaultExecutionTimeout,
		waitDelay: domain.ProcessWaitDelay,
		logger:    logger.Nop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements ports.CommandExecutor. It blocks until the command
// exits, fails to start or exceeds its timeout; the returned error is only
// set for a blank command.
func (e *LocalExecutor) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionOutcome, error) {
	if strings.TrimSpace(req.Command) == "" {
		return domain.ExecutionOutcome{}, domain.ErrEmptyCommand
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	shell := req.Preferences.Shell()
	dir := strings.TrimSpace(req.WorkingDirectory)

	outcome := domain.ExecutionOutcome{
		ID:            e.newID(),
		Command:       req.Command,
		ExecutionPath: dir,
	}
	script := BuildScript(req.Command, shell, req.Preferences.Profile(), dir)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, shell, "-c", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = e.env
	cmd.WaitDelay = e.waitDelay
	configureProcess(cmd)

	e.logger.Debug("execution running", map[string]interface{}{
		"id":      outcome.ID,
		"shell":   shell,
		"dir":     dir,
		"timeout": timeout.String(),
	})

	start := time.Now()
	err := cmd.Run()
	outcome.Duration = time.Since(start)
	if killGroup(cmd) {
		e.logger.Debug("stray processes killed", map[string]interface{}{"id": outcome.ID})
	}
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		// The shell exited cleanly; a background child kept a pipe open.
		err = nil
	}
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()

	classify(&outcome, err, runCtx.Err(), timeout)
	outcome.Hint = RemediationHint(outcome)

	e.logger.Debug("execution finished", map[string]interface{}{
		"id":          outcome.ID,
		"status":      string(outcome.Status),
		"exit_code":   outcome.ExitCode,
		"duration_ms": outcome.Duration.Milliseconds(),
	})
	return outcome, nil
}

// classify fills Status, ExitCode, ErrorMessage and Err from the process
// result and the state of the run context.
func classify(outcome *domain.ExecutionOutcome, runErr, ctxErr error, timeout time.Duration) {
	if runErr == nil {
		outcome.ExitCode = 0
		if strings.TrimSpace(outcome.Stderr) != "" {
			outcome.Status = domain.StatusWarning
		} else {
			outcome.Status = domain.StatusSucceeded
		}
		return
	}

	outcome.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
	}

	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		outcome.Status = domain.StatusTimedOut
		outcome.ErrorMessage = fmt.Sprintf("command timed out after %s", timeout)
		outcome.Err = fmt.Errorf("%w after %s", domain.ErrExecutionTimeout, timeout)
		return
	case errors.Is(ctxErr, context.Canceled):
		outcome.ErrorMessage = "command canceled"
	case strings.TrimSpace(outcome.Stderr) != "":
		outcome.ErrorMessage = strings.TrimSpace(outcome.Stderr)
	case exitErr != nil:
		outcome.ErrorMessage = fmt.Sprintf("command exited with status %d", outcome.ExitCode)
	default:
		outcome.ErrorMessage = runErr.Error()
	}
	outcome.Status = domain.StatusFailed
	outcome.Err = fmt.Errorf("%w: %s", domain.ErrExecutionFailure, outcome.ErrorMessage)
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
