// Package launch runs a requested command end to end: resolve the working
// directory, execute, and record the outcome in the history ledger.
package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/ports"
)

// ErrUnknownCommand is returned by Rerun for commands not in the history.
var ErrUnknownCommand = errors.New("command not in history")

// Service orchestrates one launch. Concurrent Run calls are independent;
// the ledger serialises their upserts.
type Service struct {
	Executor ports.CommandExecutor
	Ledger   ports.HistoryLedger
	Resolver ports.DirectoryResolver
	Logger   ports.Logger
	Now      func() time.Time
}

// Run executes req.Command and records the outcome. Only invalid requests
// return an error; failed and timed-out runs come back in the response.
func (s *Service) Run(ctx context.Context, req domain.LaunchRequest) (domain.LaunchResponse, error) {
	if s.Executor == nil || s.Ledger == nil || s.Logger == nil {
		return domain.LaunchResponse{}, errors.New("launch.Service dependencies not satisfied")
	}
	if strings.TrimSpace(req.Command) == "" {
		return domain.LaunchResponse{}, domain.ErrEmptyCommand
	}

	s.Logger.Debug("resolving context", map[string]interface{}{"command": req.Command})
	dir := s.resolveDirectory(ctx, req)

	outcome, err := s.Executor.Execute(ctx, domain.ExecutionRequest{
		Command:          req.Command,
		Preferences:      req.Preferences,
		WorkingDirectory: dir,
		Timeout:          req.Timeout,
	})
	if err != nil {
		return domain.LaunchResponse{}, fmt.Errorf("execute: %w", err)
	}

	record := s.Ledger.Upsert(ctx, req.Command, outcome, s.now())
	s.Logger.Debug("outcome reported", map[string]interface{}{
		"id":        outcome.ID,
		"status":    string(outcome.Status),
		"use_count": record.UseCount,
	})

	return domain.LaunchResponse{
		Outcome: outcome,
		Record:  record,
		History: s.Ledger.Records(),
	}, nil
}

// Rerun executes a command from the history again. Without an explicit
// directory in req the record's last execution path is reused.
func (s *Service) Rerun(ctx context.Context, command string, req domain.LaunchRequest) (domain.LaunchResponse, error) {
	if s.Ledger == nil {
		return domain.LaunchResponse{}, errors.New("launch.Service dependencies not satisfied")
	}
	record, ok := s.Ledger.Get(command)
	if !ok {
		return domain.LaunchResponse{}, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	req.Command = record.Command
	if strings.TrimSpace(req.WorkingDirectory) == "" && record.ExecutionPath != "" {
		req.WorkingDirectory = record.ExecutionPath
		req.Infer = false
	}
	return s.Run(ctx, req)
}

// resolveDirectory returns the explicit override, else the resolver's answer
// when inference is requested. Resolver failures mean "no override".
func (s *Service) resolveDirectory(ctx context.Context, req domain.LaunchRequest) string {
	if dir := strings.TrimSpace(req.WorkingDirectory); dir != "" {
		return dir
	}
	if !req.Infer || s.Resolver == nil {
		return ""
	}
	dir, err := s.Resolver.Resolve(ctx)
	if err != nil {
		s.Logger.Debug("working directory not inferred", map[string]interface{}{"reason": err.Error()})
		return ""
	}
	return strings.TrimSpace(dir)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
