//go:build !windows

package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shlaunch/internal/application/ledger"
	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/infrastructure/executor"
	"github.com/doeshing/shlaunch/internal/infrastructure/storage"
	"github.com/doeshing/shlaunch/internal/pkg/logger"
)

type failingResolver struct{}

func (failingResolver) Resolve(context.Context) (string, error) {
	return "", errors.New("osascript: execution error")
}

func TestLaunchEndToEnd(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "history"))
	hist := ledger.New(store, ledger.Options{MaxSize: 2})
	svc := &Service{
		Executor: executor.NewLocalExecutor(executor.WithTimeout(5 * time.Second)),
		Ledger:   hist,
		Resolver: failingResolver{},
		Logger:   logger.Nop(),
	}
	prefs := domain.Preferences{DefaultShell: "/bin/sh", MaxHistorySize: 2}
	ctx := context.Background()

	resp, err := svc.Run(ctx, domain.LaunchRequest{Command: "pwd", Preferences: prefs, Infer: true})
	require.NoError(t, err)
	require.Equal(t, domain.StatusSucceeded, resp.Outcome.Status, resp.Outcome.ErrorMessage)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, strings.TrimSpace(resp.Outcome.Stdout), "runs in the ambient directory")
	assert.Empty(t, resp.Record.ExecutionPath)

	resp, err = svc.Run(ctx, domain.LaunchRequest{Command: "false", Preferences: prefs})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, resp.Outcome.Status)
	assert.NotEmpty(t, resp.Record.Error)

	_, err = svc.Run(ctx, domain.LaunchRequest{Command: "echo third", Preferences: prefs})
	require.NoError(t, err)

	reloaded := ledger.New(store, ledger.Options{MaxSize: 2}).Load(ctx)
	require.Len(t, reloaded, 2)
	assert.Equal(t, "echo third", reloaded[0].Command)
	assert.Equal(t, "false", reloaded[1].Command)
}
