//go:build !windows

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shlaunch/internal/domain"
)

func shPrefs() domain.Preferences {
	return domain.Preferences{DefaultShell: "/bin/sh"}
}

func run(t *testing.T, e *LocalExecutor, req domain.ExecutionRequest) domain.ExecutionOutcome {
	t.Helper()
	outcome, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	return outcome
}

func TestExecute_Success(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{Command: "echo hello", Preferences: shPrefs()})

	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "hello\n", outcome.Stdout)
	assert.Empty(t, outcome.Stderr)
	assert.Empty(t, outcome.ErrorMessage)
	assert.NoError(t, outcome.Err)
	assert.NotEmpty(t, outcome.ID)
	assert.Equal(t, "echo hello", outcome.Command)
}

func TestExecute_FalseFails(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{Command: "false", Preferences: shPrefs()})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.False(t, outcome.Succeeded())
	assert.NotEmpty(t, outcome.ErrorMessage)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.ErrorIs(t, outcome.Err, domain.ErrExecutionFailure)
}

func TestExecute_FailurePrefersStderr(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:     "echo partial; echo broken >&2; exit 3",
		Preferences: shPrefs(),
	})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Equal(t, "broken", outcome.ErrorMessage)
	assert.Equal(t, "partial\n", outcome.Stdout)
}

func TestExecute_WarningKeepsBothStreams(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:     "echo result; echo careful >&2",
		Preferences: shPrefs(),
	})

	assert.Equal(t, domain.StatusWarning, outcome.Status)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "result\n", outcome.Stdout)
	assert.Equal(t, "careful\n", outcome.Stderr)
	assert.NoError(t, outcome.Err)
}

func TestExecute_TimeoutKillsProcess(t *testing.T) {
	e := NewLocalExecutor(WithTimeout(300 * time.Millisecond))

	start := time.Now()
	outcome := run(t, e, domain.ExecutionRequest{Command: "sleep 60", Preferences: shPrefs()})

	assert.Less(t, time.Since(start), 10*time.Second, "execution must not hang")
	assert.Equal(t, domain.StatusTimedOut, outcome.Status)
	assert.True(t, outcome.TimedOut())
	assert.ErrorIs(t, outcome.Err, domain.ErrExecutionTimeout)
	assert.Contains(t, outcome.ErrorMessage, "timed out")
	assert.Contains(t, outcome.Hint, "long-running")
}

func TestExecute_TimeoutKillsBackgroundChildren(t *testing.T) {
	e := NewLocalExecutor()

	start := time.Now()
	outcome := run(t, e, domain.ExecutionRequest{
		Command:     "sleep 60 & sleep 60",
		Preferences: shPrefs(),
		Timeout:     300 * time.Millisecond,
	})

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, domain.StatusTimedOut, outcome.Status)
}

// processGone reports whether pid has exited. Zombies awaiting a reaper
// count as gone.
func processGone(pid int) bool {
	if runtime.GOOS == "linux" {
		data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
		if err != nil {
			return true
		}
		stat := string(data)
		i := strings.LastIndexByte(stat, ')')
		return i >= 0 && i+2 < len(stat) && stat[i+2] == 'Z'
	}
	return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
}

func readPID(t *testing.T, path string) int {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	return pid
}

func TestExecute_BackgroundChildHoldingStdoutStillSucceeds(t *testing.T) {
	e := NewLocalExecutor()
	e.waitDelay = 200 * time.Millisecond
	pidFile := filepath.Join(t.TempDir(), "pid")

	start := time.Now()
	outcome := run(t, e, domain.ExecutionRequest{
		Command:     "echo hi; sleep 30 & echo $! > " + pidFile,
		Preferences: shPrefs(),
	})

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "hi\n", outcome.Stdout)
	assert.Empty(t, outcome.ErrorMessage)
	assert.NoError(t, outcome.Err)

	pid := readPID(t, pidFile)
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond,
		"background child %d survived the run", pid)
}

func TestExecute_DetachedBackgroundChildIsKilled(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:     "sleep 30 >/dev/null 2>&1 & echo $!",
		Preferences: shPrefs(),
	})
	require.Equal(t, domain.StatusSucceeded, outcome.Status)

	pid, err := strconv.Atoi(strings.TrimSpace(outcome.Stdout))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond,
		"background child %d survived the run", pid)
}

func TestExecute_FailingExitWithBackgroundChildKeepsStatus(t *testing.T) {
	e := NewLocalExecutor()
	e.waitDelay = 200 * time.Millisecond

	outcome := run(t, e, domain.ExecutionRequest{
		Command:     "sleep 30 & exit 4",
		Preferences: shPrefs(),
	})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 4, outcome.ExitCode)
	assert.Equal(t, "command exited with status 4", outcome.ErrorMessage)
}

func TestExecute_DefaultTimeoutIsThirtySeconds(t *testing.T) {
	assert.Equal(t, 30*time.Second, NewLocalExecutor().timeout)
	assert.Equal(t, 30*time.Second, NewLocalExecutor(WithTimeout(0)).timeout)
}

func TestExecute_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:          "pwd",
		Preferences:      shPrefs(),
		WorkingDirectory: "  " + dir + "  ",
	})

	require.Equal(t, domain.StatusSucceeded, outcome.Status, outcome.ErrorMessage)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(outcome.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, dir, outcome.ExecutionPath)
}

func TestExecute_WorkingDirectoryDoesNotLeak(t *testing.T) {
	before, err := os.Getwd()
	require.NoError(t, err)

	run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:          "true",
		Preferences:      shPrefs(),
		WorkingDirectory: t.TempDir(),
	})

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExecute_MissingWorkingDirectoryFails(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:          "echo should-not-run",
		Preferences:      shPrefs(),
		WorkingDirectory: filepath.Join(t.TempDir(), "missing"),
	})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.NotContains(t, outcome.Stdout, "should-not-run")
}

func TestExecute_ShellProfileIsSourced(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.sh")
	require.NoError(t, os.WriteFile(profile, []byte("GREETING=from-profile\nexport GREETING\n"), 0o644))

	prefs := shPrefs()
	prefs.ShellProfile = profile
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{Command: `echo "$GREETING"`, Preferences: prefs})

	require.Equal(t, domain.StatusSucceeded, outcome.Status, outcome.ErrorMessage)
	assert.Equal(t, "from-profile\n", outcome.Stdout)
}

func TestExecute_MissingShellProfileAborts(t *testing.T) {
	prefs := shPrefs()
	prefs.ShellProfile = filepath.Join(t.TempDir(), "nope.sh")
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{Command: "echo ran", Preferences: prefs})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.NotContains(t, outcome.Stdout, "ran")
}

func TestExecute_BashRcIsOptional(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not installed")
	}
	home := t.TempDir()
	prefs := domain.Preferences{DefaultShell: bash}
	e := NewLocalExecutor(WithEnv([]string{"HOME=" + home, "PATH=" + os.Getenv("PATH")}))

	outcome := run(t, e, domain.ExecutionRequest{Command: "echo no-rc", Preferences: prefs})
	require.Equal(t, domain.StatusSucceeded, outcome.Status, outcome.ErrorMessage)
	assert.Equal(t, "no-rc\n", outcome.Stdout)

	rc := "export FROM_RC=yes\necho noisy-banner\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte(rc), 0o644))
	outcome = run(t, e, domain.ExecutionRequest{Command: `echo "$FROM_RC"`, Preferences: prefs})
	require.Equal(t, domain.StatusSucceeded, outcome.Status, outcome.ErrorMessage)
	assert.Equal(t, "yes\n", outcome.Stdout, "rc output is suppressed, definitions kept")
}

func TestExecute_ZshRcIsOptional(t *testing.T) {
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		t.Skip("zsh not installed")
	}
	home := t.TempDir()
	e := NewLocalExecutor(WithEnv([]string{"HOME=" + home, "PATH=" + os.Getenv("PATH")}))

	outcome := run(t, e, domain.ExecutionRequest{Command: "echo ok", Preferences: domain.Preferences{DefaultShell: zsh}})
	require.Equal(t, domain.StatusSucceeded, outcome.Status, outcome.ErrorMessage)
	assert.Equal(t, "ok\n", outcome.Stdout)
}

func TestExecute_UnknownShellFailsAsData(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:     "echo hi",
		Preferences: domain.Preferences{DefaultShell: "/nonexistent/shell"},
	})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, -1, outcome.ExitCode)
	assert.NotEmpty(t, outcome.ErrorMessage)
	assert.ErrorIs(t, outcome.Err, domain.ErrExecutionFailure)
}

func TestExecute_CommandNotFoundGetsHint(t *testing.T) {
	outcome := run(t, NewLocalExecutor(), domain.ExecutionRequest{
		Command:     "definitely-not-a-command-xyz",
		Preferences: shPrefs(),
	})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 127, outcome.ExitCode)
	assert.Contains(t, outcome.Hint, "definitely-not-a-command-xyz")
}

func TestExecute_CanceledParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	outcome, err := NewLocalExecutor().Execute(ctx, domain.ExecutionRequest{Command: "sleep 60", Preferences: shPrefs()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, "command canceled", outcome.ErrorMessage)
}

func TestExecute_EmptyCommand(t *testing.T) {
	_, err := NewLocalExecutor().Execute(context.Background(), domain.ExecutionRequest{Command: "  \n", Preferences: shPrefs()})
	assert.ErrorIs(t, err, domain.ErrEmptyCommand)
}
