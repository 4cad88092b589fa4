package workdir

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/ports"
)

const (
	selectionScript = `tell application "Finder"
	set sel to selection as alias list
	if (count of sel) is 0 then return ""
	return POSIX path of (item 1 of sel)
end tell`

	frontWindowScript = `tell application "Finder"
	if (count of Finder windows) is 0 then return ""
	return POSIX path of (target of front Finder window as alias)
end tell`
)

// ScriptRunner executes an AppleScript and returns its trimmed output.
type ScriptRunner func(ctx context.Context, script string) (string, error)

// FinderResolver asks macOS Finder for a directory: the current selection
// first (a folder itself, or the folder containing a selected file), then
// the front window's target.
type FinderResolver struct {
	run     ScriptRunner
	goos    string
	timeout time.Duration
}

// NewFinderResolver builds a resolver backed by osascript.
func NewFinderResolver() *FinderResolver {
	return &FinderResolver{
		run:     runOsascript,
		goos:    runtime.GOOS,
		timeout: domain.DefaultResolverTimeout,
	}
}

// Resolve implements ports.DirectoryResolver.
func (f *FinderResolver) Resolve(ctx context.Context) (string, error) {
	if f.goos != "darwin" {
		return "", ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if dir, err := f.fromSelection(ctx); err == nil && dir != "" {
		return dir, nil
	}

	target, err := f.run(ctx, frontWindowScript)
	if err != nil {
		return "", fmt.Errorf("finder front window: %w", err)
	}
	if target == "" {
		return "", ErrNoDirectory
	}
	return filepath.Clean(target), nil
}

func (f *FinderResolver) fromSelection(ctx context.Context) (string, error) {
	selected, err := f.run(ctx, selectionScript)
	if err != nil || selected == "" {
		return "", err
	}
	// POSIX paths of folders from Finder end with a slash.
	if strings.HasSuffix(selected, "/") {
		return filepath.Clean(selected), nil
	}
	if checkDir(selected) == nil {
		return filepath.Clean(selected), nil
	}
	return filepath.Dir(selected), nil
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

var _ ports.DirectoryResolver = (*FinderResolver)(nil)
