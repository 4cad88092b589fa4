// Package workdir infers a working directory for the next command run.
// Every resolver is best-effort: callers treat errors as "no override".
package workdir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/shlaunch/internal/ports"
)

var (
	// ErrNoDirectory means the resolver ran but found nothing to use.
	ErrNoDirectory = errors.New("no working directory available")
	// ErrUnsupported means the resolver cannot work on this platform.
	ErrUnsupported = errors.New("working directory inference unsupported on this platform")
)

// Static always resolves to a fixed directory, which must exist.
type Static string

// Resolve implements ports.DirectoryResolver.
func (s Static) Resolve(context.Context) (string, error) {
	dir := strings.TrimSpace(string(s))
	if dir == "" {
		return "", ErrNoDirectory
	}
	if err := checkDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Chain tries resolvers in order and returns the first directory found.
type Chain []ports.DirectoryResolver

// Resolve implements ports.DirectoryResolver.
func (c Chain) Resolve(ctx context.Context) (string, error) {
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		dir, err := r.Resolve(ctx)
		if err == nil && dir != "" {
			return dir, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return "", ErrNoDirectory
	}
	return "", fmt.Errorf("%w: %w", ErrNoDirectory, errors.Join(errs...))
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

var (
	_ ports.DirectoryResolver = Static("")
	_ ports.DirectoryResolver = Chain(nil)
)
