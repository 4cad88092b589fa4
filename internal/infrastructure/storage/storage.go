// Package storage provides durable key-value stores for the history ledger.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/shlaunch/internal/ports"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = ports.ErrNotFound

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage key is empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage key %q contains a path separator", key)
	}
	return nil
}
