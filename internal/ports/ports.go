// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (ledger, launch, doctor) depends only on these
// contracts; the infrastructure layer supplies adapters for process
// execution, durable storage, working-directory inference and logging.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.shlaunch/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CommandExecutor runs one command through the configured shell and captures
// its outcome. The error return is reserved for invalid requests; failed and
// timed-out runs are reported through the outcome.
type CommandExecutor interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionOutcome, error)
}

// DirectoryResolver infers a working directory for the next run.
// Callers treat any error as "no override".
type DirectoryResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ErrNotFound is returned by KeyValueStore.Get for keys that were never
// written or have been deleted.
var ErrNotFound = errors.New("not found")

// KeyValueStore is the durable store backing the history ledger.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update runs fn on the current value of key and stores what it returns,
	// holding a lock that also excludes other processes sharing the store.
	// fn receives nil when the key does not exist and is called at most once.
	// An error from fn aborts the update and is returned unchanged.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Location() string
}

// HistoryLedger is the bounded, LRU-ordered record of executed commands.
type HistoryLedger interface {
	Upsert(ctx context.Context, command string, outcome domain.ExecutionOutcome, now time.Time) domain.CommandRecord
	Get(command string) (domain.CommandRecord, bool)
	Records() []domain.CommandRecord
}

// Clipboard provides cross-platform clipboard integration for copying output.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
