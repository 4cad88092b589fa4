package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Execution defaults
const (
	// DefaultExecutionTimeout bounds a single command run
	DefaultExecutionTimeout = 30 * time.Second
	// DefaultResolverTimeout bounds working-directory inference
	DefaultResolverTimeout = 2 * time.Second
	// DefaultShell is used when preferences leave the shell empty
	DefaultShell = "/bin/zsh"
	// ProcessWaitDelay bounds pipe draining after the process is killed
	ProcessWaitDelay = 2 * time.Second
)

// History constants
const (
	// DefaultMaxHistorySize is the ledger capacity bound
	DefaultMaxHistorySize = 50
	// HistoryStorageKey is the durable key holding the JSON-encoded ledger
	HistoryStorageKey = "commandHistory"
	// DefaultHistoryLimit is the default number of records to display
	DefaultHistoryLimit = 20
	// DefaultTopCommands is how many commands history stats lists
	DefaultTopCommands = 5
)

// History backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Directory sources
const (
	DirectorySourceAuto   = "auto"
	DirectorySourceFinder = "finder"
	DirectorySourceNone   = "none"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
