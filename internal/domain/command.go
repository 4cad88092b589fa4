package domain

import "time"

// CommandRecord is the ledger entry for one distinct command string.
// Command is the identity key: exact, case-sensitive, untrimmed.
type CommandRecord struct {
	Command       string `json:"command"`
	LastUsed      int64  `json:"lastUsed"`
	UseCount      int    `json:"useCount"`
	// Output and Error hold text, not raw bytes: the history is stored as
	// JSON, so byte sequences that are not valid UTF-8 come back as U+FFFD
	// after a reload.
	Output        string `json:"output,omitempty"`
	Error         string `json:"error,omitempty"`
	ExecutionPath string `json:"executionPath,omitempty"`
}

// LastUsedTime converts the epoch-millisecond LastUsed into a time.Time.
func (r CommandRecord) LastUsedTime() time.Time {
	return time.UnixMilli(r.LastUsed)
}

// HasError reports whether the most recent run left error text behind.
func (r CommandRecord) HasError() bool {
	return r.Error != ""
}

// CommandCount pairs a command with how many times it ran.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// HistoryStats summarises the ledger for the stats command.
type HistoryStats struct {
	Records     int            `json:"records"`
	TotalRuns   int            `json:"totalRuns"`
	WithErrors  int            `json:"withErrors"`
	TopCommands []CommandCount `json:"topCommands"`
	Newest      int64          `json:"newest"`
	Oldest      int64          `json:"oldest"`
}
