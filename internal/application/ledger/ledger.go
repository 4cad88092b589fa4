// Package ledger maintains the bounded, deduplicated, LRU-ordered history
// of executed commands and persists it after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/ports"
)

// Options configures a Ledger.
type Options struct {
	// MaxSize is the capacity bound; values < 1 use the default of 50.
	MaxSize int
	Logger  ports.Logger
}

// Ledger owns the in-memory command history. Every mutation holds mu for
// the whole read-mutate-persist cycle, so concurrent outcomes are applied
// one at a time and persisted in the same order.
//
// Mutations are applied to the stored sequence inside the store's Update,
// not to the copy read at Load, so ledgers in other processes sharing the
// store do not overwrite each other's records.
type Ledger struct {
	store   ports.KeyValueStore
	logger  ports.Logger
	maxSize int

	mu      sync.Mutex
	records []domain.CommandRecord
	// dirty holds commands whose local state has not reached the store
	// because a write failed.
	dirty map[string]bool
}

// New builds an empty ledger backed by store. Call Load to pick up
// persisted history.
func New(store ports.KeyValueStore, opts Options) *Ledger {
	maxSize := opts.MaxSize
	if maxSize < 1 {
		maxSize = domain.DefaultMaxHistorySize
	}
	return &Ledger{
		store:   store,
		logger:  opts.Logger,
		maxSize: maxSize,
		dirty:   map[string]bool{},
	}
}

// MaxSize returns the capacity bound.
func (l *Ledger) MaxSize() int {
	return l.maxSize
}

// Load replaces the in-memory sequence with the persisted one. Missing or
// corrupt data yields an empty history rather than an error.
func (l *Ledger) Load(ctx context.Context) []domain.CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = l.read(ctx)
	l.dirty = map[string]bool{}
	return cloneRecords(l.records)
}

func (l *Ledger) read(ctx context.Context) []domain.CommandRecord {
	if l.store == nil {
		return nil
	}
	data, err := l.store.Get(ctx, domain.HistoryStorageKey)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			l.warn("history read failed", err)
		}
		return nil
	}
	records, err := decode(data, l.maxSize)
	if err != nil {
		l.warn("history data corrupt, starting empty", err)
		return nil
	}
	return records
}

// decode parses a persisted sequence. Empty input is an empty history.
func decode(data []byte, max int) ([]domain.CommandRecord, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var records []domain.CommandRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return normalize(records, max), nil
}

// Upsert records the outcome of running command at now. An existing record
// has its timestamp replaced, its use count incremented and its
// output, error and execution path overwritten; otherwise a new record is
// inserted. The full sequence is re-sorted, trimmed to capacity and persisted.
func (l *Ledger) Upsert(ctx context.Context, command string, outcome domain.ExecutionOutcome, now time.Time) domain.CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := domain.CommandRecord{
		Command:       command,
		LastUsed:      now.UnixMilli(),
		UseCount:      1,
		Output:        outcome.Stdout,
		Error:         outcome.RecordedError(),
		ExecutionPath: outcome.ExecutionPath,
	}
	l.commit(ctx, command, func(records []domain.CommandRecord) []domain.CommandRecord {
		rec.UseCount = 1
		if i := indexOf(records, command); i >= 0 {
			rec.UseCount = records[i].UseCount + 1
		}
		return upsertRecord(records, rec, l.maxSize)
	})
	return rec
}

// Remove deletes the record matching command exactly.
func (l *Ledger) Remove(ctx context.Context, command string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if indexOf(l.records, command) < 0 {
		return false
	}
	removed := false
	l.commit(ctx, command, func(records []domain.CommandRecord) []domain.CommandRecord {
		i := indexOf(records, command)
		if i < 0 {
			return records
		}
		removed = true
		return append(records[:i:i], records[i+1:]...)
	})
	return removed
}

// Clear empties the history and deletes the persisted entry.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	l.dirty = map[string]bool{}
	if l.store == nil {
		return
	}
	if err := l.store.Delete(ctx, domain.HistoryStorageKey); err != nil {
		l.warn("history clear failed", err)
	}
}

// Search filters by case-insensitive substring on the command text,
// preserving recency order. An empty query matches everything.
func (l *Ledger) Search(query string) []domain.CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	needle := strings.ToLower(query)
	out := make([]domain.CommandRecord, 0, len(l.records))
	for _, rec := range l.records {
		if strings.Contains(strings.ToLower(rec.Command), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Records returns a copy of the ordered history.
func (l *Ledger) Records() []domain.CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneRecords(l.records)
}

// Get looks up the record for command.
func (l *Ledger) Get(command string) (domain.CommandRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := indexOf(l.records, command); i >= 0 {
		return l.records[i], true
	}
	return domain.CommandRecord{}, false
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Stats summarises the history with the top n commands by use count.
func (l *Ledger) Stats(n int) domain.HistoryStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := domain.HistoryStats{Records: len(l.records)}
	counts := make([]domain.CommandCount, 0, len(l.records))
	for _, rec := range l.records {
		stats.TotalRuns += rec.UseCount
		if rec.HasError() {
			stats.WithErrors++
		}
		counts = append(counts, domain.CommandCount{Command: rec.Command, Count: rec.UseCount})
	}
	if len(l.records) > 0 {
		stats.Newest = l.records[0].LastUsed
		stats.Oldest = l.records[len(l.records)-1].LastUsed
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	stats.TopCommands = counts
	return stats
}

// Export writes the history as an indented JSON array, newest first.
func (l *Ledger) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(l.Records())); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return nil
}

// commit applies mutate to the stored sequence under the store's lock and
// writes the result back; l.records becomes whatever was written. When the
// store cannot be read or written the mutation is applied to l.records
// alone and command is remembered as dirty, so memory stays authoritative
// for this session and the next successful write carries it.
func (l *Ledger) commit(ctx context.Context, command string, mutate func([]domain.CommandRecord) []domain.CommandRecord) {
	if l.store == nil {
		l.records = mutate(cloneRecords(l.records))
		return
	}
	applied := false
	err := l.store.Update(ctx, domain.HistoryStorageKey, func(current []byte) ([]byte, error) {
		next := mutate(l.reconcile(current))
		data, err := json.Marshal(nonNil(next))
		if err != nil {
			return nil, fmt.Errorf("encode history: %w", err)
		}
		l.records = next
		applied = true
		return data, nil
	})
	if err != nil {
		if !applied {
			l.records = mutate(cloneRecords(l.records))
		}
		l.dirty[command] = true
		l.warn("history write failed", err)
		return
	}
	l.dirty = map[string]bool{}
}

// reconcile returns the stored sequence with this ledger's unwritten
// changes laid over it. Records other processes wrote since Load are kept.
// Unreadable data falls back to the in-memory sequence.
func (l *Ledger) reconcile(current []byte) []domain.CommandRecord {
	stored, err := decode(current, l.maxSize)
	if err != nil {
		l.warn("history data corrupt, rewriting from memory", err)
		return cloneRecords(l.records)
	}
	for command := range l.dirty {
		j := indexOf(stored, command)
		i := indexOf(l.records, command)
		switch {
		case i < 0 && j >= 0:
			stored = append(stored[:j:j], stored[j+1:]...)
		case i >= 0 && j < 0:
			stored = append(stored, l.records[i])
		case i >= 0 && l.records[i].LastUsed >= stored[j].LastUsed:
			local := l.records[i]
			if stored[j].UseCount > local.UseCount {
				local.UseCount = stored[j].UseCount
			}
			stored[j] = local
		}
	}
	return normalize(stored, l.maxSize)
}

func nonNil(records []domain.CommandRecord) []domain.CommandRecord {
	if records == nil {
		return []domain.CommandRecord{}
	}
	return records
}

func (l *Ledger) warn(msg string, err error) {
	if l.logger == nil {
		return
	}
	fields := map[string]interface{}{"error": err.Error(), "key": domain.HistoryStorageKey}
	if l.store != nil {
		fields["location"] = l.store.Location()
	}
	l.logger.Warn(msg, fields)
}

var _ ports.HistoryLedger = (*Ledger)(nil)
