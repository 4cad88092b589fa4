package ledger

import (
	"sort"

	"github.com/doeshing/shlaunch/internal/domain"
)

// upsertRecord places rec at the front of records, replacing any record
// with the same command, then re-sorts by LastUsed descending and truncates
// to max. Ties keep rec ahead of older entries.
func upsertRecord(records []domain.CommandRecord, rec domain.CommandRecord, max int) []domain.CommandRecord {
	out := make([]domain.CommandRecord, 0, len(records)+1)
	out = append(out, rec)
	for _, existing := range records {
		if existing.Command == rec.Command {
			continue
		}
		out = append(out, existing)
	}
	sortByRecency(out)
	return truncate(out, max)
}

// sortByRecency orders records most recently used first. The sort is stable
// so records with equal LastUsed keep their relative order.
func sortByRecency(records []domain.CommandRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUsed > records[j].LastUsed
	})
}

// truncate drops the least recently used tail beyond max.
func truncate(records []domain.CommandRecord, max int) []domain.CommandRecord {
	if max > 0 && len(records) > max {
		return records[:max]
	}
	return records
}

func indexOf(records []domain.CommandRecord, command string) int {
	for i, rec := range records {
		if rec.Command == command {
			return i
		}
	}
	return -1
}

// normalize repairs a loaded sequence: drops blank commands, defaults a
// missing use count to 1, keeps only the most recent record per command and
// restores ordering and the capacity bound.
func normalize(records []domain.CommandRecord, max int) []domain.CommandRecord {
	out := make([]domain.CommandRecord, 0, len(records))
	for _, rec := range records {
		if rec.Command == "" {
			continue
		}
		if rec.UseCount < 1 {
			rec.UseCount = 1
		}
		out = append(out, rec)
	}
	sortByRecency(out)

	seen := make(map[string]struct{}, len(out))
	deduped := out[:0]
	for _, rec := range out {
		if _, dup := seen[rec.Command]; dup {
			continue
		}
		seen[rec.Command] = struct{}{}
		deduped = append(deduped, rec)
	}
	return truncate(deduped, max)
}

func cloneRecords(records []domain.CommandRecord) []domain.CommandRecord {
	out := make([]domain.CommandRecord, len(records))
	copy(out, records)
	return out
}
