package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/shlaunch/internal/domain"
)

func TestUpsertRecordTieKeepsNewestFirst(t *testing.T) {
	records := []domain.CommandRecord{
		{Command: "a", LastUsed: 5},
		{Command: "b", LastUsed: 5},
	}
	got := upsertRecord(records, domain.CommandRecord{Command: "c", LastUsed: 5}, 10)

	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, commands(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertRecordDoesNotAliasInput(t *testing.T) {
	records := []domain.CommandRecord{{Command: "a", LastUsed: 1}, {Command: "b", LastUsed: 2}}
	_ = upsertRecord(records, domain.CommandRecord{Command: "a", LastUsed: 3}, 1)

	if records[0].Command != "a" || records[1].Command != "b" {
		t.Fatalf("input was modified: %+v", records)
	}
}

func TestTruncate(t *testing.T) {
	records := []domain.CommandRecord{{Command: "a"}, {Command: "b"}, {Command: "c"}}
	if got := truncate(records, 2); len(got) != 2 || got[1].Command != "b" {
		t.Fatalf("unexpected truncate result: %+v", got)
	}
	if got := truncate(records, 0); len(got) != 3 {
		t.Fatalf("zero max should not truncate: %+v", got)
	}
}
