package cli

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/doeshing/shlaunch/internal/domain"
)

// closestCommand returns the recorded command nearest to query by edit
// distance, or "" when nothing is close enough to be a plausible typo.
func closestCommand(query string, records []domain.CommandRecord) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	limit := len([]rune(query))/3 + 1
	best, bestDist := "", limit+1
	for _, rec := range records {
		dist := levenshtein.ComputeDistance(query, rec.Command)
		if dist < bestDist {
			best, bestDist = rec.Command, dist
		}
	}
	if bestDist > limit {
		return ""
	}
	return best
}
