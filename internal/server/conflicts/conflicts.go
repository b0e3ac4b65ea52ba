// Package conflicts flags concurrent edits in a pushed batch.
//
// Detection is advisory. A conflicting record is still written; the count
// only tells the client that it overwrote a newer server version.
package conflicts

import (
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

// Count returns how many incoming records exist in current with a strictly
// newer updatedAt. current holds the stored updatedAt per id for the same id
// set; ids missing from it are new records.
func Count(incoming []models.Stamp, current map[string]time.Time) int {
	n := 0
	for _, in := range incoming {
		stored, ok := current[in.ID]
		if ok && stored.After(in.UpdatedAt) {
			n++
		}
	}
	return n
}

// Index turns stored stamps into the lookup Count expects.
func Index(stamps []models.Stamp) map[string]time.Time {
	m := make(map[string]time.Time, len(stamps))
	for _, s := range stamps {
		m[s.ID] = s.UpdatedAt
	}
	return m
}

// IDs returns the ids of stamps in order.
func IDs(stamps []models.Stamp) []string {
	ids := make([]string, len(stamps))
	for i, s := range stamps {
		ids[i] = s.ID
	}
	return ids
}
