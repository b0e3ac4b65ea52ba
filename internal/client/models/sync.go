// Package models holds client-side types that are not part of the wire
// contract.
package models

import "time"

// SyncState is the phase of the sync cycle.
type SyncState int32

const (
	SyncIdle SyncState = iota
	SyncPulling
	SyncMerging
	SyncPushing
)

func (s SyncState) String() string {
	switch s {
	case SyncPulling:
		return "pulling"
	case SyncMerging:
		return "merging"
	case SyncPushing:
		return "pushing"
	}
	return "idle"
}

// SyncResult summarises one completed cycle.
type SyncResult struct {
	// Pulled is how many records the server sent, Applied how many of them
	// were newer than the local copy.
	Pulled    int
	Applied   int
	Pushed    int
	Conflicts int
	// Cursor is the new last-sync instant.
	Cursor time.Time
}
