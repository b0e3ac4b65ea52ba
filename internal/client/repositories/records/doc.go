// Package records persists tasks and domains of the local replica.
//
// Each row keeps the wire representation as a JSON body next to the
// columns the sync cycle queries: the update instant in nanoseconds, a
// tombstone flag and a pending flag for changes not yet pushed.
package records
