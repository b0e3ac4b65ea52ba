// Package cli provides the tasksync command-line client.
//
// It wires configuration, the local SQLite replica, the HTTP API client and
// the client services into a cobra command tree. Commands edit the replica
// offline; "sync" runs one replication cycle and "run" keeps the replica in
// sync on a cron schedule while watching server reachability. "shell" starts
// an interactive loop over the same commands.
package cli
