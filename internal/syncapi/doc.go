// Package syncapi is the wire contract between a replica and the sync
// server: the client-facing Task and Domain representations, the Pull and
// Push messages, and the quota/export responses.
//
// Every request type has a Validate method. It is the only place where raw
// payloads are checked; code behind the HTTP boundary works with values that
// already passed validation. Validation is all-or-nothing: one bad record
// rejects the whole batch, and the returned *common.ValidationError lists
// every offending field (for example "tasks[3].priority").
package syncapi
