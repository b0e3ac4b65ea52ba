// Package client contains the device side of the sync protocol.
//
// # Overview
//
// The package provides:
//  1. The API contract the sync cycle depends on (see the Client
//     interface): Pull, Push, quota usage, exports and Ping.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that sends a bearer
//     token, bounds every call by a timeout and maps response statuses to
//     error kinds.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations,
//     NewRepositories) over SQLite with embedded goose migrations.
//
// # Error Handling
//
// Callers match with errors.Is / errors.As: ErrUnavailable (network failure
// or 5xx), ErrUnauthorized (401), *common.EntitlementError (403) and
// *common.ValidationError (400). Any other status is an *APIError.
package client
