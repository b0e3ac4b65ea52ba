// Package quota meters rate-limited actions (sync, export, analysis) against
// plan-specific limits that renew on a calendar window.
//
// The state machine is a set of pure functions on Rule and State: Reconcile
// moves a state into the current window, Check decides admission, Record
// counts one use and Describe renders usage for display. Gate adds
// persistence through an injected Store and fails open when that store is
// unavailable.
//
// Check followed by Record is not atomic across replicas. Two devices of the
// same account that check at the same time can both be admitted, so usage may
// end slightly past the limit. That overshoot is accepted.
package quota
