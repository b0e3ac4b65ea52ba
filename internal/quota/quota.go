package quota

import (
	"fmt"
	"math"
	"time"
)

// Plan identifies a subscription level.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanTier2 Plan = "tier2"
	PlanTier3 Plan = "tier3"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanTier2, PlanTier3:
		return true
	}
	return false
}

// Action is a rate-limited operation.
type Action string

const (
	ActionSync     Action = "sync"
	ActionExport   Action = "export"
	ActionAnalysis Action = "analysis"
)

// State is the persisted meter of one action for one account or device.
type State struct {
	Plan         Plan  `json:"plan"`
	LifetimeUsed int64 `json:"lifetimeUsed"`
	PeriodUsed   int64 `json:"periodUsed"`
	// PeriodResetAt is the first instant of the next window. It stays nil for
	// lifetime rules and until the first recorded use.
	PeriodResetAt *time.Time `json:"periodResetAt"`
	// Window is the cadence PeriodUsed was counted under. Empty until the
	// first reconcile.
	Window Window `json:"window,omitempty"`
	// TimeZone is the IANA zone whose calendar defines day and month
	// boundaries. Empty means UTC.
	TimeZone string `json:"timeZone,omitempty"`
}

// NewState returns the zero-usage state of plan.
func NewState(plan Plan) State {
	return State{Plan: plan}
}

// Location resolves TimeZone, falling back to UTC.
func (s State) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Rule is the limit of one action under one plan.
type Rule struct {
	Window Window
	Limit  int64
}

// Admission is the outcome of Check.
type Admission struct {
	Allowed   bool
	Remaining int64
	Message   string
}

// Usage is the display form of a state.
type Usage struct {
	Plan             Plan
	Window           Window
	Used             int64
	Limit            int64
	Remaining        int64
	ResetAt          *time.Time
	ResetDescription string
}

// Reconcile zeroes the period counter and moves PeriodResetAt forward when
// now has reached the window PeriodResetAt starts. Lifetime rules never
// reset, and a clock that went backwards leaves the state alone. A state
// counted under another cadence, after a plan change, starts a fresh
// window of r.
func (r Rule) Reconcile(s State, now time.Time) State {
	if s.Window != r.Window {
		return r.rebase(s, now)
	}
	if r.Window == WindowLifetime || s.PeriodResetAt == nil {
		return s
	}

	loc := s.Location()
	if !reached(r.Window, now, *s.PeriodResetAt, loc) {
		return s
	}

	next := nextReset(r.Window, now, loc)
	s.PeriodUsed = 0
	s.PeriodResetAt = &next
	return s
}

func (r Rule) rebase(s State, now time.Time) State {
	// states saved before Window was tracked only adopt the cadence
	if s.Window == "" {
		s.Window = r.Window
		return r.Reconcile(s, now)
	}

	s.Window = r.Window
	s.PeriodUsed = 0
	s.PeriodResetAt = nil
	if r.Window != WindowLifetime {
		next := nextReset(r.Window, now, s.Location())
		s.PeriodResetAt = &next
	}
	return s
}

func (r Rule) used(s State) int64 {
	if r.Window == WindowLifetime {
		return s.LifetimeUsed
	}
	return s.PeriodUsed
}

func (r Rule) remaining(s State) int64 {
	left := r.Limit - r.used(s)
	if left < 0 {
		return 0
	}
	return left
}

// Check reconciles s and decides whether one more use is admitted. The
// reconciled state is returned so callers can persist it.
func (r Rule) Check(s State, now time.Time) (State, Admission) {
	s = r.Reconcile(s, now)
	left := r.remaining(s)

	a := Admission{Allowed: left > 0, Remaining: left}
	switch {
	case r.Limit <= 0:
		a.Message = fmt.Sprintf("Your %s plan does not include this feature. Upgrade to unlock it.", s.Plan)
	case left == 0 && r.Window == WindowLifetime:
		a.Message = fmt.Sprintf("You have used all %d included uses. Upgrade your plan to continue.", r.Limit)
	case left == 0:
		a.Message = fmt.Sprintf("Limit of %d per %s reached. %s.", r.Limit, r.Window.period(), describeReset(r.Window, s.PeriodResetAt, s.Location()))
	default:
		a.Message = fmt.Sprintf("%d of %d remaining.", left, r.Limit)
	}
	return s, a
}

// Record reconciles s and counts one use. Counters saturate instead of
// wrapping. PeriodResetAt is seeded on the first use of a windowed rule.
func (r Rule) Record(s State, now time.Time) State {
	s = r.Reconcile(s, now)

	s.LifetimeUsed = inc(s.LifetimeUsed)
	s.PeriodUsed = inc(s.PeriodUsed)

	if r.Window != WindowLifetime && s.PeriodResetAt == nil {
		next := nextReset(r.Window, now, s.Location())
		s.PeriodResetAt = &next
	}
	return s
}

// Describe renders s for display after reconciling it.
func (r Rule) Describe(s State, now time.Time) Usage {
	s = r.Reconcile(s, now)
	return Usage{
		Plan:             s.Plan,
		Window:           r.Window,
		Used:             r.used(s),
		Limit:            r.Limit,
		Remaining:        r.remaining(s),
		ResetAt:          s.PeriodResetAt,
		ResetDescription: describeReset(r.Window, s.PeriodResetAt, s.Location()),
	}
}

func inc(n int64) int64 {
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	if n < 0 {
		return 1
	}
	return n + 1
}
