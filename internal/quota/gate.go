package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

// ErrUnknownAction is returned for an action the policy does not list.
var ErrUnknownAction = errors.New("unknown quota action")

// Store persists states. Load returns common.ErrorNotFound when nothing was
// stored yet for owner and action.
type Store interface {
	Load(ctx context.Context, owner string, action Action) (State, error)
	Save(ctx context.Context, owner string, action Action, s State) error
}

// Subject is who is being metered. Plan and TimeZone, when set, override the
// stored values: the caller usually knows the current plan better than a
// state saved before an upgrade.
type Subject struct {
	Owner    string
	Plan     Plan
	TimeZone string
}

// Gate runs the state machine against a Store.
type Gate struct {
	store  Store
	policy Policy
	logger logging.Logger
	now    func() time.Time
}

// NewGate builds a gate. A nil policy means DefaultPolicy.
func NewGate(store Store, policy Policy, logger logging.Logger) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Gate{
		store:  store,
		policy: policy,
		logger: logger.With("module", "quota"),
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Policy returns the rules the gate enforces.
func (g *Gate) Policy() Policy {
	return g.policy
}

// load never fails: a missing state is lazily created and an unreachable
// store yields the free zero-usage default.
func (g *Gate) load(ctx context.Context, subj Subject, action Action) State {
	st, err := g.store.Load(ctx, subj.Owner, action)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		st = NewState(PlanFree)
	default:
		g.logger.Warn(ctx, "quota store unavailable, failing open",
			"owner", subj.Owner, "action", action, "error", err)
		st = NewState(PlanFree)
	}

	if subj.Plan != "" {
		st.Plan = subj.Plan
	}
	if subj.TimeZone != "" {
		st.TimeZone = subj.TimeZone
	}
	return st
}

func (g *Gate) rule(action Action, plan Plan) (Rule, error) {
	r, ok := g.policy.Rule(action, plan)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return r, nil
}

// Check decides admission without recording a use.
func (g *Gate) Check(ctx context.Context, subj Subject, action Action) (Admission, error) {
	st := g.load(ctx, subj, action)
	r, err := g.rule(action, st.Plan)
	if err != nil {
		return Admission{}, err
	}
	_, a := r.Check(st, g.now())
	return a, nil
}

// Consume checks admission and, when admitted, records one use. A failed
// save is logged and the use still goes ahead.
func (g *Gate) Consume(ctx context.Context, subj Subject, action Action) (Admission, error) {
	st := g.load(ctx, subj, action)
	r, err := g.rule(action, st.Plan)
	if err != nil {
		return Admission{}, err
	}

	now := g.now()
	st, a := r.Check(st, now)
	if !a.Allowed {
		return a, nil
	}

	st = r.Record(st, now)
	if err := g.store.Save(ctx, subj.Owner, action, st); err != nil {
		g.logger.Error(ctx, "quota state not saved",
			"owner", subj.Owner, "action", action, "error", err)
	}

	a.Remaining = r.remaining(st)
	return a, nil
}

// Usage describes the current consumption of action.
func (g *Gate) Usage(ctx context.Context, subj Subject, action Action) (Usage, error) {
	st := g.load(ctx, subj, action)
	r, err := g.rule(action, st.Plan)
	if err != nil {
		return Usage{}, err
	}
	return r.Describe(st, g.now()), nil
}
