package quota

// Policy maps every action and plan to its rule.
type Policy map[Action]map[Plan]Rule

// DefaultPolicy returns the built-in limits. Sync is not part of the free plan.
func DefaultPolicy() Policy {
	return Policy{
		ActionSync: {
			PlanFree:  {Window: WindowLifetime, Limit: 0},
			PlanTier2: {Window: WindowDaily, Limit: 200},
			PlanTier3: {Window: WindowDaily, Limit: 1000},
		},
		ActionExport: {
			PlanFree:  {Window: WindowLifetime, Limit: 2},
			PlanTier2: {Window: WindowMonthly, Limit: 20},
			PlanTier3: {Window: WindowDaily, Limit: 20},
		},
		ActionAnalysis: {
			PlanFree:  {Window: WindowLifetime, Limit: 2},
			PlanTier2: {Window: WindowMonthly, Limit: 30},
			PlanTier3: {Window: WindowDaily, Limit: 20},
		},
	}
}

// Rule looks up the rule of action under plan. Unknown plans get the free
// rule; ok is false only for an unknown action.
func (p Policy) Rule(action Action, plan Plan) (Rule, bool) {
	byPlan, ok := p[action]
	if !ok {
		return Rule{}, false
	}
	if r, ok := byPlan[plan]; ok {
		return r, true
	}
	r, ok := byPlan[PlanFree]
	return r, ok
}

// Entitled reports whether plan may perform action at all.
func (p Policy) Entitled(action Action, plan Plan) bool {
	r, ok := p.Rule(action, plan)
	return ok && r.Limit > 0
}
