package services

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

// QuotaService meters account actions against the quota policy, persisting
// states through the quotas repository.
type QuotaService struct {
	gate *quota.Gate
}

func NewQuotaService(m repomanager.RepositoryManager, policy quota.Policy, logger logging.Logger) *QuotaService {
	return &QuotaService{gate: quota.NewGate(m.Quotas(m.DB()), policy, logger)}
}

// Gate exposes the underlying gate, mostly so tests can pin its clock.
func (s *QuotaService) Gate() *quota.Gate {
	return s.gate
}

func subject(acct *models.Account) quota.Subject {
	return quota.Subject{
		Owner:    acct.ID,
		Plan:     quota.Plan(acct.Plan),
		TimeZone: acct.TimeZone,
	}
}

// Entitled reports whether the account's plan allows action at all.
func (s *QuotaService) Entitled(acct *models.Account, action quota.Action) bool {
	return s.gate.Policy().Entitled(action, quota.Plan(acct.Plan))
}

func (s *QuotaService) Check(ctx context.Context, acct *models.Account, action quota.Action) (quota.Admission, error) {
	return s.gate.Check(ctx, subject(acct), action)
}

func (s *QuotaService) Consume(ctx context.Context, acct *models.Account, action quota.Action) (quota.Admission, error) {
	return s.gate.Consume(ctx, subject(acct), action)
}

func (s *QuotaService) Usage(ctx context.Context, acct *models.Account, action quota.Action) (quota.Usage, error) {
	return s.gate.Usage(ctx, subject(acct), action)
}
