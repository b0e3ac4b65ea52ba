package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

// AccountService resolves authenticated owners into accounts, creating
// them on first sight with the configured default plan.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	defaultPlan quota.Plan
	logger      logging.Logger
}

func NewAccountService(m repomanager.RepositoryManager, defaultPlan quota.Plan, logger logging.Logger) *AccountService {
	if !defaultPlan.Valid() {
		defaultPlan = quota.PlanFree
	}
	return &AccountService{
		repomanager: m,
		defaultPlan: defaultPlan,
		logger:      logger.With("module", "accounts"),
	}
}

// Ensure returns the account of ownerID.
func (s *AccountService) Ensure(ctx context.Context, ownerID string) (*models.Account, error) {
	acct, err := s.repomanager.Accounts(s.repomanager.DB()).Ensure(ctx, ownerID, string(s.defaultPlan))
	if err != nil {
		return nil, fmt.Errorf("account: %w", storageError(err))
	}
	return acct, nil
}
