package quotas

import "github.com/dmitrijs2005/tasksync/internal/quota"

// Repository persists quota states, one per owner and action.
type Repository interface {
	quota.Store
}
