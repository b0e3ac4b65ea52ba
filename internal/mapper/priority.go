package mapper

import (
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// PriorityToStorage is the many-to-one client to storage priority table.
var PriorityToStorage = map[syncapi.Priority]models.Priorite{
	syncapi.PriorityLow:    models.PrioriteBasse,
	syncapi.PriorityMedium: models.PrioriteMoyenne,
	syncapi.PriorityHigh:   models.PrioriteHaute,
	syncapi.PriorityUrgent: models.PrioriteHaute,
}

// PriorityToClient is the storage to client priority table.
var PriorityToClient = map[models.Priorite]syncapi.Priority{
	models.PrioriteBasse:      syncapi.PriorityLow,
	models.PrioriteMoyenne:    syncapi.PriorityMedium,
	models.PrioriteHaute:      syncapi.PriorityHigh,
	models.PrioriteNonDefinie: syncapi.PriorityLow,
}

// StoragePriority maps a client priority. Unknown values become non_definie.
func StoragePriority(p syncapi.Priority) models.Priorite {
	if v, ok := PriorityToStorage[p]; ok {
		return v
	}
	return models.PrioriteNonDefinie
}

// ClientPriority maps a storage priority. Unknown values become low.
func ClientPriority(p models.Priorite) syncapi.Priority {
	if v, ok := PriorityToClient[p]; ok {
		return v
	}
	return syncapi.PriorityLow
}
