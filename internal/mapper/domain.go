package mapper

import (
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// ToStorageDomain maps a validated client domain owned by ownerID.
func ToStorageDomain(d *syncapi.Domain, ownerID string) *models.Domain {
	return &models.Domain{
		ID:          d.ID,
		UserID:      ownerID,
		Name:        d.Name,
		Color:       strings.TrimPrefix(d.Color, "#"),
		Icon:        d.Icon,
		Description: d.Description,
		IsDefault:   d.IsDefault,
		Position:    d.Order,
		CreatedAt:   Instant(d.CreatedAt),
		UpdatedAt:   Instant(d.UpdatedAt),
		DeletedAt:   instantPtr(d.DeletedAt),
	}
}

// ToClientDomain maps a stored domain back to the wire representation.
func ToClientDomain(d *models.Domain) syncapi.Domain {
	return syncapi.Domain{
		ID:          d.ID,
		Name:        d.Name,
		Color:       "#" + d.Color,
		Icon:        d.Icon,
		Description: d.Description,
		IsDefault:   d.IsDefault,
		Order:       d.Position,
		CreatedAt:   Instant(d.CreatedAt),
		UpdatedAt:   Instant(d.UpdatedAt),
		DeletedAt:   instantPtr(d.DeletedAt),
	}
}
