package mapper

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/google/go-cmp/cmp"
)

func TestDomainMapping(t *testing.T) {
	in := syncapi.Domain{
		ID:          "0b6c7f0e-5a49-4a3e-8d1f-9e2a7b6c5d4e",
		Name:        "Health",
		Color:       "#a1B2c3",
		Icon:        "heart",
		Description: "sport and sleep",
		IsDefault:   true,
		Order:       2,
		CreatedAt:   time.Date(2026, 2, 1, 7, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC),
	}

	stored := ToStorageDomain(&in, "owner-1")

	want := &models.Domain{
		ID:          in.ID,
		UserID:      "owner-1",
		Name:        "Health",
		Color:       "a1B2c3",
		Icon:        "heart",
		Description: "sport and sleep",
		IsDefault:   true,
		Position:    2,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Fatalf("storage domain mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(in, ToClientDomain(stored)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
