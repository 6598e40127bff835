package leads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealeros/dealeros-backend/pkg/db/dbtest"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

func createLead(t *testing.T, r *Repository, dealerID uuid.UUID, status enums.LeadStatus, at time.Time) models.Lead {
	t.Helper()
	email := "lead@example.ch"
	lead := models.Lead{
		ID:        uuid.New(),
		DealerID:  dealerID,
		Email:     &email,
		Source:    enums.LeadSourceWebsite,
		Status:    status,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, r.Create(context.Background(), &lead))
	return lead
}

func TestRepositoryListIsTenantScopedAndPaginated(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	dealerID := uuid.New()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	var created []models.Lead
	for i := 0; i < 5; i++ {
		created = append(created, createLead(t, r, dealerID, enums.LeadStatusNew, base.Add(time.Duration(i)*time.Hour)))
	}
	createLead(t, r, uuid.New(), enums.LeadStatusNew, base)

	rows, err := r.List(ctx, dealerID, nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3, "limit plus one buffer row")
	assert.Equal(t, created[4].ID, rows[0].ID, "newest first")

	page := pagination.Build(rows, 2, func(l models.Lead) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	})
	cursor, err := pagination.ParseCursor(page.NextCursor)
	require.NoError(t, err)

	next, err := r.List(ctx, dealerID, nil, cursor, 2)
	require.NoError(t, err)
	require.NotEmpty(t, next)
	assert.Equal(t, created[2].ID, next[0].ID)

	won := enums.LeadStatusWon
	filtered, err := r.List(ctx, dealerID, &won, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestRepositoryFindSaveAndActivities(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	lead := createLead(t, r, dealerID, enums.LeadStatusNew, now)

	_, err := r.FindByID(ctx, uuid.New(), lead.ID)
	assert.Error(t, err, "other tenants cannot read the lead")

	err = r.InTx(ctx, func(tx *Repository) error {
		lead.Status = enums.LeadStatusContacted
		lead.LastContactAt = &now
		if err := tx.Save(ctx, &lead); err != nil {
			return err
		}
		return tx.AddActivity(ctx, &models.LeadActivity{
			ID:        uuid.New(),
			LeadID:    lead.ID,
			Type:      enums.ActivityTypeStatusChange,
			Direction: enums.ActivityDirectionInternal,
			CreatedAt: now,
		})
	})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, dealerID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LeadStatusContacted, got.Status)
	require.NotNil(t, got.LastContactAt)

	acts, err := r.ActivitiesFor(ctx, []uuid.UUID{lead.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, acts[lead.ID], 1)

	empty, err := r.ActivitiesFor(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryDeleteAndVehicleCheck(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	dealerID := uuid.New()
	lead := createLead(t, r, dealerID, enums.LeadStatusNew, time.Now().UTC())

	ok, err := r.Delete(ctx, uuid.New(), lead.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.Delete(ctx, dealerID, lead.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	vehicle := models.Vehicle{ID: uuid.New(), DealerID: dealerID, Make: "VW", Model: "Golf", Status: enums.VehicleStatusInStock}
	require.NoError(t, conn.Create(&vehicle).Error)
	belongs, err := r.VehicleBelongsTo(ctx, dealerID, vehicle.ID)
	require.NoError(t, err)
	assert.True(t, belongs)
	belongs, err = r.VehicleBelongsTo(ctx, uuid.New(), vehicle.ID)
	require.NoError(t, err)
	assert.False(t, belongs)
}
