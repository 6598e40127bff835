package vehicles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type stubRepo struct {
	rows    []models.Vehicle
	vehicle *models.Vehicle
	err     error
	status  *enums.VehicleStatus
	limit   int
}

func (s *stubRepo) List(ctx context.Context, dealerID uuid.UUID, status *enums.VehicleStatus, cursor *pagination.Cursor, limit int) ([]models.Vehicle, error) {
	s.status, s.limit = status, limit
	return s.rows, s.err
}

func (s *stubRepo) FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.Vehicle, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.vehicle == nil || s.vehicle.ID != id || s.vehicle.DealerID != dealerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vehicle, nil
}

func TestListBuildsNextCursor(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{rows: []models.Vehicle{
		{ID: uuid.New(), Make: "Audi", CreatedAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), Make: "BMW", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Make: "Cupra", CreatedAt: base},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	reserved := enums.VehicleStatusReserved
	page, err := svc.List(context.Background(), uuid.New(), ListParams{Params: pagination.Params{Limit: 2}, Status: &reserved})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "BMW", page.Items[1].Make)
	assert.NotEmpty(t, page.NextCursor)
	assert.Equal(t, &reserved, repo.status)
	assert.Equal(t, 2, repo.limit)
}

func TestListRejectsBadInput(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	bogus := enums.VehicleStatus("scrapped")
	_, err = svc.List(context.Background(), uuid.New(), ListParams{Status: &bogus})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(context.Background(), uuid.New(), ListParams{Params: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	failing, err := NewService(&stubRepo{err: errors.New("db down")})
	require.NoError(t, err)
	_, err = failing.List(context.Background(), uuid.New(), ListParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGetHidesCostFieldsUnlessInternal(t *testing.T) {
	purchase := decimal.RequireFromString("12000")
	notes := "Unfallfrei laut Vorbesitzer"
	v := &models.Vehicle{
		ID: uuid.New(), DealerID: uuid.New(), Make: "Seat", Model: "Leon",
		PurchasePrice: &purchase, InternalNotes: &notes, Status: enums.VehicleStatusInStock,
		Images: []models.VehicleImage{{URL: "https://cdn/1.jpg", Position: 0, IsMain: true}},
	}
	svc, err := NewService(&stubRepo{vehicle: v})
	require.NoError(t, err)

	public, err := svc.Get(context.Background(), v.DealerID, v.ID, false)
	require.NoError(t, err)
	assert.Nil(t, public.PurchasePrice)
	assert.Nil(t, public.InternalNotes)
	require.Len(t, public.Images, 1)
	assert.True(t, public.Images[0].IsMain)

	internal, err := svc.Get(context.Background(), v.DealerID, v.ID, true)
	require.NoError(t, err)
	require.NotNil(t, internal.PurchasePrice)
	assert.True(t, purchase.Equal(*internal.PurchasePrice))
	assert.Equal(t, &notes, internal.InternalNotes)

	_, err = svc.Get(context.Background(), uuid.New(), v.ID, true)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "other dealers cannot see the vehicle")
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
