package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

// Repository reads a dealer's inventory.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListForExport returns the dealer's vehicles with images ordered by position. Empty ids
// means every vehicle; empty statuses means every status.
func (r *Repository) ListForExport(ctx context.Context, dealerID uuid.UUID, ids []uuid.UUID, statuses []enums.VehicleStatus) ([]models.Vehicle, error) {
	q := r.Dealer(ctx, dealerID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}

	var rows []models.Vehicle
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List pages through the dealer's inventory, newest first, optionally narrowed to one status.
func (r *Repository) List(ctx context.Context, dealerID uuid.UUID, status *enums.VehicleStatus, cursor *pagination.Cursor, limit int) ([]models.Vehicle, error) {
	q := r.Dealer(ctx, dealerID).Model(&models.Vehicle{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Vehicle
	if err := q.Scopes(pagination.Scope("", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one vehicle inside the dealer's scope.
func (r *Repository) FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.Dealer(ctx, dealerID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
