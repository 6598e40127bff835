package tenancy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
)

// Repository answers the resolver's lookups with plain reads.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.PlatformAdmin{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) DealerExists(ctx context.Context, dealerID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Dealer{}).Where("id = ?", dealerID).Count(&count).Error
	return count > 0, err
}

// AcceptedMemberships excludes invitations that were never accepted.
func (r *Repository) AcceptedMemberships(ctx context.Context, userID uuid.UUID) ([]models.TeamMember, error) {
	var rows []models.TeamMember
	err := r.DB(ctx).
		Where("user_id = ? AND accepted_at IS NOT NULL", userID).
		Order("created_at").
		Find(&rows).Error
	return rows, err
}

// LegacyDealer returns the oldest dealer directly owned through dealers.user_id, if any.
func (r *Repository) LegacyDealer(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var rows []models.Dealer
	err := r.DB(ctx).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at").
		Order("id").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	id := rows[0].ID
	return &id, nil
}
