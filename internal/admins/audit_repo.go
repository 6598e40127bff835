package admins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// AuditRepository appends impersonation events. Rows are never updated or deleted.
type AuditRepository struct {
	repo.Base
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{Base: repo.NewBase(db)}
}

// Record appends one start or stop event.
func (r *AuditRepository) Record(ctx context.Context, adminID, dealerID uuid.UUID, action enums.ImpersonationAction, at time.Time) error {
	event := models.ImpersonationEvent{
		ID:          uuid.New(),
		AdminUserID: adminID,
		DealerID:    dealerID,
		Action:      action,
		CreatedAt:   at.UTC(),
	}
	return r.DB(ctx).Create(&event).Error
}

// ListForDealer returns the most recent events for a dealer.
func (r *AuditRepository) ListForDealer(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.ImpersonationEvent, error) {
	var rows []models.ImpersonationEvent
	err := r.DB(ctx).
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
