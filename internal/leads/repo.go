package leads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

// Repository persists leads and their activity log. Every query is scoped by dealer.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// InTx runs fn with a repository bound to a single transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// List returns up to limit+1 leads for keyset pagination, newest first.
func (r *Repository) List(ctx context.Context, dealerID uuid.UUID, status *enums.LeadStatus, cursor *pagination.Cursor, limit int) ([]models.Lead, error) {
	q := r.Dealer(ctx, dealerID).Model(&models.Lead{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Lead
	if err := q.Scopes(pagination.Scope("", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a lead inside the dealer's scope.
func (r *Repository) FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.Dealer(ctx, dealerID).Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ActivitiesFor fetches the activity logs of several leads in one query.
func (r *Repository) ActivitiesFor(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]models.LeadActivity, error) {
	out := make(map[uuid.UUID][]models.LeadActivity, len(leadIDs))
	if len(leadIDs) == 0 {
		return out, nil
	}
	var rows []models.LeadActivity
	err := r.DB(ctx).
		Where("lead_id IN ?", leadIDs).
		Order("created_at").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LeadID] = append(out[row.LeadID], row)
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.DB(ctx).Create(lead).Error
}

// Save writes the mutable columns of an existing lead.
func (r *Repository) Save(ctx context.Context, lead *models.Lead) error {
	return r.Dealer(ctx, lead.DealerID).
		Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Updates(map[string]any{
			"status":           lead.Status,
			"notes":            lead.Notes,
			"last_contact_at":  lead.LastContactAt,
			"next_followup_at": lead.NextFollowupAt,
			"updated_at":       lead.UpdatedAt,
		}).Error
}

// AddActivity appends to the log. Activities are never updated afterwards.
func (r *Repository) AddActivity(ctx context.Context, activity *models.LeadActivity) error {
	return r.DB(ctx).Create(activity).Error
}

// Delete removes a lead in the dealer's scope and reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, dealerID, id uuid.UUID) (bool, error) {
	res := r.Dealer(ctx, dealerID).Where("id = ?", id).Delete(&models.Lead{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// VehicleBelongsTo reports whether the vehicle exists for the dealer.
func (r *Repository) VehicleBelongsTo(ctx context.Context, dealerID, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := r.Dealer(ctx, dealerID).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Count(&count).Error
	return count > 0, err
}
