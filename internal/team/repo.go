package team

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
)

// InvitationRepository persists team invitations. Pending means not accepted and not expired at now.
type InvitationRepository struct {
	repo.Base
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{Base: repo.NewBase(db)}
}

func (r *InvitationRepository) pending(ctx context.Context, now time.Time) *gorm.DB {
	return r.DB(ctx).
		Model(&models.TeamInvitation{}).
		Where("team_invitations.accepted_at IS NULL AND team_invitations.expires_at > ?", now)
}

func (r *InvitationRepository) Create(ctx context.Context, inv *models.TeamInvitation) error {
	return r.DB(ctx).Create(inv).Error
}

// ListPending returns the dealer's open invitations, newest first.
func (r *InvitationRepository) ListPending(ctx context.Context, dealerID uuid.UUID, now time.Time) ([]models.TeamInvitation, error) {
	var rows []models.TeamInvitation
	err := r.pending(ctx, now).
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *InvitationRepository) CountPending(ctx context.Context, dealerID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.pending(ctx, now).Where("dealer_id = ?", dealerID).Count(&count).Error
	return count, err
}

// HasPendingFor reports whether email already holds an open invitation to the dealer.
func (r *InvitationRepository) HasPendingFor(ctx context.Context, dealerID uuid.UUID, email string, now time.Time) (bool, error) {
	var count int64
	err := r.pending(ctx, now).
		Where("dealer_id = ? AND email = ?", dealerID, email).
		Count(&count).Error
	return count > 0, err
}

// FindPendingByToken loads an open invitation by its secret token.
func (r *InvitationRepository) FindPendingByToken(ctx context.Context, token string, now time.Time) (*models.TeamInvitation, error) {
	var inv models.TeamInvitation
	if err := r.pending(ctx, now).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.TeamInvitation{}).
		Where("id = ?", id).
		Update("accepted_at", at).Error
}

// Delete cancels an invitation inside the dealer's scope.
func (r *InvitationRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	return repo.OneRow(r.Dealer(ctx, dealerID).Where("id = ?", id).Delete(&models.TeamInvitation{}))
}

// IsMemberEmail reports whether a user with email already belongs to the dealer.
func (r *InvitationRepository) IsMemberEmail(ctx context.Context, dealerID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.TeamMember{}).
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.dealer_id = ? AND users.email = ?", dealerID, email).
		Count(&count).Error
	return count > 0, err
}
