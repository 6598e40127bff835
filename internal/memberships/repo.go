package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

const dealerColumns = "team_members.*, dealers.company_name, dealers.subscription_plan"

// Repository exposes team membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateInput describes a new membership row. A nil AcceptedAt leaves it pending.
type CreateInput struct {
	DealerID   uuid.UUID
	UserID     uuid.UUID
	Role       enums.MemberRole
	InvitedBy  *uuid.UUID
	InvitedAt  *time.Time
	AcceptedAt *time.Time
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, input CreateInput) (*models.TeamMember, error) {
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", input.Role)
	}
	membership := &models.TeamMember{
		ID:         uuid.New(),
		DealerID:   input.DealerID,
		UserID:     input.UserID,
		Role:       input.Role,
		InvitedBy:  input.InvitedBy,
		InvitedAt:  input.InvitedAt,
		AcceptedAt: input.AcceptedAt,
	}
	if err := r.DB(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// ListUserDealers returns the dealers a user has accepted membership in, by company name.
func (r *Repository) ListUserDealers(ctx context.Context, userID uuid.UUID) ([]MembershipWithDealer, error) {
	var rows []membershipWithDealerRow
	err := r.DB(ctx).
		Model(&models.TeamMember{}).
		Select(dealerColumns).
		Joins("JOIN dealers ON dealers.id = team_members.dealer_id").
		Where("team_members.user_id = ? AND team_members.accepted_at IS NOT NULL", userID).
		Order("dealers.company_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]MembershipWithDealer, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithDealerFromRow(row))
	}
	return out, nil
}

// GetMembershipWithDealer returns an accepted membership joined with dealer metadata.
func (r *Repository) GetMembershipWithDealer(ctx context.Context, userID, dealerID uuid.UUID) (*MembershipWithDealer, error) {
	var row membershipWithDealerRow
	err := r.DB(ctx).
		Model(&models.TeamMember{}).
		Select(dealerColumns).
		Joins("JOIN dealers ON dealers.id = team_members.dealer_id").
		Where("team_members.user_id = ? AND team_members.dealer_id = ?", userID, dealerID).
		Where("team_members.accepted_at IS NOT NULL").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	dto := membershipWithDealerFromRow(row)
	return &dto, nil
}

// GetMembership retrieves a membership by user and dealer regardless of acceptance.
func (r *Repository) GetMembership(ctx context.Context, userID, dealerID uuid.UUID) (*models.TeamMember, error) {
	var membership models.TeamMember
	err := r.DB(ctx).
		Where("user_id = ? AND dealer_id = ?", userID, dealerID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindByID loads a membership inside the dealer's scope.
func (r *Repository) FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.TeamMember, error) {
	var membership models.TeamMember
	err := r.DB(ctx).
		Where("dealer_id = ? AND id = ?", dealerID, id).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ListMembers returns the dealer's roster with user profile data, oldest first.
func (r *Repository) ListMembers(ctx context.Context, dealerID uuid.UUID) ([]MemberDTO, error) {
	var rows []memberRow
	err := r.DB(ctx).
		Model(&models.TeamMember{}).
		Select("team_members.*, users.email, users.full_name, users.last_login_at").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.dealer_id = ?", dealerID).
		Order("team_members.created_at").
		Order("team_members.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return membersFromRows(rows), nil
}

// CountAccepted counts the dealer's seats in use.
func (r *Repository) CountAccepted(ctx context.Context, dealerID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.TeamMember{}).
		Where("dealer_id = ? AND accepted_at IS NOT NULL", dealerID).
		Count(&count).Error
	return count, err
}

// UpdateRole changes a member's role.
func (r *Repository) UpdateRole(ctx context.Context, dealerID, id uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid member role %q", role)
	}
	return repo.OneRow(r.Dealer(ctx, dealerID).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Update("role", role))
}

// Accept marks a pending membership accepted.
func (r *Repository) Accept(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Update("accepted_at", at).Error
}

// Delete removes a membership. Returns gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	return repo.OneRow(r.Dealer(ctx, dealerID).Where("id = ?", id).Delete(&models.TeamMember{}))
}
