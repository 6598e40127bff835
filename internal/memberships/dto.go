package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID         uuid.UUID        `json:"id"`
	DealerID   uuid.UUID        `json:"dealer_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Role       enums.MemberRole `json:"role"`
	InvitedBy  *uuid.UUID       `json:"invited_by,omitempty"`
	InvitedAt  *time.Time       `json:"invited_at,omitempty"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// MembershipWithDealer includes basic dealer metadata + membership info.
type MembershipWithDealer struct {
	MembershipID     uuid.UUID              `json:"membership_id"`
	DealerID         uuid.UUID              `json:"dealer_id"`
	UserID           uuid.UUID              `json:"user_id"`
	CompanyName      string                 `json:"company_name"`
	SubscriptionPlan enums.SubscriptionPlan `json:"subscription_plan"`
	Role             enums.MemberRole       `json:"role"`
	AcceptedAt       *time.Time             `json:"accepted_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// MemberDTO mixes membership metadata with the member's profile for the team page.
type MemberDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	DealerID     uuid.UUID        `json:"dealer_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Email        string           `json:"email"`
	FullName     string           `json:"full_name"`
	Role         enums.MemberRole `json:"role"`
	InvitedAt    *time.Time       `json:"invited_at,omitempty"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	LastLoginAt  *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.TeamMember) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:         m.ID,
		DealerID:   m.DealerID,
		UserID:     m.UserID,
		Role:       m.Role,
		InvitedBy:  copyUUIDPointer(m.InvitedBy),
		InvitedAt:  m.InvitedAt,
		AcceptedAt: m.AcceptedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
