package team

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// InvitationDTO describes a pending invitation. Token is only populated right after creation.
type InvitationDTO struct {
	ID        uuid.UUID        `json:"id"`
	DealerID  uuid.UUID        `json:"dealer_id"`
	Email     string           `json:"email"`
	Role      enums.MemberRole `json:"role"`
	InvitedBy uuid.UUID        `json:"invited_by"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	Token     string           `json:"token,omitempty"`
}

// InvitationPreview is what an invitee sees before accepting.
type InvitationPreview struct {
	Email       string           `json:"email"`
	Role        enums.MemberRole `json:"role"`
	ExpiresAt   time.Time        `json:"expires_at"`
	CompanyName string           `json:"company_name"`
}

// Roster is the team page payload.
type Roster struct {
	Members     []memberships.MemberDTO `json:"members"`
	Invitations []InvitationDTO         `json:"invitations"`
	Seats       Seats                   `json:"seats"`
}

// Seats reports plan usage. Limit is -1 for unlimited plans.
type Seats struct {
	Used    int64 `json:"used"`
	Pending int64 `json:"pending"`
	Limit   int   `json:"limit"`
}

// InviteInput is the validated invite request.
type InviteInput struct {
	Email string
	Role  enums.MemberRole
}

func invitationFromModel(m models.TeamInvitation) InvitationDTO {
	return InvitationDTO{
		ID:        m.ID,
		DealerID:  m.DealerID,
		Email:     m.Email,
		Role:      m.Role,
		InvitedBy: m.InvitedBy,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}
