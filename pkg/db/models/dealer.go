package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// Dealer is the tenant; every lead, vehicle and team member belongs to exactly one.
type Dealer struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName      string                 `gorm:"column:company_name;not null"`
	Email            *string                `gorm:"column:email"`
	Phone            *string                `gorm:"column:phone"`
	UserID           *uuid.UUID             `gorm:"column:user_id;type:uuid"`
	SubscriptionPlan enums.SubscriptionPlan `gorm:"column:subscription_plan;not null;default:'starter'"`
	Languages        pq.StringArray         `gorm:"column:languages;type:text[]"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// TeamMember links a user to a dealer with a role.
type TeamMember struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID   uuid.UUID        `gorm:"column:dealer_id;type:uuid;not null"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Role       enums.MemberRole `gorm:"column:role;not null"`
	InvitedBy  *uuid.UUID       `gorm:"column:invited_by;type:uuid"`
	InvitedAt  *time.Time       `gorm:"column:invited_at"`
	AcceptedAt *time.Time       `gorm:"column:accepted_at"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TeamInvitation is a pending, token-addressed offer to join a dealer.
type TeamInvitation struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID   uuid.UUID        `gorm:"column:dealer_id;type:uuid;not null"`
	Email      string           `gorm:"column:email;not null"`
	Role       enums.MemberRole `gorm:"column:role;not null"`
	Token      string           `gorm:"column:token;not null;uniqueIndex"`
	InvitedBy  uuid.UUID        `gorm:"column:invited_by;type:uuid;not null"`
	ExpiresAt  time.Time        `gorm:"column:expires_at;not null"`
	AcceptedAt *time.Time       `gorm:"column:accepted_at"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// ImpersonationEvent is an append-only audit row. ID is generated in Go.
type ImpersonationEvent struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	AdminUserID uuid.UUID                 `gorm:"column:admin_user_id;type:uuid;not null"`
	DealerID    uuid.UUID                 `gorm:"column:dealer_id;type:uuid;not null"`
	Action      enums.ImpersonationAction `gorm:"column:action;not null"`
	CreatedAt   time.Time                 `gorm:"column:created_at"`
}
