package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// Lead is a prospective customer inquiry owned by one dealer.
type Lead struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID       uuid.UUID        `gorm:"column:dealer_id;type:uuid;not null"`
	VehicleID      *uuid.UUID       `gorm:"column:vehicle_id;type:uuid"`
	FirstName      *string          `gorm:"column:first_name"`
	LastName       *string          `gorm:"column:last_name"`
	Email          *string          `gorm:"column:email"`
	Phone          *string          `gorm:"column:phone"`
	Message        *string          `gorm:"column:message"`
	Source         enums.LeadSource `gorm:"column:source;not null;default:'website'"`
	Status         enums.LeadStatus `gorm:"column:status;not null;default:'new'"`
	Notes          *string          `gorm:"column:notes"`
	LastContactAt  *time.Time       `gorm:"column:last_contact_at"`
	NextFollowupAt *time.Time       `gorm:"column:next_followup_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// LeadActivity is an immutable interaction record tied to a lead.
type LeadActivity struct {
	ID        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LeadID    uuid.UUID               `gorm:"column:lead_id;type:uuid;not null"`
	Type      enums.ActivityType      `gorm:"column:type;not null"`
	Direction enums.ActivityDirection `gorm:"column:direction;not null"`
	Body      *string                 `gorm:"column:body"`
	CreatedBy *uuid.UUID              `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
