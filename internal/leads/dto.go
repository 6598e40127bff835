package leads

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
	"github.com/dealeros/dealeros-backend/pkg/types"
)

// LeadDTO is the transport shape of a lead with its on-demand score.
type LeadDTO struct {
	ID             uuid.UUID        `json:"id"`
	DealerID       uuid.UUID        `json:"dealer_id"`
	VehicleID      *uuid.UUID       `json:"vehicle_id,omitempty"`
	FirstName      *string          `json:"first_name,omitempty"`
	LastName       *string          `json:"last_name,omitempty"`
	Email          *string          `json:"email,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	Message        *string          `json:"message,omitempty"`
	Source         enums.LeadSource `json:"source"`
	Status         enums.LeadStatus `json:"status"`
	Notes          *string          `json:"notes,omitempty"`
	LastContactAt  *time.Time       `json:"last_contact_at,omitempty"`
	NextFollowupAt *time.Time       `json:"next_followup_at,omitempty"`
	Score          int              `json:"score"`
	ScoreLabel     string           `json:"score_label"`
	ScoreBreakdown Breakdown        `json:"score_breakdown"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// LeadDetailDTO adds the activity log.
type LeadDetailDTO struct {
	LeadDTO
	Activities []ActivityDTO `json:"activities"`
}

type ActivityDTO struct {
	ID        uuid.UUID               `json:"id"`
	Type      enums.ActivityType      `json:"type"`
	Direction enums.ActivityDirection `json:"direction"`
	Body      *string                 `json:"body,omitempty"`
	CreatedBy *uuid.UUID              `json:"created_by,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// ListParams filters the tenant's lead list.
type ListParams struct {
	pagination.Params
	Status *enums.LeadStatus
}

// CreateLeadInput captures the fields accepted when creating a lead.
type CreateLeadInput struct {
	VehicleID      *uuid.UUID
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Message        *string
	Source         enums.LeadSource
	NextFollowupAt *time.Time
}

// UpdateLeadInput only touches fields that were present in the request.
type UpdateLeadInput struct {
	Status         *enums.LeadStatus
	Notes          types.Optional[string]
	NextFollowupAt types.Optional[time.Time]
}

type AddActivityInput struct {
	Type      enums.ActivityType
	Direction enums.ActivityDirection
	Body      *string
}

func toLeadDTO(m models.Lead, score Result) LeadDTO {
	return LeadDTO{
		ID:             m.ID,
		DealerID:       m.DealerID,
		VehicleID:      m.VehicleID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		Phone:          m.Phone,
		Message:        m.Message,
		Source:         m.Source,
		Status:         m.Status,
		Notes:          m.Notes,
		LastContactAt:  m.LastContactAt,
		NextFollowupAt: m.NextFollowupAt,
		Score:          score.Score,
		ScoreLabel:     score.Label,
		ScoreBreakdown: score.Breakdown,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toActivityDTO(m models.LeadActivity) ActivityDTO {
	return ActivityDTO{
		ID:        m.ID,
		Type:      m.Type,
		Direction: m.Direction,
		Body:      m.Body,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}
