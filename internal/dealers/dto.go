package dealers

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// DealerDTO is the public shape of a dealer account.
type DealerDTO struct {
	ID               uuid.UUID              `json:"id"`
	CompanyName      string                 `json:"company_name"`
	Email            *string                `json:"email,omitempty"`
	Phone            *string                `json:"phone,omitempty"`
	SubscriptionPlan enums.SubscriptionPlan `json:"subscription_plan"`
	Languages        []string               `json:"languages"`
	CreatedAt        time.Time              `json:"created_at"`
}

// CreateDealerDTO holds what onboarding needs to open a dealer account.
type CreateDealerDTO struct {
	CompanyName string
	Email       *string
	Phone       *string
	OwnerID     *uuid.UUID
	Plan        enums.SubscriptionPlan
	Languages   []string
}

func FromModel(d *models.Dealer) *DealerDTO {
	if d == nil {
		return nil
	}
	languages := append([]string{}, d.Languages...)
	return &DealerDTO{
		ID:               d.ID,
		CompanyName:      d.CompanyName,
		Email:            d.Email,
		Phone:            d.Phone,
		SubscriptionPlan: d.SubscriptionPlan,
		Languages:        languages,
		CreatedAt:        d.CreatedAt,
	}
}

func (c CreateDealerDTO) ToModel() *models.Dealer {
	plan := c.Plan
	if plan == "" {
		plan = enums.SubscriptionPlanStarter
	}
	languages := c.Languages
	if len(languages) == 0 {
		languages = []string{"de"}
	}
	return &models.Dealer{
		ID:               uuid.New(),
		CompanyName:      c.CompanyName,
		Email:            c.Email,
		Phone:            c.Phone,
		UserID:           c.OwnerID,
		SubscriptionPlan: plan,
		Languages:        append([]string{}, languages...),
	}
}
