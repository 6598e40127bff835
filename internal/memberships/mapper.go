package memberships

import (
	"time"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

type membershipWithDealerRow struct {
	models.TeamMember
	CompanyName      string                 `gorm:"column:company_name"`
	SubscriptionPlan enums.SubscriptionPlan `gorm:"column:subscription_plan"`
}

func membershipWithDealerFromRow(row membershipWithDealerRow) MembershipWithDealer {
	return MembershipWithDealer{
		MembershipID:     row.ID,
		DealerID:         row.DealerID,
		UserID:           row.UserID,
		CompanyName:      row.CompanyName,
		SubscriptionPlan: row.SubscriptionPlan,
		Role:             row.Role,
		AcceptedAt:       row.AcceptedAt,
		CreatedAt:        row.CreatedAt,
	}
}

type memberRow struct {
	models.TeamMember
	Email       string     `gorm:"column:email"`
	FullName    string     `gorm:"column:full_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func membersFromRows(rows []memberRow) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MemberDTO{
			MembershipID: row.ID,
			DealerID:     row.DealerID,
			UserID:       row.UserID,
			Email:        row.Email,
			FullName:     row.FullName,
			Role:         row.Role,
			InvitedAt:    row.InvitedAt,
			AcceptedAt:   row.AcceptedAt,
			LastLoginAt:  row.LastLoginAt,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}
