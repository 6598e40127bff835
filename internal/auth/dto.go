package auth

import (
	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/internal/users"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest pairs the (possibly expired) access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// DealerSummary describes a dealer the user can act for.
type DealerSummary struct {
	ID               uuid.UUID              `json:"id"`
	CompanyName      string                 `json:"company_name"`
	SubscriptionPlan enums.SubscriptionPlan `json:"subscription_plan"`
	Role             enums.MemberRole       `json:"role"`
}

// ActiveTenant is the dealer and role baked into the issued access token.
type ActiveTenant struct {
	DealerID uuid.UUID        `json:"dealer_id"`
	Role     enums.MemberRole `json:"role"`
}

// TokenPair is what every token-issuing flow returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse contains the tokens, user, and dealer list produced by a successful login.
// Active is nil for users that have not been onboarded to any dealer yet.
type LoginResponse struct {
	TokenPair
	User    *users.UserDTO  `json:"user"`
	Active  *ActiveTenant   `json:"active_dealer,omitempty"`
	Dealers []DealerSummary `json:"dealers"`
}

// RefreshResponse is the rotated token pair plus the tenant it was minted for.
type RefreshResponse struct {
	TokenPair
	Active *ActiveTenant `json:"active_dealer,omitempty"`
}

func summariesFrom(rows []memberships.MembershipWithDealer) []DealerSummary {
	out := make([]DealerSummary, 0, len(rows))
	for _, m := range rows {
		out = append(out, summaryFrom(m))
	}
	return out
}

func summaryFrom(m memberships.MembershipWithDealer) DealerSummary {
	return DealerSummary{
		ID:               m.DealerID,
		CompanyName:      m.CompanyName,
		SubscriptionPlan: m.SubscriptionPlan,
		Role:             m.Role,
	}
}
