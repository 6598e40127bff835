package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/tenancy"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
)

// SwitchDealerInput captures the data required to switch the active dealer.
type SwitchDealerInput struct {
	UserID        uuid.UUID
	DealerID      uuid.UUID
	AccessTokenID string
}

// SwitchDealerResult returns the tokens issued for the newly active dealer.
type SwitchDealerResult struct {
	TokenPair
	Dealer DealerSummary `json:"dealer"`
}

// SwitchDealer replaces the caller's session with one scoped to another dealer the user
// is an accepted member of. The old session is revoked only after the new one exists.
func (s *service) SwitchDealer(ctx context.Context, input SwitchDealerInput) (*SwitchDealerResult, error) {
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer_id is required")
	}
	if strings.TrimSpace(input.AccessTokenID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	membership, err := s.memberships.GetMembershipWithDealer(ctx, input.UserID, input.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}

	tenant := &tenancy.Tenant{DealerID: membership.DealerID, Role: membership.Role}
	pair, err := s.issue(ctx, input.UserID, tenant, s.clock().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.session.Revoke(ctx, input.AccessTokenID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke previous session")
	}

	return &SwitchDealerResult{
		TokenPair: *pair,
		Dealer:    summaryFrom(*membership),
	}, nil
}
