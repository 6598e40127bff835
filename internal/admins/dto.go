package admins

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/internal/dealers"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

// ImpersonationSession is returned when an admin starts acting as a dealer. Token is the
// signed marker placed in the impersonation cookie.
type ImpersonationSession struct {
	Token     string             `json:"-"`
	Dealer    *dealers.DealerDTO `json:"dealer"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// StoppedImpersonation reports which dealer, if any, an admin stopped acting as.
type StoppedImpersonation struct {
	DealerID *uuid.UUID `json:"dealer_id,omitempty"`
}

// ListDealersParams filters the admin dealer list.
type ListDealersParams struct {
	pagination.Params
	Query string
}

type AuditEventDTO struct {
	ID          uuid.UUID                 `json:"id"`
	AdminUserID uuid.UUID                 `json:"admin_user_id"`
	DealerID    uuid.UUID                 `json:"dealer_id"`
	Action      enums.ImpersonationAction `json:"action"`
	CreatedAt   time.Time                 `json:"created_at"`
}
