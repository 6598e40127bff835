// Package tenancy decides which dealer and role apply to a request.
package tenancy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// ErrUnauthenticated is returned when the request carries no usable identity.
var ErrUnauthenticated = pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthenticated")

// Claim is a signature-checked impersonation marker. The resolver still decides whether to honor it.
type Claim struct {
	AdminUserID uuid.UUID
	DealerID    uuid.UUID
	ExpiresAt   time.Time
}

// Request carries every input of a resolution explicitly.
type Request struct {
	UserID uuid.UUID
	// PreferredDealerID is the dealer picked through switch-dealer; honored only with an accepted membership.
	PreferredDealerID *uuid.UUID
	Impersonation     *Claim
	Now               time.Time
}

// Tenant is the resolved acting context.
type Tenant struct {
	DealerID      uuid.UUID        `json:"dealer_id"`
	Role          enums.MemberRole `json:"role"`
	Impersonating bool             `json:"impersonating"`
	Legacy        bool             `json:"-"`
}

// Store is the read surface the resolver needs.
type Store interface {
	IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	DealerExists(ctx context.Context, dealerID uuid.UUID) (bool, error)
	AcceptedMemberships(ctx context.Context, userID uuid.UUID) ([]models.TeamMember, error)
	LegacyDealer(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}

// Resolver implements the precedence impersonation, then membership, then legacy ownership.
type Resolver struct {
	store Store
	logg  *logger.Logger
}

// NewResolver wires the resolver; logg may be nil.
func NewResolver(store Store, logg *logger.Logger) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("tenancy store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Resolver{store: store, logg: logg}, nil
}

// Resolve returns the tenant for req. A nil tenant with a nil error means the user is
// authenticated but not onboarded anywhere.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Tenant, error) {
	if req.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if req.Impersonation != nil {
		tenant, err := r.impersonated(ctx, req)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			return tenant, nil
		}
	}

	memberships, err := r.store.AcceptedMemberships(ctx, req.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load memberships")
	}
	if m := pickMembership(memberships, req.PreferredDealerID); m != nil {
		return &Tenant{DealerID: m.DealerID, Role: m.Role}, nil
	}

	legacy, err := r.store.LegacyDealer(ctx, req.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load legacy dealer")
	}
	if legacy != nil {
		return &Tenant{DealerID: *legacy, Role: enums.MemberRoleOwner, Legacy: true}, nil
	}
	return nil, nil
}

// impersonated returns nil, nil when the claim must be ignored.
func (r *Resolver) impersonated(ctx context.Context, req Request) (*Tenant, error) {
	claim := req.Impersonation
	reject := func(reason string) (*Tenant, error) {
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
			"impersonation_dealer_id": claim.DealerID.String(),
			"reason":                  reason,
		}), "tenancy.impersonation_ignored")
		return nil, nil
	}

	if claim.DealerID == uuid.Nil {
		return reject("missing dealer")
	}
	if !req.Now.Before(claim.ExpiresAt) {
		return reject("expired")
	}
	if claim.AdminUserID != req.UserID {
		return reject("issued to another user")
	}
	isAdmin, err := r.store.IsPlatformAdmin(ctx, req.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify platform admin")
	}
	if !isAdmin {
		return reject("not a platform admin")
	}
	exists, err := r.store.DealerExists(ctx, claim.DealerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify impersonated dealer")
	}
	if !exists {
		return reject("dealer not found")
	}
	return &Tenant{DealerID: claim.DealerID, Role: enums.MemberRoleOwner, Impersonating: true}, nil
}

// pickMembership prefers the switched-to dealer, else the highest role. Ties go to the
// oldest membership, then the lowest dealer id.
func pickMembership(memberships []models.TeamMember, preferred *uuid.UUID) *models.TeamMember {
	candidates := make([]models.TeamMember, 0, len(memberships))
	for _, m := range memberships {
		if m.AcceptedAt == nil || !m.Role.IsValid() {
			continue
		}
		if preferred != nil && m.DealerID == *preferred {
			picked := m
			return &picked
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Role.Rank() != b.Role.Rank() {
			return a.Role.Rank() > b.Role.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.DealerID.String() < b.DealerID.String()
	})
	return &candidates[0]
}
