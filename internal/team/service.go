package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/dealers"
	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/security"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

// Service manages a dealer's team. Permission gates run in middleware; the service enforces
// the ownership and seat rules that hold regardless of who is asking.
type Service interface {
	Roster(ctx context.Context, dealerID uuid.UUID, now time.Time) (*Roster, error)
	Invite(ctx context.Context, dealerID, actorID uuid.UUID, input InviteInput, now time.Time) (*InvitationDTO, error)
	CancelInvitation(ctx context.Context, dealerID, invitationID uuid.UUID) error
	PreviewInvitation(ctx context.Context, token string, now time.Time) (*InvitationPreview, error)
	Accept(ctx context.Context, userID uuid.UUID, token string, now time.Time) (*memberships.MembershipDTO, error)
	ChangeRole(ctx context.Context, dealerID, memberID uuid.UUID, role enums.MemberRole) (*memberships.MembershipDTO, error)
	RemoveMember(ctx context.Context, dealerID, memberID uuid.UUID) error
}

type repos struct {
	dealers     *dealers.Repository
	memberships *memberships.Repository
	invitations *InvitationRepository
}

func reposFor(conn *gorm.DB) repos {
	return repos{
		dealers:     dealers.NewRepository(conn),
		memberships: memberships.NewRepository(conn),
		invitations: NewInvitationRepository(conn),
	}
}

type service struct {
	db            *db.Client
	invitationTTL time.Duration
}

// NewService builds the team service on top of the shared database client.
func NewService(client *db.Client, cfg config.TeamConfig) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	ttl := cfg.InvitationTTL
	if ttl <= 0 {
		ttl = defaultInvitationTTL
	}
	return &service{db: client, invitationTTL: ttl}, nil
}

func (s *service) Roster(ctx context.Context, dealerID uuid.UUID, now time.Time) (*Roster, error) {
	r := reposFor(s.db.DB())
	dealer, err := r.dealers.FindByID(ctx, dealerID)
	if err != nil {
		return nil, notFoundOr(err, "dealer not found", "load dealer")
	}
	members, err := r.memberships.ListMembers(ctx, dealerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members")
	}
	pending, err := r.invitations.ListPending(ctx, dealerID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}

	invitations := make([]InvitationDTO, 0, len(pending))
	for _, inv := range pending {
		invitations = append(invitations, invitationFromModel(inv))
	}
	var used int64
	for _, m := range members {
		if m.AcceptedAt != nil {
			used++
		}
	}
	return &Roster{
		Members:     members,
		Invitations: invitations,
		Seats: Seats{
			Used:    used,
			Pending: int64(len(invitations)),
			Limit:   dealer.SubscriptionPlan.UserLimit(),
		},
	}, nil
}

func (s *service) Invite(ctx context.Context, dealerID, actorID uuid.UUID, input InviteInput, now time.Time) (*InvitationDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitations cannot grant the owner role")
	}

	token, err := security.GenerateInvitationToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invitation token")
	}

	var created models.TeamInvitation
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := reposFor(tx)
		dealer, err := r.dealers.FindByID(ctx, dealerID)
		if err != nil {
			return notFoundOr(err, "dealer not found", "load dealer")
		}

		exists, err := r.invitations.HasPendingFor(ctx, dealerID, email, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invitations")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "an invitation for this email already exists")
		}
		member, err := r.invitations.IsMemberEmail(ctx, dealerID, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
		if member {
			return pkgerrors.New(pkgerrors.CodeConflict, "this user is already a team member")
		}

		used, err := r.memberships.CountAccepted(ctx, dealerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count team members")
		}
		pending, err := r.invitations.CountPending(ctx, dealerID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count invitations")
		}
		if seatsExhausted(dealer.SubscriptionPlan, used+pending) {
			return seatLimitError(dealer.SubscriptionPlan)
		}

		created = models.TeamInvitation{
			ID:        uuid.New(),
			DealerID:  dealerID,
			Email:     email,
			Role:      input.Role,
			Token:     token,
			InvitedBy: actorID,
			ExpiresAt: now.Add(s.invitationTTL),
			CreatedAt: now,
		}
		if err := r.invitations.Create(ctx, &created); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invitation already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := invitationFromModel(created)
	dto.Token = created.Token
	return &dto, nil
}

func (s *service) CancelInvitation(ctx context.Context, dealerID, invitationID uuid.UUID) error {
	if err := reposFor(s.db.DB()).invitations.Delete(ctx, dealerID, invitationID); err != nil {
		return notFoundOr(err, "invitation not found", "cancel invitation")
	}
	return nil
}

func (s *service) PreviewInvitation(ctx context.Context, token string, now time.Time) (*InvitationPreview, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	r := reposFor(s.db.DB())
	inv, err := r.invitations.FindPendingByToken(ctx, token, now)
	if err != nil {
		return nil, notFoundOr(err, "invalid or expired invitation", "load invitation")
	}
	dealer, err := r.dealers.FindByID(ctx, inv.DealerID)
	if err != nil {
		return nil, notFoundOr(err, "invalid or expired invitation", "load dealer")
	}
	return &InvitationPreview{
		Email:       inv.Email,
		Role:        inv.Role,
		ExpiresAt:   inv.ExpiresAt,
		CompanyName: dealer.CompanyName,
	}, nil
}

func (s *service) Accept(ctx context.Context, userID uuid.UUID, token string, now time.Time) (*memberships.MembershipDTO, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	var joined *models.TeamMember
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := reposFor(tx)
		inv, err := r.invitations.FindPendingByToken(ctx, token, now)
		if err != nil {
			return notFoundOr(err, "invalid or expired invitation", "load invitation")
		}
		dealer, err := r.dealers.FindByID(ctx, inv.DealerID)
		if err != nil {
			return notFoundOr(err, "invalid or expired invitation", "load dealer")
		}

		if _, err := r.memberships.GetMembership(ctx, userID, inv.DealerID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "already a member of this dealer")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}

		used, err := r.memberships.CountAccepted(ctx, inv.DealerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count team members")
		}
		if seatsExhausted(dealer.SubscriptionPlan, used) {
			return seatLimitError(dealer.SubscriptionPlan)
		}

		invitedAt := inv.CreatedAt
		joined, err = r.memberships.CreateMembership(ctx, memberships.CreateInput{
			DealerID:   inv.DealerID,
			UserID:     userID,
			Role:       inv.Role,
			InvitedBy:  &inv.InvitedBy,
			InvitedAt:  &invitedAt,
			AcceptedAt: &now,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already a member of this dealer")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
		if err := r.invitations.MarkAccepted(ctx, inv.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invitation accepted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memberships.ToDTO(joined), nil
}

func (s *service) ChangeRole(ctx context.Context, dealerID, memberID uuid.UUID, role enums.MemberRole) (*memberships.MembershipDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot promote to owner; transfer ownership instead")
	}

	repo := reposFor(s.db.DB()).memberships
	member, err := repo.FindByID(ctx, dealerID, memberID)
	if err != nil {
		return nil, notFoundOr(err, "member not found", "load member")
	}
	if member.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot change the owner's role; transfer ownership instead")
	}
	if member.Role == role {
		return memberships.ToDTO(member), nil
	}
	if err := repo.UpdateRole(ctx, dealerID, memberID, role); err != nil {
		return nil, notFoundOr(err, "member not found", "update role")
	}
	member.Role = role
	return memberships.ToDTO(member), nil
}

func (s *service) RemoveMember(ctx context.Context, dealerID, memberID uuid.UUID) error {
	repo := reposFor(s.db.DB()).memberships
	member, err := repo.FindByID(ctx, dealerID, memberID)
	if err != nil {
		return notFoundOr(err, "member not found", "load member")
	}
	if member.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot remove the owner; transfer ownership first")
	}
	if err := repo.Delete(ctx, dealerID, memberID); err != nil {
		return notFoundOr(err, "member not found", "remove member")
	}
	return nil
}

func seatsExhausted(plan enums.SubscriptionPlan, taken int64) bool {
	limit := plan.UserLimit()
	return limit >= 0 && taken >= int64(limit)
}

func seatLimitError(plan enums.SubscriptionPlan) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "team member limit reached for this plan").
		WithDetails(map[string]any{"plan": plan, "limit": plan.UserLimit()})
}

func notFoundOr(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
