package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/dealers"
	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/internal/users"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/security"
)

var errEmailTaken = pkgerrors.New(pkgerrors.CodeConflict, "email already registered")

// RegisterRequest is the self-service signup payload for a new dealership.
type RegisterRequest struct {
	FullName    string   `json:"full_name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Phone       *string  `json:"phone,omitempty"`
	CompanyName string   `json:"company_name" validate:"required"`
	Languages   []string `json:"languages,omitempty" validate:"omitempty,dive,oneof=de fr it en"`
	AcceptTOS   bool     `json:"accept_tos"`
}

// normalize trims and lower-cases the request and enforces what the struct
// tags cannot: whitespace-only names and the terms checkbox.
func (req RegisterRequest) normalize() (RegisterRequest, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	switch {
	case req.Email == "":
		return req, pkgerrors.Invalid("email", "is required")
	case req.CompanyName == "":
		return req, pkgerrors.Invalid("company_name", "is required")
	case !req.AcceptTOS:
		return req, pkgerrors.Invalid("accept_tos", "must be true")
	}
	return req, nil
}

type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	clock       func() time.Time
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &registerService{db: params.DB, passwordCfg: params.PasswordConfig, clock: clock}, nil
}

// Register creates the user, a starter-plan dealer they own, and an accepted
// owner membership. Nothing is written unless all three succeed.
func (s *registerService) Register(ctx context.Context, raw RegisterRequest) error {
	req, err := raw.normalize()
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	now := s.clock().UTC()

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		switch _, err := userRepo.FindByEmail(ctx, req.Email); {
		case err == nil:
			return errEmailTaken
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			Phone:        req.Phone,
		})
		if db.IsUniqueViolation(err, "") {
			// lost a race with a concurrent signup for the same email
			return errEmailTaken
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		dealer, err := dealers.NewRepository(tx).Create(ctx, dealers.CreateDealerDTO{
			CompanyName: req.CompanyName,
			Email:       &req.Email,
			Phone:       req.Phone,
			OwnerID:     &user.ID,
			Plan:        enums.SubscriptionPlanStarter,
			Languages:   req.Languages,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dealer")
		}

		if _, err := memberships.NewRepository(tx).CreateMembership(ctx, memberships.CreateInput{
			DealerID:   dealer.ID,
			UserID:     user.ID,
			Role:       enums.MemberRoleOwner,
			AcceptedAt: &now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
		return nil
	})
}
