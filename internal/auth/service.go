package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/internal/users"
	pkgAuth "github.com/dealeros/dealeros-backend/pkg/auth"
	"github.com/dealeros/dealeros-backend/pkg/auth/session"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the token lifecycle used by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
	SwitchDealer(ctx context.Context, input SwitchDealerInput) (*SwitchDealerResult, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, rehash *string) error
}

type membershipsRepository interface {
	ListUserDealers(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithDealer, error)
	GetMembershipWithDealer(ctx context.Context, userID, dealerID uuid.UUID) (*memberships.MembershipWithDealer, error)
}

type tenantResolver interface {
	Resolve(ctx context.Context, req tenancy.Request) (*tenancy.Tenant, error)
}

type sessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (uuid.UUID, string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo        userRepository
	MembershipsRepo membershipsRepository
	Resolver        tenantResolver
	SessionManager  sessionManager
	JWTConfig       config.JWTConfig
	PasswordConfig  config.PasswordConfig
	Logger          *logger.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type service struct {
	users       userRepository
	memberships membershipsRepository
	resolver    tenantResolver
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	clock       func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("tenant resolver is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		users:       params.UserRepo,
		memberships: params.MembershipsRepo,
		resolver:    params.Resolver,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
		clock:       clock,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now, s.rehash(ctx, user, req.Password)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	dealers, err := s.memberships.ListUserDealers(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealers")
	}

	tenant, err := s.resolver.Resolve(ctx, tenancy.Request{UserID: user.ID, Now: now})
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, user.ID, tenant, now)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.login")
	return &LoginResponse{
		TokenPair: *pair,
		User:      users.FromModel(user),
		Active:    activeFrom(tenant),
		Dealers:   summariesFrom(dealers),
	}, nil
}

// Refresh rotates the session behind the presented access token and re-resolves the tenant,
// keeping the previously active dealer while the user is still an accepted member of it.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	userID, newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	if userID != claims.UserID {
		_ = s.session.Revoke(ctx, newAccessID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		_ = s.session.Revoke(ctx, newAccessID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	now := s.clock().UTC()
	tenant, err := s.resolver.Resolve(ctx, tenancy.Request{
		UserID:            userID,
		PreferredDealerID: claims.ActiveDealerID,
		Now:               now,
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, payloadFor(userID, tenant, newAccessID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &RefreshResponse{
		TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: newRefresh},
		Active:    activeFrom(tenant),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(accessToken))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			security.EqualizeTiming(password, s.passwordCfg)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// rehash returns a fresh hash when the stored one predates the current argon2
// settings. Failing to produce one only costs the upgrade, never the login.
func (s *service) rehash(ctx context.Context, user *models.User, password string) *string {
	if !security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		return nil
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.rehash_failed")
		return nil
	}
	return &hash
}

// issue mints an access token and opens the refresh session bound to its jti.
func (s *service) issue(ctx context.Context, userID uuid.UUID, tenant *tenancy.Tenant, now time.Time) (*TokenPair, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, payloadFor(userID, tenant, accessID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, userID, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func payloadFor(userID uuid.UUID, tenant *tenancy.Tenant, jti string) pkgAuth.AccessTokenPayload {
	payload := pkgAuth.AccessTokenPayload{UserID: userID, JTI: jti}
	if tenant != nil {
		dealerID := tenant.DealerID
		payload.ActiveDealerID = &dealerID
		payload.Role = tenant.Role
	}
	return payload
}

func activeFrom(tenant *tenancy.Tenant) *ActiveTenant {
	if tenant == nil {
		return nil
	}
	return &ActiveTenant{DealerID: tenant.DealerID, Role: tenant.Role}
}
