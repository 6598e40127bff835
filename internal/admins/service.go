// Package admins holds platform staff operations: dealer lookup and audited impersonation.
package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/dealers"
	pkgAuth "github.com/dealeros/dealeros-backend/pkg/auth"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/metrics"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type adminChecker interface {
	IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type dealerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	List(ctx context.Context, query string, cursor *pagination.Cursor, limit int) ([]models.Dealer, error)
}

type auditRecorder interface {
	Record(ctx context.Context, adminID, dealerID uuid.UUID, action enums.ImpersonationAction, at time.Time) error
	ListForDealer(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.ImpersonationEvent, error)
}

// Service exposes platform admin operations. Every call re-checks admin status.
type Service interface {
	IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	ListDealers(ctx context.Context, actorID uuid.UUID, params ListDealersParams) (pagination.Page[dealers.DealerDTO], error)
	StartImpersonation(ctx context.Context, actorID, dealerID uuid.UUID, now time.Time) (*ImpersonationSession, error)
	StopImpersonation(ctx context.Context, actorID uuid.UUID, marker string, now time.Time) (*StoppedImpersonation, error)
	ImpersonationHistory(ctx context.Context, actorID, dealerID uuid.UUID, limit int) ([]AuditEventDTO, error)
}

// ServiceParams bundles the dependencies of the admin service.
type ServiceParams struct {
	Admins        adminChecker
	Dealers       dealerRepository
	Audit         auditRecorder
	JWTConfig     config.JWTConfig
	Impersonation config.ImpersonationConfig
	Metrics       *metrics.DomainMetrics
	Logger        *logger.Logger
}

type service struct {
	admins  adminChecker
	dealers dealerRepository
	audit   auditRecorder
	jwtCfg  config.JWTConfig
	impCfg  config.ImpersonationConfig
	metrics *metrics.DomainMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Admins == nil {
		return nil, fmt.Errorf("admin checker required")
	}
	if params.Dealers == nil {
		return nil, fmt.Errorf("dealer repository required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		admins:  params.Admins,
		dealers: params.Dealers,
		audit:   params.Audit,
		jwtCfg:  params.JWTConfig,
		impCfg:  params.Impersonation,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

func (s *service) IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	ok, err := s.admins.IsPlatformAdmin(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify platform admin")
	}
	return ok, nil
}

func (s *service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.IsPlatformAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "platform admin required")
	}
	return nil
}

func (s *service) ListDealers(ctx context.Context, actorID uuid.UUID, params ListDealersParams) (pagination.Page[dealers.DealerDTO], error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return pagination.Page[dealers.DealerDTO]{}, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[dealers.DealerDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.dealers.List(ctx, strings.TrimSpace(params.Query), cursor, params.Limit)
	if err != nil {
		return pagination.Page[dealers.DealerDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealers")
	}
	dtos := make([]dealers.DealerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *dealers.FromModel(&rows[i]))
	}
	return pagination.Build(dtos, params.Limit, func(d dealers.DealerDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	}), nil
}

func (s *service) StartImpersonation(ctx context.Context, actorID, dealerID uuid.UUID, now time.Time) (*ImpersonationSession, error) {
	if dealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer_id is required")
	}
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	dealer, err := s.dealers.FindByID(ctx, dealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}

	token, marker, err := pkgAuth.MintImpersonationToken(s.jwtCfg, s.impCfg, now, actorID, dealerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint impersonation marker")
	}
	if err := s.audit.Record(ctx, actorID, dealerID, enums.ImpersonationActionStart, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record impersonation start")
	}
	s.metrics.IncImpersonation(string(enums.ImpersonationActionStart))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"admin_user_id":          actorID.String(),
		"impersonated_dealer_id": dealerID.String(),
	}), "admin.impersonation.start")

	return &ImpersonationSession{
		Token:     token,
		Dealer:    dealers.FromModel(dealer),
		ExpiresAt: marker.ExpiresAt,
	}, nil
}

// StopImpersonation records a stop event when marker is a genuine marker issued to actorID.
// Missing or foreign markers are not an error; the caller clears the cookie either way.
func (s *service) StopImpersonation(ctx context.Context, actorID uuid.UUID, marker string, now time.Time) (*StoppedImpersonation, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return &StoppedImpersonation{}, nil
	}
	parsed, err := pkgAuth.ParseImpersonationToken(s.jwtCfg, s.impCfg, marker)
	if err != nil || parsed.AdminUserID != actorID {
		return &StoppedImpersonation{}, nil
	}
	if err := s.audit.Record(ctx, actorID, parsed.DealerID, enums.ImpersonationActionStop, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record impersonation stop")
	}
	s.metrics.IncImpersonation(string(enums.ImpersonationActionStop))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"admin_user_id":          actorID.String(),
		"impersonated_dealer_id": parsed.DealerID.String(),
	}), "admin.impersonation.stop")

	dealerID := parsed.DealerID
	return &StoppedImpersonation{DealerID: &dealerID}, nil
}

// ImpersonationHistory lists the most recent start and stop events for one dealer, newest first.
func (s *service) ImpersonationHistory(ctx context.Context, actorID, dealerID uuid.UUID, limit int) ([]AuditEventDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > pagination.MaxLimit {
		return nil, pkgerrors.Invalid("limit", fmt.Sprintf("must be between 1 and %d", pagination.MaxLimit))
	}
	rows, err := s.audit.ListForDealer(ctx, dealerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list impersonation events")
	}
	out := make([]AuditEventDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AuditEventDTO{
			ID:          row.ID,
			AdminUserID: row.AdminUserID,
			DealerID:    row.DealerID,
			Action:      row.Action,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}
