package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/internal/permissions"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// RequirePermission gates a route on the resolved role. It must run after TenantContext.
func RequirePermission(p permissions.Permission, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := TenantFromContext(r.Context())
			if tenant == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "dealer context missing"))
				return
			}
			if !permissions.Has(tenant.Role, p) {
				err := pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions").
					WithDetails(map[string]any{"permission": string(p)})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PlatformAdminChecker answers whether a user is platform staff right now.
type PlatformAdminChecker interface {
	IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequirePlatformAdmin re-checks staff status against the database on every request.
func RequirePlatformAdmin(checker PlatformAdminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin checker unavailable"))
				return
			}
			userID := UserUUIDFromContext(ctx)
			if userID == uuid.Nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			ok, err := checker.IsPlatformAdmin(ctx, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "platform admin required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
