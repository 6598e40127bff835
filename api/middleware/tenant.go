package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	pkgAuth "github.com/dealeros/dealeros-backend/pkg/auth"
	"github.com/dealeros/dealeros-backend/pkg/config"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// TenantResolver is the resolution surface TenantContext depends on.
type TenantResolver interface {
	Resolve(ctx context.Context, req tenancy.Request) (*tenancy.Tenant, error)
}

// TenantOptions configures TenantContext.
type TenantOptions struct {
	JWT           config.JWTConfig
	Impersonation config.ImpersonationConfig
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TenantContext resolves the acting dealer and role once per request. It must run after Auth.
// A forged or undecodable impersonation cookie is ignored, never fatal.
func TenantContext(resolver TenantResolver, opts TenantOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if resolver == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant resolver unavailable"))
				return
			}

			now := clock().UTC()
			ctx = WithRequestTime(ctx, now)
			req := tenancy.Request{
				UserID:            UserUUIDFromContext(ctx),
				PreferredDealerID: claimedDealerFromContext(ctx),
				Now:               now,
			}

			if raw := impersonationCookie(r, opts.Impersonation.CookieName); raw != "" {
				ctx = context.WithValue(ctx, ctxImpersonationT, raw)
				marker, err := pkgAuth.ParseImpersonationToken(opts.JWT, opts.Impersonation, raw)
				if err == nil {
					req.Impersonation = &tenancy.Claim{
						AdminUserID: marker.AdminUserID,
						DealerID:    marker.DealerID,
						ExpiresAt:   marker.ExpiresAt,
					}
				} else if logg != nil {
					logg.Warn(logg.WithField(ctx, "reason", err.Error()), "tenancy.impersonation_cookie_rejected")
				}
			}

			tenant, err := resolver.Resolve(ctx, req)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if tenant == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "onboarding required"))
				return
			}

			ctx = WithTenant(ctx, tenant)
			if logg != nil {
				ctx = logg.WithTenant(ctx, tenant.DealerID.String(), string(tenant.Role), tenant.Impersonating)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func impersonationCookie(r *http.Request, name string) string {
	if strings.TrimSpace(name) == "" {
		name = config.DefaultImpersonationCookie
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
