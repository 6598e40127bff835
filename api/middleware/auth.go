package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dealeros/dealeros-backend/api/responses"
	pkgAuth "github.com/dealeros/dealeros-backend/pkg/auth"
	"github.com/dealeros/dealeros-backend/pkg/auth/session"
	"github.com/dealeros/dealeros-backend/pkg/config"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// AccessTokenHeader carries a freshly minted access token on login, refresh
// and dealer switch responses.
const AccessTokenHeader = "X-DOS-Token"

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// BearerToken reads the Authorization header. The "Bearer " scheme prefix is optional.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(rest)
	}
	if raw == "" || strings.EqualFold(raw, "bearer") {
		return "", errMissingCredentials
	}
	return raw, nil
}

// Auth admits requests carrying a valid access token whose refresh session is
// still live in redis, so logout takes effect before the token expires.
// The dealer in the token is only a hint for TenantContext.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, cfg, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxSessionID, claims.ID)
			if claims.ActiveDealerID != nil {
				ctx = context.WithValue(ctx, ctxClaimedDealer, *claims.ActiveDealerID)
			}
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, sessions session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if sessions == nil {
		return claims, nil
	}

	live, err := sessions.HasSession(r.Context(), claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}
