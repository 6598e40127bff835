package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/internal/tenancy"
)

type contextKey string

const (
	ctxUserID         contextKey = "user_id"
	ctxSessionID      contextKey = "session_id"
	ctxClaimedDealer  contextKey = "claimed_dealer_id"
	ctxTenant         contextKey = "tenant"
	ctxRequestTime    contextKey = "request_time"
	ctxImpersonationT contextKey = "impersonation_token"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext parses the authenticated user id; uuid.Nil when absent or malformed.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// SessionIDFromContext returns the jti of the access token.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func claimedDealerFromContext(ctx context.Context) *uuid.UUID {
	if v, ok := ctx.Value(ctxClaimedDealer).(uuid.UUID); ok {
		return &v
	}
	return nil
}

// TenantFromContext returns the tenant resolved by TenantContext, or nil.
func TenantFromContext(ctx context.Context) *tenancy.Tenant {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTenant).(*tenancy.Tenant); ok {
		return v
	}
	return nil
}

// RequestTime is the single clock reading taken for this request.
func RequestTime(ctx context.Context) time.Time {
	if ctx != nil {
		if v, ok := ctx.Value(ctxRequestTime).(time.Time); ok {
			return v
		}
	}
	return time.Now().UTC()
}

// ImpersonationTokenFromContext returns the raw marker cookie value seen by TenantContext.
func ImpersonationTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxImpersonationT).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithTenant injects a resolved tenant; used by TenantContext and handler tests.
func WithTenant(ctx context.Context, tenant *tenancy.Tenant) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, tenant)
}

// WithRequestTime pins the request clock.
func WithRequestTime(ctx context.Context, now time.Time) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRequestTime, now.UTC())
}
