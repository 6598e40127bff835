package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/api/validators"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

const (
	maxCursorLen = 512
	maxSearchLen = 100
)

func requireUser(r *http.Request) (uuid.UUID, error) {
	id := middleware.UserUUIDFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}

func requireTenant(r *http.Request) (*tenancy.Tenant, error) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil || tenant.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer context missing")
	}
	return tenant, nil
}

// actor returns the tenant and calling user; both are required on tenant-scoped routes.
func actor(r *http.Request) (*tenancy.Tenant, uuid.UUID, error) {
	tenant, err := requireTenant(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	userID, err := requireUser(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return tenant, userID, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.Invalid(name, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Invalid(name, "must be a uuid")
	}
	return id, nil
}

// pageParams rejects limits outside 1..MaxLimit instead of clamping them.
func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), maxCursorLen),
	}, nil
}
