package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/internal/permissions"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/internal/users"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type meResponse struct {
	User        *users.UserDTO           `json:"user"`
	Tenant      *tenancy.Tenant          `json:"tenant"`
	Permissions []permissions.Permission `json:"permissions"`
}

// Me describes the caller and the tenant resolved for this request, so clients can
// render role-aware navigation without hardcoding the permission matrix.
func Me(finder userFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if finder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user lookup unavailable"))
			return
		}
		tenant, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := finder.FindByID(r.Context(), userID)
		if err != nil {
			if db.IsNotFound(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		responses.WriteSuccess(w, meResponse{
			User:        users.FromModel(user),
			Tenant:      tenant,
			Permissions: permissions.Permissions(tenant.Role),
		})
	}
}
