package controllers

import (
	"net/http"
	"strings"

	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/internal/permissions"
	"github.com/dealeros/dealeros-backend/internal/vehicles"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

var errVehiclesUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable")

// VehiclesList pages through the active dealer's inventory. status=all is the same as no filter.
func VehiclesList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errVehiclesUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := vehicles.ListParams{Params: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
			status, err := enums.ParseVehicleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), tenant.DealerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VehiclesGet returns one vehicle. Cost fields are only included for roles that manage inventory.
func VehiclesGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errVehiclesUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicleID, err := uuidParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		internal := permissions.Has(tenant.Role, permissions.ManageVehicles)
		vehicle, err := svc.Get(r.Context(), tenant.DealerID, vehicleID, internal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}
