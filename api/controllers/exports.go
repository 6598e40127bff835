package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/api/validators"
	"github.com/dealeros/dealeros-backend/internal/exports"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

// VehiclesExport streams the dealer's inventory as a marketplace CSV download.
// vehicle_ids narrows the export and may be repeated or comma separated.
func VehiclesExport(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		format, err := exports.ParseFormat(q.Get("format"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid format"))
			return
		}
		ids, err := parseIDList(validators.QueryList(r, "vehicle_ids"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := svc.Export(r.Context(), tenant.DealerID, format, ids, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"format": string(format), "rows": file.Rows})
			logg.Info(ctx, "exports.rendered")
		}
		responses.WriteAttachment(w, file.Filename, file.ContentType, file.Body)
	}
}

func parseIDList(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Invalid("vehicle_ids", "must be a list of uuids")
		}
		out = append(out, id)
	}
	return out, nil
}
