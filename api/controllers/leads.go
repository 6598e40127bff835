package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/api/validators"
	"github.com/dealeros/dealeros-backend/internal/leads"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/types"
)

var errLeadsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable")

// LeadsList returns the active dealer's leads, newest first, with scores computed at request time.
func LeadsList(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
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
		params := leads.ListParams{Params: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseLeadStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), tenant.DealerID, params, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func LeadsGet(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := uuidParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Get(r.Context(), tenant.DealerID, leadID, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

type createLeadRequest struct {
	VehicleID      *string    `json:"vehicle_id,omitempty" validate:"omitempty,uuid"`
	FirstName      *string    `json:"first_name,omitempty" validate:"omitempty,max=120"`
	LastName       *string    `json:"last_name,omitempty" validate:"omitempty,max=120"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,max=40"`
	Message        *string    `json:"message,omitempty"`
	Source         string     `json:"source,omitempty"`
	NextFollowupAt *time.Time `json:"next_followup_at,omitempty"`
}

func (req createLeadRequest) toInput() (leads.CreateLeadInput, error) {
	input := leads.CreateLeadInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		NextFollowupAt: req.NextFollowupAt,
	}
	if req.VehicleID != nil {
		id, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return leads.CreateLeadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id")
		}
		input.VehicleID = &id
	}
	if strings.TrimSpace(req.Source) != "" {
		source, err := enums.ParseLeadSource(req.Source)
		if err != nil {
			return leads.CreateLeadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source")
		}
		input.Source = source
	}
	return input, nil
}

func LeadsCreate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Create(r.Context(), tenant.DealerID, input, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}

// updateLeadRequest distinguishes absent fields from explicit nulls.
type updateLeadRequest struct {
	Status         *string                   `json:"status,omitempty"`
	Notes          types.Optional[string]    `json:"notes"`
	NextFollowupAt types.Optional[time.Time] `json:"next_followup_at"`
}

func (req updateLeadRequest) toInput() (leads.UpdateLeadInput, error) {
	input := leads.UpdateLeadInput{Notes: req.Notes, NextFollowupAt: req.NextFollowupAt}
	if req.Status != nil {
		status, err := enums.ParseLeadStatus(*req.Status)
		if err != nil {
			return leads.UpdateLeadInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

func LeadsUpdate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
			return
		}
		tenant, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := uuidParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Update(r.Context(), tenant.DealerID, userID, leadID, input, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

type addActivityRequest struct {
	Type      string  `json:"type" validate:"required"`
	Direction string  `json:"direction,omitempty"`
	Body      *string `json:"body,omitempty"`
}

func (req addActivityRequest) toInput() (leads.AddActivityInput, error) {
	kind, err := enums.ParseActivityType(req.Type)
	if err != nil {
		return leads.AddActivityInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}
	direction := enums.ActivityDirectionOutbound
	if strings.TrimSpace(req.Direction) != "" {
		direction, err = enums.ParseActivityDirection(req.Direction)
		if err != nil {
			return leads.AddActivityInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction")
		}
	}
	return leads.AddActivityInput{Type: kind, Direction: direction, Body: req.Body}, nil
}

// LeadsAddActivity appends to the lead's activity log and returns the refreshed lead.
func LeadsAddActivity(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
			return
		}
		tenant, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := uuidParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addActivityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.AddActivity(r.Context(), tenant.DealerID, userID, leadID, input, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}

func LeadsDelete(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errLeadsUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadID, err := uuidParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), tenant.DealerID, leadID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
