package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/api/validators"
	"github.com/dealeros/dealeros-backend/internal/admins"
	"github.com/dealeros/dealeros-backend/pkg/config"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

var errAdminUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable")

// AdminDealersList searches every dealer on the platform by company name.
func AdminDealersList(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAdminUnavailable)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListDealers(r.Context(), userID, admins.ListDealersParams{
			Params: params,
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminImpersonationHistory lists recent impersonation start and stop events for a dealer.
func AdminImpersonationHistory(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAdminUnavailable)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dealerID, err := uuidParam(r, "dealerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.ImpersonationHistory(r.Context(), userID, dealerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

type impersonateRequest struct {
	DealerID string `json:"dealer_id" validate:"required,uuid"`
}

// AdminStartImpersonation sets the signed impersonation cookie for the requested dealer.
func AdminStartImpersonation(svc admins.Service, cfg config.ImpersonationConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAdminUnavailable)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body impersonateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dealerID, err := uuid.Parse(body.DealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id"))
			return
		}

		session, err := svc.StartImpersonation(r.Context(), userID, dealerID, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, impersonationCookie(cfg, session.Token, session.ExpiresAt))
		responses.WriteSuccess(w, session)
	}
}

// AdminStopImpersonation clears the cookie whether or not the marker still verifies.
func AdminStopImpersonation(svc admins.Service, cfg config.ImpersonationConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAdminUnavailable)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var marker string
		if c, err := r.Cookie(cookieName(cfg)); err == nil {
			marker = strings.TrimSpace(c.Value)
		}

		stopped, err := svc.StopImpersonation(r.Context(), userID, marker, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expired := impersonationCookie(cfg, "", time.Unix(0, 0))
		expired.MaxAge = -1
		http.SetCookie(w, expired)
		responses.WriteSuccess(w, stopped)
	}
}

func cookieName(cfg config.ImpersonationConfig) string {
	if name := strings.TrimSpace(cfg.CookieName); name != "" {
		return name
	}
	return config.DefaultImpersonationCookie
}

func impersonationCookie(cfg config.ImpersonationConfig, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName(cfg),
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
