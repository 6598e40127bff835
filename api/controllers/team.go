package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/api/responses"
	"github.com/dealeros/dealeros-backend/api/validators"
	"github.com/dealeros/dealeros-backend/internal/team"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/logger"
)

var errTeamUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable")

// TeamRoster returns members, pending invitations and seat usage for the active dealer.
func TeamRoster(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roster, err := svc.Roster(r.Context(), tenant.DealerID, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,assignable_role"`
}

func (req inviteRequest) toInput() (team.InviteInput, error) {
	role, err := enums.ParseMemberRole(req.Role)
	if err != nil {
		return team.InviteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	return team.InviteInput{Email: strings.ToLower(strings.TrimSpace(req.Email)), Role: role}, nil
}

// TeamInvite creates a pending invitation. The token is returned once, in this response.
func TeamInvite(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		tenant, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inviteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inv, err := svc.Invite(r.Context(), tenant.DealerID, userID, input, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inv)
	}
}

func TeamCancelInvitation(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invID, err := uuidParam(r, "invitationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelInvitation(r.Context(), tenant.DealerID, invID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// TeamPreviewInvitation is public: the token itself is the credential.
func TeamPreviewInvitation(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}

		preview, err := svc.PreviewInvitation(r.Context(), chi.URLParam(r, "token"), middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

type acceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

// TeamAcceptInvitation only needs an authenticated user; the invitee has no tenant yet.
func TeamAcceptInvitation(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body acceptInvitationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		membership, err := svc.Accept(r.Context(), userID, body.Token, middleware.RequestTime(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, membership)
	}
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,assignable_role"`
}

func TeamChangeRole(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changeRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseMemberRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		membership, err := svc.ChangeRole(r.Context(), tenant.DealerID, memberID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, membership)
	}
}

func TeamRemoveMember(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errTeamUnavailable)
			return
		}
		tenant, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), tenant.DealerID, memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
