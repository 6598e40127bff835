package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/permissions"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

type stubUserFinder struct {
	user *models.User
	err  error
}

func (s stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func TestMeListsRolePermissions(t *testing.T) {
	userID := uuid.New()
	tenant := &tenancy.Tenant{DealerID: uuid.New(), Role: enums.MemberRoleViewer, Impersonating: true}
	finder := stubUserFinder{user: &models.User{ID: userID, Email: "v@garage.ch", IsActive: true}}
	req := newRequest(t, http.MethodGet, "/me", nil, requestOpts{userID: userID, tenant: tenant})
	rec := httptest.NewRecorder()

	Me(finder, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp meResponse
	decodeData(t, rec, &resp)
	if resp.User == nil || resp.User.Email != "v@garage.ch" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.Tenant == nil || !resp.Tenant.Impersonating {
		t.Fatalf("expected impersonation flag in tenant")
	}
	want := permissions.Permissions(enums.MemberRoleViewer)
	if len(resp.Permissions) != len(want) {
		t.Fatalf("expected %v got %v", want, resp.Permissions)
	}
	for _, p := range resp.Permissions {
		if p == permissions.ManageTeam {
			t.Fatalf("viewer must not manage the team")
		}
	}
}

func TestMeUnknownUser(t *testing.T) {
	req := newRequest(t, http.MethodGet, "/me", nil, requestOpts{userID: uuid.New(), tenant: ownerTenant()})
	rec := httptest.NewRecorder()

	Me(stubUserFinder{err: gorm.ErrRecordNotFound}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
