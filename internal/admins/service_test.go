package admins

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/dealeros/dealeros-backend/pkg/auth"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type stubAdmins struct {
	admins map[uuid.UUID]bool
	err    error
}

func (s stubAdmins) IsPlatformAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.admins[userID], s.err
}

type stubDealers struct {
	dealers map[uuid.UUID]models.Dealer
	query   string
}

func (s *stubDealers) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	d, ok := s.dealers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (s *stubDealers) List(ctx context.Context, query string, cursor *pagination.Cursor, limit int) ([]models.Dealer, error) {
	s.query = query
	out := make([]models.Dealer, 0, len(s.dealers))
	for _, d := range s.dealers {
		out = append(out, d)
	}
	return out, nil
}

type auditEntry struct {
	admin, dealer uuid.UUID
	action        enums.ImpersonationAction
}

type stubAudit struct {
	entries []auditEntry
	err     error
}

func (s *stubAudit) Record(ctx context.Context, adminID, dealerID uuid.UUID, action enums.ImpersonationAction, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, auditEntry{adminID, dealerID, action})
	return nil
}

func (s *stubAudit) ListForDealer(ctx context.Context, dealerID uuid.UUID, limit int) ([]models.ImpersonationEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.ImpersonationEvent
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if e.dealer != dealerID {
			continue
		}
		out = append(out, models.ImpersonationEvent{ID: uuid.New(), AdminUserID: e.admin, DealerID: e.dealer, Action: e.action, CreatedAt: adminNow})
	}
	return out, nil
}

var (
	adminNow = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	jwtCfg   = config.JWTConfig{Secret: "access-secret", Issuer: "dealeros", ExpirationMinutes: 15}
	impCfg   = config.ImpersonationConfig{Secret: "imp-secret", TTL: 4 * time.Hour, CookieName: "impersonate_dealer"}
)

type adminFixture struct {
	svc     Service
	audit   *stubAudit
	dealers *stubDealers
	adminID uuid.UUID
	dealer  models.Dealer
}

func newAdminFixture(t *testing.T) adminFixture {
	t.Helper()
	adminID := uuid.New()
	dealer := models.Dealer{ID: uuid.New(), CompanyName: "Occasionen Meier", SubscriptionPlan: enums.SubscriptionPlanPro}
	audit := &stubAudit{}
	dealersRepo := &stubDealers{dealers: map[uuid.UUID]models.Dealer{dealer.ID: dealer}}
	svc, err := NewService(ServiceParams{
		Admins:        stubAdmins{admins: map[uuid.UUID]bool{adminID: true}},
		Dealers:       dealersRepo,
		Audit:         audit,
		JWTConfig:     jwtCfg,
		Impersonation: impCfg,
	})
	require.NoError(t, err)
	return adminFixture{svc: svc, audit: audit, dealers: dealersRepo, adminID: adminID, dealer: dealer}
}

func TestStartImpersonationMintsMarkerAndAudits(t *testing.T) {
	f := newAdminFixture(t)

	session, err := f.svc.StartImpersonation(context.Background(), f.adminID, f.dealer.ID, adminNow)
	require.NoError(t, err)
	assert.Equal(t, adminNow.Add(4*time.Hour), session.ExpiresAt)
	assert.Equal(t, "Occasionen Meier", session.Dealer.CompanyName)

	marker, err := pkgAuth.ParseImpersonationToken(jwtCfg, impCfg, session.Token)
	require.NoError(t, err)
	assert.Equal(t, f.adminID, marker.AdminUserID)
	assert.Equal(t, f.dealer.ID, marker.DealerID)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, auditEntry{f.adminID, f.dealer.ID, enums.ImpersonationActionStart}, f.audit.entries[0])
}

func TestStartImpersonationRejections(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartImpersonation(ctx, uuid.New(), f.dealer.ID, adminNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.StartImpersonation(ctx, f.adminID, uuid.New(), adminNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.StartImpersonation(ctx, f.adminID, uuid.Nil, adminNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Empty(t, f.audit.entries)
}

func TestStartImpersonationFailsWhenAuditFails(t *testing.T) {
	f := newAdminFixture(t)
	f.audit.err = errors.New("insert failed")
	_, err := f.svc.StartImpersonation(context.Background(), f.adminID, f.dealer.ID, adminNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestStopImpersonation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartImpersonation(ctx, f.adminID, f.dealer.ID, adminNow)
	require.NoError(t, err)

	stopped, err := f.svc.StopImpersonation(ctx, uuid.New(), session.Token, adminNow)
	require.NoError(t, err)
	assert.Nil(t, stopped.DealerID, "someone else's marker is not audited")

	stopped, err = f.svc.StopImpersonation(ctx, f.adminID, "garbage", adminNow)
	require.NoError(t, err)
	assert.Nil(t, stopped.DealerID)

	stopped, err = f.svc.StopImpersonation(ctx, f.adminID, session.Token, adminNow.Add(5*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, stopped.DealerID)
	assert.Equal(t, f.dealer.ID, *stopped.DealerID)

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, enums.ImpersonationActionStop, f.audit.entries[1].action)
}

func TestListDealersRequiresAdmin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListDealers(ctx, uuid.New(), ListDealersParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	page, err := f.svc.ListDealers(ctx, f.adminID, ListDealersParams{Query: "  meier "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meier", f.dealers.query)
}

func TestIsPlatformAdminWrapsErrors(t *testing.T) {
	svc, err := NewService(ServiceParams{Admins: stubAdmins{err: errors.New("timeout")}, Dealers: &stubDealers{}, Audit: &stubAudit{}})
	require.NoError(t, err)
	_, err = svc.IsPlatformAdmin(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	ok, err := svc.IsPlatformAdmin(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImpersonationHistory(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartImpersonation(ctx, f.adminID, f.dealer.ID, adminNow)
	require.NoError(t, err)
	_, err = f.svc.StopImpersonation(ctx, f.adminID, session.Token, adminNow)
	require.NoError(t, err)

	_, err = f.svc.ImpersonationHistory(ctx, uuid.New(), f.dealer.ID, 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.ImpersonationHistory(ctx, f.adminID, f.dealer.ID, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	events, err := f.svc.ImpersonationHistory(ctx, f.adminID, f.dealer.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, enums.ImpersonationActionStop, events[0].Action)
	assert.Equal(t, f.adminID, events[1].AdminUserID)

	events, err = f.svc.ImpersonationHistory(ctx, f.adminID, f.dealer.ID, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
