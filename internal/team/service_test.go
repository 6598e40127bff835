package team

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/db/dbtest"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
)

var teamNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type teamFixture struct {
	conn    *gorm.DB
	svc     Service
	dealer  models.Dealer
	owner   models.User
	ownerMT *models.TeamMember
}

func newFixture(t *testing.T, plan enums.SubscriptionPlan) teamFixture {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(db.FromGorm(conn), config.TeamConfig{})
	require.NoError(t, err)

	owner := createUser(t, conn, "owner@garage.ch")
	dealer := models.Dealer{ID: uuid.New(), CompanyName: "Garage Sonnenberg", SubscriptionPlan: plan}
	require.NoError(t, conn.Create(&dealer).Error)

	accepted := teamNow.Add(-24 * time.Hour)
	ownerMT, err := memberships.NewRepository(conn).CreateMembership(context.Background(), memberships.CreateInput{
		DealerID: dealer.ID, UserID: owner.ID, Role: enums.MemberRoleOwner, AcceptedAt: &accepted,
	})
	require.NoError(t, err)
	return teamFixture{conn: conn, svc: svc, dealer: dealer, owner: owner, ownerMT: ownerMT}
}

func createUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{ID: uuid.New(), Email: email, PasswordHash: "h", FullName: email, IsActive: true}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

func TestInviteAndAccept(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanPro)
	ctx := context.Background()

	inv, err := f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: " Mia@Garage.CH ", Role: enums.MemberRoleMember}, teamNow)
	require.NoError(t, err)
	assert.Equal(t, "mia@garage.ch", inv.Email)
	assert.Len(t, inv.Token, 64)
	assert.Equal(t, teamNow.Add(7*24*time.Hour), inv.ExpiresAt)

	preview, err := f.svc.PreviewInvitation(ctx, inv.Token, teamNow)
	require.NoError(t, err)
	assert.Equal(t, "Garage Sonnenberg", preview.CompanyName)
	assert.Equal(t, enums.MemberRoleMember, preview.Role)

	roster, err := f.svc.Roster(ctx, f.dealer.ID, teamNow)
	require.NoError(t, err)
	assert.Len(t, roster.Members, 1)
	require.Len(t, roster.Invitations, 1)
	assert.Empty(t, roster.Invitations[0].Token, "tokens are never listed")
	assert.Equal(t, Seats{Used: 1, Pending: 1, Limit: 3}, roster.Seats)

	mia := createUser(t, f.conn, "mia@garage.ch")
	joined, err := f.svc.Accept(ctx, mia.ID, inv.Token, teamNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleMember, joined.Role)
	require.NotNil(t, joined.AcceptedAt)
	require.NotNil(t, joined.InvitedBy)
	assert.Equal(t, f.owner.ID, *joined.InvitedBy)

	_, err = f.svc.Accept(ctx, mia.ID, inv.Token, teamNow.Add(2*time.Hour))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "an invitation is single use")

	roster, err = f.svc.Roster(ctx, f.dealer.ID, teamNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, roster.Members, 2)
	assert.Empty(t, roster.Invitations)
}

func TestInviteRejections(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanBusiness)
	ctx := context.Background()

	_, err := f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "boss@garage.ch", Role: enums.MemberRoleOwner}, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "not-an-email", Role: enums.MemberRoleViewer}, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "owner@garage.ch", Role: enums.MemberRoleAdmin}, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "existing members cannot be invited")

	_, err = f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "sam@garage.ch", Role: enums.MemberRoleAdmin}, teamNow)
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "SAM@garage.ch", Role: enums.MemberRoleViewer}, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "duplicate pending invitation")

	_, err = f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "sam@garage.ch", Role: enums.MemberRoleViewer}, teamNow.Add(8*24*time.Hour))
	assert.NoError(t, err, "an expired invitation no longer blocks a new one")
}

func TestSeatLimits(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanStarter)
	ctx := context.Background()

	_, err := f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "extra@garage.ch", Role: enums.MemberRoleMember}, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "starter plan has a single seat")

	// An invitation created before a downgrade still cannot be accepted past the limit.
	inv := models.TeamInvitation{
		ID: uuid.New(), DealerID: f.dealer.ID, Email: "late@garage.ch", Role: enums.MemberRoleViewer,
		Token: "legacy-token", InvitedBy: f.owner.ID, ExpiresAt: teamNow.Add(time.Hour), CreatedAt: teamNow,
	}
	require.NoError(t, f.conn.Create(&inv).Error)
	late := createUser(t, f.conn, "late@garage.ch")
	_, err = f.svc.Accept(ctx, late.ID, "legacy-token", teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestEnterpriseIsUnlimited(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanEnterprise)
	for i := 0; i < 12; i++ {
		_, err := f.svc.Invite(context.Background(), f.dealer.ID, f.owner.ID, InviteInput{
			Email: uuid.NewString() + "@garage.ch", Role: enums.MemberRoleViewer,
		}, teamNow)
		require.NoError(t, err)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanPro)
	inv, err := f.svc.Invite(context.Background(), f.dealer.ID, f.owner.ID, InviteInput{Email: "slow@garage.ch", Role: enums.MemberRoleMember}, teamNow)
	require.NoError(t, err)
	slow := createUser(t, f.conn, "slow@garage.ch")

	_, err = f.svc.Accept(context.Background(), slow.ID, inv.Token, inv.ExpiresAt)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestOwnerProtections(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanPro)
	ctx := context.Background()

	_, err := f.svc.ChangeRole(ctx, f.dealer.ID, f.ownerMT.ID, enums.MemberRoleAdmin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(f.svc.RemoveMember(ctx, f.dealer.ID, f.ownerMT.ID), pkgerrors.CodeStateConflict))

	accepted := teamNow
	staff := createUser(t, f.conn, "staff@garage.ch")
	m, err := memberships.NewRepository(f.conn).CreateMembership(ctx, memberships.CreateInput{
		DealerID: f.dealer.ID, UserID: staff.ID, Role: enums.MemberRoleViewer, AcceptedAt: &accepted,
	})
	require.NoError(t, err)

	_, err = f.svc.ChangeRole(ctx, f.dealer.ID, m.ID, enums.MemberRoleOwner)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := f.svc.ChangeRole(ctx, f.dealer.ID, m.ID, enums.MemberRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleAdmin, updated.Role)

	assert.True(t, pkgerrors.IsCode(f.svc.RemoveMember(ctx, uuid.New(), m.ID), pkgerrors.CodeNotFound), "other dealers cannot touch the member")
	require.NoError(t, f.svc.RemoveMember(ctx, f.dealer.ID, m.ID))
}

func TestCancelInvitation(t *testing.T) {
	f := newFixture(t, enums.SubscriptionPlanPro)
	ctx := context.Background()
	inv, err := f.svc.Invite(ctx, f.dealer.ID, f.owner.ID, InviteInput{Email: "gone@garage.ch", Role: enums.MemberRoleMember}, teamNow)
	require.NoError(t, err)

	assert.True(t, pkgerrors.IsCode(f.svc.CancelInvitation(ctx, uuid.New(), inv.ID), pkgerrors.CodeNotFound))
	require.NoError(t, f.svc.CancelInvitation(ctx, f.dealer.ID, inv.ID))
	_, err = f.svc.PreviewInvitation(ctx, inv.Token, teamNow)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNewServiceRequiresDB(t *testing.T) {
	_, err := NewService(nil, config.TeamConfig{})
	assert.Error(t, err)
}
