package memberships

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/db/dbtest"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

type fixture struct {
	conn   *gorm.DB
	repo   *Repository
	user   models.User
	dealer models.Dealer
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	user := models.User{ID: uuid.New(), Email: "lena@autohaus.ch", PasswordHash: "h", FullName: "Lena Keller", IsActive: true}
	dealer := models.Dealer{ID: uuid.New(), CompanyName: "Autohaus Keller", SubscriptionPlan: enums.SubscriptionPlanPro}
	require.NoError(t, conn.Create(&user).Error)
	require.NoError(t, conn.Create(&dealer).Error)
	return fixture{conn: conn, repo: NewRepository(conn), user: user, dealer: dealer}
}

func TestRepositoryMembershipFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invitedAt := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	m, err := f.repo.CreateMembership(ctx, CreateInput{
		DealerID:  f.dealer.ID,
		UserID:    f.user.ID,
		Role:      enums.MemberRoleMember,
		InvitedAt: &invitedAt,
	})
	require.NoError(t, err)

	dealers, err := f.repo.ListUserDealers(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, dealers, "pending memberships are not listed")

	count, err := f.repo.CountAccepted(ctx, f.dealer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, f.repo.Accept(ctx, m.ID, invitedAt.Add(time.Hour)))

	dealers, err = f.repo.ListUserDealers(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, dealers, 1)
	assert.Equal(t, "Autohaus Keller", dealers[0].CompanyName)
	assert.Equal(t, enums.SubscriptionPlanPro, dealers[0].SubscriptionPlan)

	withDealer, err := f.repo.GetMembershipWithDealer(ctx, f.user.ID, f.dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, withDealer.MembershipID)

	require.NoError(t, f.repo.UpdateRole(ctx, f.dealer.ID, m.ID, enums.MemberRoleAdmin))
	members, err := f.repo.ListMembers(ctx, f.dealer.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, enums.MemberRoleAdmin, members[0].Role)
	assert.Equal(t, "lena@autohaus.ch", members[0].Email)
	assert.Equal(t, "Lena Keller", members[0].FullName)

	require.NoError(t, f.repo.Delete(ctx, f.dealer.ID, m.ID))
	assert.True(t, errors.Is(f.repo.Delete(ctx, f.dealer.ID, m.ID), gorm.ErrRecordNotFound))
}

func TestMembershipScopedToDealer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	m, err := f.repo.CreateMembership(ctx, CreateInput{DealerID: f.dealer.ID, UserID: f.user.ID, Role: enums.MemberRoleViewer, AcceptedAt: &now})
	require.NoError(t, err)

	other := uuid.New()
	_, err = f.repo.FindByID(ctx, other, m.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(f.repo.UpdateRole(ctx, other, m.ID, enums.MemberRoleAdmin), gorm.ErrRecordNotFound))

	_, err = f.repo.GetMembershipWithDealer(ctx, f.user.ID, other)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestMembershipUniquePerDealer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	input := CreateInput{DealerID: f.dealer.ID, UserID: f.user.ID, Role: enums.MemberRoleMember}

	_, err := f.repo.CreateMembership(ctx, input)
	require.NoError(t, err)
	_, err = f.repo.CreateMembership(ctx, input)
	assert.True(t, db.IsUniqueViolation(err, ""))

	_, err = f.repo.CreateMembership(ctx, CreateInput{DealerID: f.dealer.ID, UserID: uuid.New(), Role: "boss"})
	assert.Error(t, err)
}
