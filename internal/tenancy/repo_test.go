package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealeros/dealeros-backend/pkg/db/dbtest"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

func TestRepositoryFeedsResolver(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	userID, adminID := uuid.New(), uuid.New()
	legacyDealer := models.Dealer{ID: uuid.New(), CompanyName: "Garage Alt", UserID: &userID, SubscriptionPlan: enums.SubscriptionPlanStarter, CreatedAt: created}
	memberDealer := models.Dealer{ID: uuid.New(), CompanyName: "Auto Neu", SubscriptionPlan: enums.SubscriptionPlanPro, CreatedAt: created}
	require.NoError(t, conn.Create(&legacyDealer).Error)
	require.NoError(t, conn.Create(&memberDealer).Error)
	require.NoError(t, conn.Create(&models.PlatformAdmin{ID: uuid.New(), UserID: adminID, Email: "ops@dealeros.ch"}).Error)

	isAdmin, err := repo.IsPlatformAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = repo.IsPlatformAdmin(ctx, userID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	exists, err := repo.DealerExists(ctx, memberDealer.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	legacy, err := repo.LegacyDealer(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.Equal(t, legacyDealer.ID, *legacy)

	none, err := repo.LegacyDealer(ctx, adminID)
	require.NoError(t, err)
	assert.Nil(t, none)

	resolver, err := NewResolver(repo, nil)
	require.NoError(t, err)
	tenant, err := resolver.Resolve(ctx, Request{UserID: userID, Now: created})
	require.NoError(t, err)
	assert.True(t, tenant.Legacy, "legacy link applies before any membership exists")

	accepted := created
	require.NoError(t, conn.Create(&models.TeamMember{
		ID: uuid.New(), DealerID: memberDealer.ID, UserID: userID, Role: enums.MemberRoleAdmin, AcceptedAt: &accepted, CreatedAt: created,
	}).Error)
	require.NoError(t, conn.Create(&models.TeamMember{
		ID: uuid.New(), DealerID: legacyDealer.ID, UserID: userID, Role: enums.MemberRoleOwner, CreatedAt: created,
	}).Error)

	rows, err := repo.AcceptedMemberships(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	tenant, err = resolver.Resolve(ctx, Request{UserID: userID, Now: created})
	require.NoError(t, err)
	assert.Equal(t, memberDealer.ID, tenant.DealerID)
	assert.Equal(t, enums.MemberRoleAdmin, tenant.Role)
	assert.False(t, tenant.Legacy)
}
