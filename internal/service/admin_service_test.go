package service

import (
	"context"
	"testing"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminFixture(t *testing.T) (*fixture, AdminService) {
	f := newFixture(t)
	svc := NewAdminService(f.userRepo, f.listingRepo, f.statsRepo)
	f.createUser(t, "root", func(u *model.User) { u.Admin = true })
	f.createUser(t, "member", nil)
	return f, svc
}

func TestRequireAdmin(t *testing.T) {
	_, svc := adminFixture(t)
	ctx := context.Background()

	assert.NoError(t, svc.RequireAdmin(ctx, "root"))
	assert.ErrorIs(t, svc.RequireAdmin(ctx, "member"), ErrForbidden)
	assert.ErrorIs(t, svc.RequireAdmin(ctx, "nobody"), ErrForbidden)
	assert.ErrorIs(t, svc.RequireAdmin(ctx, ""), ErrUnauthenticated)
}

func TestIsAdminNeverErrors(t *testing.T) {
	_, svc := adminFixture(t)
	ctx := context.Background()

	assert.True(t, svc.IsAdmin(ctx, "root"))
	assert.False(t, svc.IsAdmin(ctx, "member"))
	assert.False(t, svc.IsAdmin(ctx, ""))
	assert.False(t, svc.IsAdmin(ctx, "missing-row"))
}

func TestBanUser(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SetBanned(ctx, "root", "member", true))
	u, err := f.userRepo.FindByUID(ctx, "member")
	require.NoError(t, err)
	assert.True(t, u.Banned)

	require.NoError(t, svc.SetBanned(ctx, "root", "member", false))

	// Non-admin callers are rejected before any write.
	assert.ErrorIs(t, svc.SetBanned(ctx, "member", "root", true), ErrForbidden)
}

func TestAdminSelfLockoutGuard(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()
	f.createUser(t, "root2", func(u *model.User) { u.Admin = true })

	// Admin accounts can neither be banned nor deleted.
	assert.ErrorIs(t, svc.SetBanned(ctx, "root", "root2", true), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, "root", "root2"), ErrForbidden)

	u, err := f.userRepo.FindByUID(ctx, "root2")
	require.NoError(t, err)
	assert.False(t, u.Banned)
}

func TestDeleteUserCascadesListings(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()
	f.createListing(t, "member")
	f.createListing(t, "member")

	require.NoError(t, svc.DeleteUser(ctx, "root", "member"))

	var listings int64
	f.db.Model(&model.Listing{}).Where("seller_uid = ?", "member").Count(&listings)
	assert.Equal(t, int64(0), listings)
	_, err := f.userRepo.FindByUID(ctx, "member")
	assert.Error(t, err)
}

func TestPromoteAndVerify(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SetVerified(ctx, "root", "member", true))
	require.NoError(t, svc.Promote(ctx, "root", "member"))
	u, err := f.userRepo.FindByUID(ctx, "member")
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.True(t, u.Admin)

	assert.ErrorIs(t, svc.Promote(ctx, "root", "ghost"), ErrNotFound)
}

func TestAdminListingOverrides(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()
	listing := f.createListing(t, "member")

	// Admin path bypasses the ownership check entirely.
	require.NoError(t, svc.SetListingActive(ctx, "root", listing.ID, false))
	require.NoError(t, svc.SetListingApproved(ctx, "root", listing.ID, false))
	got, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.False(t, got.Approved)

	require.NoError(t, svc.DeleteListing(ctx, "root", listing.ID))
	assert.ErrorIs(t, svc.DeleteListing(ctx, "root", listing.ID), ErrNotFound)

	assert.ErrorIs(t, svc.SetListingActive(ctx, "member", listing.ID, true), ErrForbidden)
}

func TestStatsRequiresAdmin(t *testing.T) {
	f, svc := adminFixture(t)
	ctx := context.Background()

	_, err := svc.Stats(ctx, "member")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.statsRepo.Increment(ctx))
	stats, err := svc.Stats(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Visits)
}
