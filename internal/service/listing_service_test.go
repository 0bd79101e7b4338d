package service

import (
	"context"
	"testing"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListingValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listingRepo, f.userRepo)
	ctx := context.Background()
	f.createUser(t, "seller", nil)

	valid := ListingInput{Title: "Bike", Description: "fast", Price: 100, Category: "sports", Location: "Berlin"}

	tests := []struct {
		name   string
		mutate func(*ListingInput)
	}{
		{"empty title", func(in *ListingInput) { in.Title = "  " }},
		{"long title", func(in *ListingInput) { in.Title = string(make([]byte, 121)) }},
		{"empty description", func(in *ListingInput) { in.Description = "" }},
		{"empty category", func(in *ListingInput) { in.Category = " " }},
		{"empty location", func(in *ListingInput) { in.Location = "" }},
		{"data uri image", func(in *ListingInput) { s := "data:image/png;base64,x"; in.ImageURL = &s }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(ctx, "seller", in)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}

	listing, err := svc.Create(ctx, "seller", valid)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.True(t, listing.Approved)
	assert.Equal(t, "seller", listing.SellerUID)
}

func TestCreateListingBannedSeller(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listingRepo, f.userRepo)
	ctx := context.Background()
	f.createUser(t, "banned", func(u *model.User) { u.Banned = true })

	_, err := svc.Create(ctx, "banned", ListingInput{Title: "x", Description: "y", Price: 1, Category: "c", Location: "l"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetActiveOwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listingRepo, f.userRepo)
	ctx := context.Background()
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	assert.ErrorIs(t, svc.SetActive(ctx, listing.ID, "stranger", false), ErrForbidden)
	require.NoError(t, svc.SetActive(ctx, listing.ID, "seller", false))

	// Deactivated listings drop out of the catalog.
	rows, total, err := svc.Filter(ctx, repository.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, rows)
}

func TestDeleteListingOwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listingRepo, f.userRepo)
	ctx := context.Background()
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	assert.ErrorIs(t, svc.Delete(ctx, listing.ID, "stranger"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, listing.ID, "seller"))
	_, err := svc.Get(ctx, listing.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateListingOwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewListingService(f.listingRepo, f.userRepo)
	ctx := context.Background()
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	in := ListingInput{Title: "New title", Description: "updated", Price: 50, Category: "sports", Location: "Berlin"}
	_, err := svc.Update(ctx, listing.ID, "stranger", in)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, listing.ID, "seller", in)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, uint(50), updated.Price)
}
