package service

import (
	"context"
	"testing"

	"github.com/mkurosawa/marketplace-backend/internal/cache"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSupportUID = "support"

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Listing{},
		&model.Conversation{},
		&model.Message{},
		&model.SiteStats{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type fixture struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	convRepo    repository.ConversationRepository
	statsRepo   repository.StatsRepository
}

func newFixture(t *testing.T) *fixture {
	db := setupServiceDB(t)
	return &fixture{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		listingRepo: repository.NewListingRepository(db),
		convRepo:    repository.NewConversationRepository(db),
		statsRepo:   repository.NewStatsRepository(db),
	}
}

func (f *fixture) conversationService() ConversationService {
	return NewConversationService(f.convRepo, f.listingRepo, f.userRepo, cache.New(""), testSupportUID)
}

func (f *fixture) createUser(t *testing.T, uid string, mutate func(*model.User)) *model.User {
	t.Helper()
	u := &model.User{UID: uid, Name: uid, Email: uid + "@example.com"}
	if mutate != nil {
		mutate(u)
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func (f *fixture) createListing(t *testing.T, sellerUID string) *model.Listing {
	t.Helper()
	l := &model.Listing{
		Title: "Road bike", Description: "fast", Price: 100,
		Category: "sports", Location: "Berlin",
		SellerUID: sellerUID, Active: true, Approved: true,
	}
	require.NoError(t, f.listingRepo.Create(context.Background(), l))
	return l
}

func TestBuyerSellerScenario(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	cv, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "buyer", cv.BuyerUID)
	assert.Equal(t, "seller", cv.SellerUID)

	_, err = svc.PostMessage(ctx, cv.ID, "buyer", "Is this available?")
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, cv.ID, "seller", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "buyer", msgs[0].SenderUID)

	_, err = svc.PostMessage(ctx, cv.ID, "seller", "Yes")
	require.NoError(t, err)

	msgs, err = svc.ListMessages(ctx, cv.ID, "buyer", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "buyer", msgs[0].SenderUID)
	assert.Equal(t, "seller", msgs[1].SenderUID)

	n, err := svc.CountUnread(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStartOrResumeIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	first, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)
	second, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	f.db.Model(&model.Conversation{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestStartOrResumeRejectsSelfContact(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")

	_, err := svc.StartOrResume(ctx, "seller", &listing.ID)
	assert.True(t, IsValidation(err))
}

func TestStartOrResumeUnauthenticated(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()

	_, err := svc.StartOrResume(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestStartOrResumeListingNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()

	f.createUser(t, "buyer", nil)
	missing := uint64(999)
	_, err := svc.StartOrResume(context.Background(), "buyer", &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostMessageNonParticipantForbidden(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	f.createUser(t, "stranger", nil)
	listing := f.createListing(t, "seller")

	cv, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, cv.ID, "stranger", "hi")
	assert.ErrorIs(t, err, ErrForbidden)

	// The thread is untouched.
	msgs, err := svc.ListMessages(ctx, cv.ID, "buyer", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPostMessageEmptyBodyRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")
	cv, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, cv.ID, "buyer", "   \n\t ")
	assert.True(t, IsValidation(err))
}

func TestPostMessageBannedSenderForbidden(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")
	cv, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)

	require.NoError(t, f.userRepo.SetFlag(ctx, "buyer", "banned", true))
	_, err = svc.PostMessage(ctx, cv.ID, "buyer", "hello")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSupportThreadSeparateFromListingThread(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, testSupportUID, nil)
	listing := f.createListing(t, testSupportUID)

	bound, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)
	support, err := svc.StartOrResume(ctx, "buyer", nil)
	require.NoError(t, err)
	assert.NotEqual(t, bound.ID, support.ID)
	assert.Nil(t, support.ListingID)
}

func TestMarkReadClearsUnread(t *testing.T) {
	f := newFixture(t)
	svc := f.conversationService()
	ctx := context.Background()

	f.createUser(t, "buyer", nil)
	f.createUser(t, "seller", nil)
	listing := f.createListing(t, "seller")
	cv, err := svc.StartOrResume(ctx, "buyer", &listing.ID)
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, cv.ID, "seller", "ping")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, cv.ID, "buyer"))
	n, err := svc.CountUnread(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// A non-participant cannot mark anything.
	f.createUser(t, "stranger", nil)
	assert.ErrorIs(t, svc.MarkRead(ctx, cv.ID, "stranger"), ErrForbidden)
}
