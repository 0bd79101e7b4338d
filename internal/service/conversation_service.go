package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mkurosawa/marketplace-backend/internal/cache"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

// defaultMessageLimit bounds ListMessages retrieval.
const defaultMessageLimit = 200

type ConversationService interface {
	StartOrResume(ctx context.Context, buyerUID string, listingID *uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, uid string) ([]repository.ConversationSummary, error)
	ListMessages(ctx context.Context, convID uint64, uid string, limit int) ([]model.Message, error)
	PostMessage(ctx context.Context, convID uint64, senderUID, body string) (*model.Message, error)
	CountUnread(ctx context.Context, uid string) (int64, error)
	MarkRead(ctx context.Context, convID uint64, uid string) error
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	cache       *cache.Cache
	supportUID  string
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	c *cache.Cache,
	supportUID string,
) ConversationService {
	return &conversationService{
		convRepo:    convRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		cache:       c,
		supportUID:  supportUID,
	}
}

// StartOrResume returns the single canonical thread for the
// (buyer, seller, listing) key, creating it on first contact. A nil
// listing id addresses the support operator and is keyed separately
// from every listing-bound thread between the same pair.
func (s *conversationService) StartOrResume(ctx context.Context, buyerUID string, listingID *uint64) (*model.Conversation, error) {
	if buyerUID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.requireNotBanned(ctx, buyerUID); err != nil {
		return nil, err
	}

	sellerUID := s.supportUID
	if listingID != nil {
		listing, err := s.listingRepo.FindByID(ctx, *listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		sellerUID = listing.SellerUID
	}
	if sellerUID == buyerUID {
		return nil, invalid("seller", "cannot start a conversation with yourself")
	}
	return s.convRepo.FindOrCreate(ctx, buyerUID, sellerUID, listingID)
}

func (s *conversationService) ListByUser(ctx context.Context, uid string) ([]repository.ConversationSummary, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	return s.convRepo.ListByUser(ctx, uid)
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, uid string, limit int) ([]model.Message, error) {
	if _, err := s.participantConversation(ctx, convID, uid); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultMessageLimit {
		limit = defaultMessageLimit
	}
	return s.convRepo.ListMessages(ctx, convID, limit)
}

// PostMessage appends to the thread and bumps its recency atomically.
// Only the two participants may write.
func (s *conversationService) PostMessage(ctx context.Context, convID uint64, senderUID, body string) (*model.Message, error) {
	if senderUID == "" {
		return nil, ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "message body is required")
	}
	if err := s.requireNotBanned(ctx, senderUID); err != nil {
		return nil, err
	}
	cv, err := s.participantConversation(ctx, convID, senderUID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      senderUID,
		Body:           body,
	}
	if err := s.convRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.cache.InvalidateUnread(ctx, cv.BuyerUID, cv.SellerUID)
	return msg, nil
}

func (s *conversationService) CountUnread(ctx context.Context, uid string) (int64, error) {
	if uid == "" {
		return 0, ErrUnauthenticated
	}
	if n, ok := s.cache.GetUnread(ctx, uid); ok {
		return n, nil
	}
	n, err := s.convRepo.CountUnread(ctx, uid)
	if err != nil {
		return 0, err
	}
	s.cache.SetUnread(ctx, uid, n)
	return n, nil
}

func (s *conversationService) MarkRead(ctx context.Context, convID uint64, uid string) error {
	if _, err := s.participantConversation(ctx, convID, uid); err != nil {
		return err
	}
	if err := s.convRepo.MarkRead(ctx, convID, uid); err != nil {
		return err
	}
	s.cache.InvalidateUnread(ctx, uid)
	return nil
}

func (s *conversationService) participantConversation(ctx context.Context, convID uint64, uid string) (*model.Conversation, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cv.BuyerUID != uid && cv.SellerUID != uid {
		return nil, ErrForbidden
	}
	return cv, nil
}

func (s *conversationService) requireNotBanned(ctx context.Context, uid string) error {
	u, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	if u.Banned {
		return ErrForbidden
	}
	return nil
}
