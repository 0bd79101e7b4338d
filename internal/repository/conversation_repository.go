package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

// ConversationSummary is the list-view row: the conversation plus the
// related listing's title/image, nil for support threads.
type ConversationSummary struct {
	ID              uint64    `json:"id"`
	BuyerUID        string    `json:"buyerUid"`
	SellerUID       string    `json:"sellerUid"`
	ListingID       *uint64   `json:"listingId,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ListingTitle    *string   `json:"listingTitle,omitempty"`
	ListingImageURL *string   `json:"listingImageUrl,omitempty"`
}

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, buyerUID, sellerUID string, listingID *uint64) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, uid string) ([]ConversationSummary, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64, limit int) ([]model.Message, error)
	CountUnread(ctx context.Context, uid string) (int64, error)
	MarkRead(ctx context.Context, convID uint64, uid string) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindOrCreate resolves the thread for the (buyer, seller, listing) key.
// A nil listing id is its own key: it only ever matches other support
// threads, never a listing-bound one. A duplicate-key error from a
// concurrent create is settled by re-reading the winning row.
func (r *conversationRepository) FindOrCreate(ctx context.Context, buyerUID, sellerUID string, listingID *uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	keyQuery := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Where("buyer_uid = ? AND seller_uid = ?", buyerUID, sellerUID)
		if listingID == nil {
			return q.Where("listing_id IS NULL")
		}
		return q.Where("listing_id = ?", *listingID)
	}
	cv := model.Conversation{BuyerUID: buyerUID, SellerUID: sellerUID, ListingID: listingID}
	err := keyQuery().FirstOrCreate(&cv).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		err = keyQuery().First(&cv).Error
	}
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, uid string) ([]ConversationSummary, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []ConversationSummary
	if err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select("conversations.id, conversations.buyer_uid, conversations.seller_uid, conversations.listing_id, conversations.updated_at, listings.title AS listing_title, listings.image_url AS listing_image_url").
		Joins("LEFT JOIN listings ON listings.id = conversations.listing_id").
		Where("conversations.buyer_uid = ? OR conversations.seller_uid = ?", uid, uid).
		Order("conversations.updated_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AppendMessage inserts the message and bumps the parent conversation's
// updated_at to the message's creation time as one atomic unit.
func (r *conversationRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64, limit int) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []model.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// CountUnread only touches conversations where uid is a participant;
// foreign conversations never leak into the badge.
func (r *conversationRepository) CountUnread(ctx context.Context, uid string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.buyer_uid = ? OR conversations.seller_uid = ?)", uid, uid).
		Where("messages.sender_uid <> ? AND messages.is_read = ?", uid, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, convID uint64, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_uid <> ? AND is_read = ?", convID, uid, false).
		Update("is_read", true).Error
}
