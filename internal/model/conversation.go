package model

import "time"

// Conversation holds one thread per (buyer, seller, listing) key.
// A NULL listing id marks a support thread; MySQL treats NULLs in the
// unique index as distinct, so support threads rely on the lookup in
// ConversationRepository.FindOrCreate for dedup.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerUID  string    `gorm:"column:buyer_uid;size:128;index;uniqueIndex:uk_conv_key" json:"buyerUid"`
	SellerUID string    `gorm:"column:seller_uid;size:128;index;uniqueIndex:uk_conv_key" json:"sellerUid"`
	ListingID *uint64   `gorm:"column:listing_id;uniqueIndex:uk_conv_key" json:"listingId,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}
