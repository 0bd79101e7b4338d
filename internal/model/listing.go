package model

import "time"

type Listing struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:120;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       uint      `gorm:"not null" json:"price"`
	Category    string    `gorm:"size:120;not null;index" json:"category"`
	Location    string    `gorm:"size:120;not null;index" json:"location"`
	SellerUID   string    `gorm:"column:seller_uid;size:128;not null;index" json:"sellerUid"`
	ImageURL    *string   `gorm:"column:image_url;size:512" json:"imageUrl,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	Approved    bool      `gorm:"not null;default:true" json:"approved"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}
