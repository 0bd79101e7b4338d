package model

import "time"

// User UIDs are opaque strings: Firebase UIDs for OAuth sign-ins,
// "local:<uuid>" for credential accounts.
type User struct {
	UID          string    `gorm:"column:uid;primaryKey;size:128" json:"uid"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash *string   `gorm:"column:password_hash;size:120" json:"-"`
	AvatarURL    *string   `gorm:"column:avatar_url;size:512" json:"avatarUrl,omitempty"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	Admin        bool      `gorm:"not null;default:false" json:"admin"`
	Banned       bool      `gorm:"not null;default:false" json:"banned"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
