package model

import "time"

// Messages are immutable after insert except for the read flag.
// Ordering within a conversation is by id ASC; the auto-increment id
// breaks ties between messages created in the same instant.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"column:conversation_id;index;not null" json:"conversationId"`
	SenderUID      string    `gorm:"column:sender_uid;size:128;index;not null" json:"senderUid"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	Read           bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
