package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/tatame/tatame-backend/pkg/enums"
)

// Notification is a message addressed to a list of user ids. Recipients and
// ViewedBy hold ids as strings.
type Notification struct {
	ID         uint                      `gorm:"primaryKey" json:"id"`
	Title      string                    `gorm:"column:title;type:text;not null" json:"title"`
	Content    string                    `gorm:"column:content;type:text;not null" json:"content"`
	Channel    enums.NotificationChannel `gorm:"column:channel;type:text;not null" json:"channel"`
	SenderID   *uint                     `gorm:"column:sender_id" json:"senderId,omitempty"`
	Recipients pq.StringArray            `gorm:"column:recipients;type:text[];not null" json:"recipients"`
	Status     enums.NotificationStatus  `gorm:"column:status;type:text;not null" json:"status"`
	ViewedBy   pq.StringArray            `gorm:"column:viewed_by;type:text[];not null" json:"viewedBy"`
	SentAt     *time.Time                `gorm:"column:sent_at" json:"sentAt,omitempty"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
