package models

import "time"

// Asset is study material attached to a class, valid until ExpiresAt.
type Asset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ClassID   *uint      `gorm:"column:class_id;index" json:"classId,omitempty"`
	Title     string     `gorm:"column:title;type:text;not null" json:"title"`
	Content   string     `gorm:"column:content;type:text;not null" json:"content"`
	Type      string     `gorm:"column:type;type:text;not null" json:"type"`
	ObjectKey *string    `gorm:"column:object_key;type:text" json:"objectKey,omitempty"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index" json:"expiresAt,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
