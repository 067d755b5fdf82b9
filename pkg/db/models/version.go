package models

import (
	"time"

	"github.com/tatame/tatame-backend/pkg/enums"
)

// Version is a released client version; a row with DisabledAt set is inactive.
type Version struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Version    string     `gorm:"column:version;type:text;not null" json:"version"`
	DisabledAt *time.Time `gorm:"column:disabled_at" json:"disabledAt,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// AppStoreLink is a download URL for one platform.
type AppStoreLink struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Platform   enums.Platform `gorm:"column:platform;type:text;not null" json:"platform"`
	URL        string         `gorm:"column:url;type:text;not null" json:"url"`
	DisabledAt *time.Time     `gorm:"column:disabled_at" json:"disabledAt,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (AppStoreLink) TableName() string {
	return "app_store_links"
}
