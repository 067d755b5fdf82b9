package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gym is a tenant academy run by a manager.
type Gym struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"column:name;type:text;not null" json:"name"`
	Address   string          `gorm:"column:address;type:text;not null" json:"address"`
	ManagerID *uint           `gorm:"column:manager_id;index" json:"managerId,omitempty"`
	FoundedAt *datatypes.Date `gorm:"column:founded_at" json:"foundedAt,omitempty"`
	LogoURL   *string         `gorm:"column:logo_url;type:text" json:"logoUrl,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
