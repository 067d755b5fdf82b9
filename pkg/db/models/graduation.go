package models

import (
	"time"

	"github.com/tatame/tatame-backend/pkg/enums"
)

// Graduation holds the current belt of a user; one row per user.
type Graduation struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	Belt      enums.Belt `gorm:"column:belt;type:text;not null" json:"belt"`
	Degree    int        `gorm:"column:degree;not null;default:0" json:"degree"`
	Modality  string     `gorm:"column:modality;type:text;not null" json:"modality"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
