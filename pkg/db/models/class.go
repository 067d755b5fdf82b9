package models

import (
	"time"

	"github.com/tatame/tatame-backend/pkg/enums"
	"gorm.io/gorm"
)

// Class is a weekly recurring session. StartTime and EndTime are zero-padded
// 24h "HH:MM" strings so they compare lexicographically.
type Class struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	GymID        uint            `gorm:"column:gym_id;not null;index" json:"gymId"`
	InstructorID uint            `gorm:"column:instructor_id;not null" json:"instructorId"`
	CreatedByID  uint            `gorm:"column:created_by_id;not null" json:"createdById"`
	DayOfWeek    enums.DayOfWeek `gorm:"column:day_of_week;type:text;not null" json:"dayOfWeek"`
	StartTime    string          `gorm:"column:start_time;type:text;not null" json:"startTime"`
	EndTime      string          `gorm:"column:end_time;type:text;not null" json:"endTime"`
	Modality     string          `gorm:"column:modality;type:text;not null" json:"modality"`
	Description  *string         `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Gym        *Gym  `gorm:"foreignKey:GymID" json:"gym,omitempty"`
}
