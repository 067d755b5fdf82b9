package models

import "time"

// CheckIn records attendance of a user at a class. A user checks into a
// given class at most once.
type CheckIn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_checkins_user_class" json:"userId"`
	ClassID   uint      `gorm:"column:class_id;not null;uniqueIndex:idx_checkins_user_class;index" json:"classId"`
	Date      string    `gorm:"column:date;type:text;not null" json:"date"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (CheckIn) TableName() string {
	return "checkins"
}
