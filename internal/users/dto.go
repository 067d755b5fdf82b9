package users

import (
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
)

// CreateUserInput holds the profile supplied on first sign-in.
type CreateUserInput struct {
	Role       enums.Role
	FirstName  string
	LastName   string
	Email      string
	PictureURL *string
	BirthDate  *time.Time
	GymID      *uint
}

// UpdateUserInput carries optional fields; nil means "leave unchanged".
type UpdateUserInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	PictureURL *string
	BirthDate  *time.Time
	GymID      *uint
}

// GraduationSummary is the belt information attached to student listings.
type GraduationSummary struct {
	Belt     enums.Belt `json:"belt"`
	Degree   int        `json:"degree"`
	Modality string     `json:"modality"`
}

// StudentDTO is a student joined with their graduation.
type StudentDTO struct {
	models.User
	Graduation *GraduationSummary `json:"graduation"`
}
