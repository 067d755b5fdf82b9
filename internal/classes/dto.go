package classes

import (
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
)

// CreateClassInput captures a new weekly class.
type CreateClassInput struct {
	GymID        uint
	InstructorID uint
	DayOfWeek    enums.DayOfWeek
	StartTime    string
	EndTime      string
	Modality     string
	Description  *string
}

// UpdateClassInput carries optional fields; nil leaves the column unchanged.
type UpdateClassInput struct {
	InstructorID *uint
	DayOfWeek    *enums.DayOfWeek
	StartTime    *string
	EndTime      *string
	Modality     *string
	Description  *string
}

// GymSummary is the short gym reference attached to class views.
type GymSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ClassDTO is the client view of a class.
type ClassDTO struct {
	ID             uint            `json:"id"`
	GymID          uint            `json:"gymId"`
	InstructorID   uint            `json:"instructorId"`
	InstructorName string          `json:"instructorName"`
	DayOfWeek      enums.DayOfWeek `json:"dayOfWeek"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	Modality       string          `json:"modality"`
	Description    *string         `json:"description,omitempty"`
	Gym            *GymSummary     `json:"gym,omitempty"`
}

// FromModel maps a class with its preloaded relations.
func FromModel(class models.Class) ClassDTO {
	dto := ClassDTO{
		ID:           class.ID,
		GymID:        class.GymID,
		InstructorID: class.InstructorID,
		DayOfWeek:    class.DayOfWeek,
		StartTime:    class.StartTime,
		EndTime:      class.EndTime,
		Modality:     class.Modality,
		Description:  class.Description,
	}
	if class.Instructor != nil {
		dto.InstructorName = class.Instructor.FullName()
	}
	if class.Gym != nil {
		dto.Gym = &GymSummary{ID: class.Gym.ID, Name: class.Gym.Name}
	}
	return dto
}

func fromModels(classes []models.Class) []ClassDTO {
	out := make([]ClassDTO, 0, len(classes))
	for _, c := range classes {
		out = append(out, FromModel(c))
	}
	return out
}
