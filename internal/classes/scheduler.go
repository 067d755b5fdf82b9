package classes

import (
	"sort"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
)

// SortWeekly orders classes by day of week (Sunday first) and start time.
// The input slice is left untouched.
func SortWeekly(classes []models.Class) []models.Class {
	sorted := make([]models.Class, len(classes))
	copy(sorted, classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].DayOfWeek.Rank(), sorted[j].DayOfWeek.Rank()
		if ri != rj {
			return ri < rj
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

// ResolveNext picks the class to show as "next" at the given weekday and
// "HH:MM" time. Today's classes count while they have not ended; when the
// rest of the week is empty the earliest class of the week is returned.
// It returns nil only for an empty input.
func ResolveNext(classes []models.Class, today enums.DayOfWeek, now string) *models.Class {
	if len(classes) == 0 {
		return nil
	}
	sorted := SortWeekly(classes)
	todayRank := today.Rank()
	for i := range sorted {
		rank := sorted[i].DayOfWeek.Rank()
		if rank > todayRank || (rank == todayRank && sorted[i].EndTime > now) {
			return &sorted[i]
		}
	}
	return &sorted[0]
}

// InSession reports whether at falls inside the class window, bounds included.
func InSession(class models.Class, day enums.DayOfWeek, at string) bool {
	return class.DayOfWeek == day && class.StartTime <= at && at <= class.EndTime
}
