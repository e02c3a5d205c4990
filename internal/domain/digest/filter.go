package digest

import (
	"sort"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
)

// SelectUpcoming returns the assignments due within [now, now+horizonDays),
// soonest first. Assignments without a due date cannot be scheduled and are
// dropped; already-due assignments are dropped too. The comparison happens
// in now's location, so a local 23:59 deadline is not lost to a UTC day
// boundary. Ties on the due instant are broken by course name, then title,
// to keep the output deterministic.
func SelectUpcoming(assignments []assignment.Assignment, now time.Time, horizonDays int) []assignment.Assignment {
	horizon := now.AddDate(0, 0, horizonDays)

	selected := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.DueAt == nil {
			continue
		}
		due := a.DueAt.In(now.Location())
		if due.Before(now) || !due.Before(horizon) {
			continue
		}
		selected = append(selected, a)
	}

	sort.Slice(selected, func(i, j int) bool {
		di, dj := *selected[i].DueAt, *selected[j].DueAt
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if selected[i].CourseName != selected[j].CourseName {
			return selected[i].CourseName < selected[j].CourseName
		}
		return selected[i].Title < selected[j].Title
	})

	return selected
}
