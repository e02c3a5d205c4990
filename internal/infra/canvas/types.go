package canvas

import (
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
)

type courseJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type attachmentJSON struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// assignmentJSON mirrors the Canvas assignment payload. Timestamps come as
// RFC3339 or null, which encoding/json maps onto *time.Time directly.
type assignmentJSON struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	DueAt             *time.Time       `json:"due_at"`
	UnlockAt          *time.Time       `json:"unlock_at"`
	LockAt            *time.Time       `json:"lock_at"`
	PointsPossible    *float64         `json:"points_possible"`
	SubmissionTypes   []string         `json:"submission_types"`
	AllowedExtensions []string         `json:"allowed_extensions"`
	Attachments       []attachmentJSON `json:"attachments"`
	HTMLURL           string           `json:"html_url"`
}

func (j assignmentJSON) toDomain(course courseJSON, loc *time.Location) assignment.Assignment {
	a := assignment.Assignment{
		ID:                j.ID,
		CourseID:          course.ID,
		Title:             j.Name,
		CourseName:        course.Name,
		Description:       j.Description,
		PointsPossible:    j.PointsPossible,
		SubmissionTypes:   j.SubmissionTypes,
		AllowedExtensions: j.AllowedExtensions,
		HTMLURL:           j.HTMLURL,
		DueAt:             localized(j.DueAt, loc),
		UnlockAt:          localized(j.UnlockAt, loc),
		LockAt:            localized(j.LockAt, loc),
	}
	if a.Title == "" {
		a.Title = "Unnamed Assignment"
	}
	for _, at := range j.Attachments {
		a.Attachments = append(a.Attachments, assignment.Attachment{
			DisplayName: at.DisplayName,
			URL:         at.URL,
		})
	}
	return a
}

func localized(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}
