package assignment

import "time"

// Assignment is an immutable snapshot of one Canvas assignment, valid for a
// single pipeline run. Optional Canvas fields stay nil/empty when the API
// omits them; they are never defaulted to zero values with meaning.
type Assignment struct {
	ID         int64
	CourseID   int64
	Title      string
	CourseName string

	DueAt    *time.Time // already converted to the configured local timezone
	UnlockAt *time.Time
	LockAt   *time.Time

	Description       string // raw HTML as returned by Canvas
	PointsPossible    *float64
	SubmissionTypes   []string
	AllowedExtensions []string
	Attachments       []Attachment

	HTMLURL string
}

// Attachment is a file linked to an assignment.
type Attachment struct {
	DisplayName string
	URL         string
}
