package assignment

import "context"

// Source defines the operations for retrieving assignments from the LMS.
// This decouples the digest pipeline from the concrete Canvas client.
type Source interface {
	// ListUpcoming returns all assignments from the user's active courses
	// that the source considers upcoming. Filtering against the lookahead
	// window is the caller's concern.
	ListUpcoming(ctx context.Context) ([]Assignment, error)

	// GetAssignment fetches one assignment with its full detail fields
	// (description, attachments, submission metadata).
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*Assignment, error)
}
