package digest

import (
	"testing"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"

	"github.com/stretchr/testify/assert"
)

func TestFormatDetail(t *testing.T) {
	due := time.Date(2026, 3, 11, 23, 59, 0, 0, est)
	unlock := time.Date(2026, 3, 1, 0, 0, 0, 0, est)
	points := 100.0

	a := &assignment.Assignment{
		Title:             "Essay 1",
		CourseName:        "ENG101",
		DueAt:             &due,
		UnlockAt:          &unlock,
		PointsPossible:    &points,
		SubmissionTypes:   []string{"online_upload", "online_text_entry"},
		AllowedExtensions: []string{"pdf"},
		Attachments:       []assignment.Attachment{{DisplayName: "rubric.pdf", URL: "https://files.test/rubric.pdf"}},
		Description:       "<p>Write about Hamlet.</p>",
		HTMLURL:           "https://canvas.test/a/11",
	}

	text := FormatDetail(a, "A concise summary.", now)

	assert.Contains(t, text, "Essay 1")
	assert.Contains(t, text, "Course: ENG101")
	assert.Contains(t, text, "Due: Tomorrow at 11:59pm")
	assert.Contains(t, text, "Available from: Mar 1, 2026 at 12:00am")
	assert.Contains(t, text, "Points: 100")
	assert.Contains(t, text, "Submission type: Online Upload, Online Text Entry")
	assert.Contains(t, text, "Allowed file types: pdf")
	assert.Contains(t, text, "rubric.pdf (https://files.test/rubric.pdf)")
	assert.Contains(t, text, "Write about Hamlet.")
	assert.Contains(t, text, "Summary:\nA concise summary.")
	assert.Contains(t, text, "View on Canvas: https://canvas.test/a/11")
}

func TestFormatDetailPastDueShowsDate(t *testing.T) {
	due := time.Date(2026, 3, 3, 17, 0, 0, 0, est)
	a := &assignment.Assignment{Title: "Late Essay", CourseName: "ENG101", DueAt: &due}

	text := FormatDetail(a, "", now)

	assert.Contains(t, text, "Due: Mar 3 at 5:00pm")
	assert.NotContains(t, text, "Today")
}

func TestFormatDetailFractionalPoints(t *testing.T) {
	points := 12.5
	a := &assignment.Assignment{Title: "Quiz 3", CourseName: "MATH200", PointsPossible: &points}

	text := FormatDetail(a, "", now)

	assert.Contains(t, text, "Points: 12.5")
}

func TestFormatDetailMinimalAssignment(t *testing.T) {
	a := &assignment.Assignment{Title: "Reading", CourseName: "ENG101"}

	text := FormatDetail(a, "", now)

	assert.Contains(t, text, "Due: No due date")
	assert.NotContains(t, text, "Points:")
	assert.NotContains(t, text, "Summary:")
}
