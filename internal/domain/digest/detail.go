package digest

import (
	"fmt"
	"strings"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
)

const maxDetailDescriptionLen = 1500

// FormatDetail renders the full view of one assignment for a "details N"
// follow-up: due/availability times, points, submission metadata,
// attachments, description, and the model's summary when present.
func FormatDetail(a *assignment.Assignment, summary string, now time.Time) string {
	var sections []string

	sections = append(sections, a.Title)
	sections = append(sections, "Course: "+a.CourseName)

	dueStr := "No due date"
	if a.DueAt != nil {
		dueStr = fmt.Sprintf("%s at %s", dayLabel(*a.DueAt, now), timeLabel(*a.DueAt))
	}
	sections = append(sections, "Due: "+dueStr)

	if a.UnlockAt != nil {
		sections = append(sections, "Available from: "+a.UnlockAt.Format("Jan 2, 2006 at 3:04pm"))
	}
	if a.LockAt != nil {
		sections = append(sections, "Locks at: "+a.LockAt.Format("Jan 2, 2006 at 3:04pm"))
	}
	if a.PointsPossible != nil {
		sections = append(sections, "Points: "+formatNumber(*a.PointsPossible))
	}
	if len(a.SubmissionTypes) > 0 {
		sections = append(sections, "Submission type: "+strings.Join(humanizeAll(a.SubmissionTypes), ", "))
	}
	if len(a.AllowedExtensions) > 0 {
		sections = append(sections, "Allowed file types: "+strings.Join(a.AllowedExtensions, ", "))
	}
	if len(a.Attachments) > 0 {
		lines := []string{"Attachments:"}
		for _, at := range a.Attachments {
			if at.URL != "" {
				lines = append(lines, fmt.Sprintf("- %s (%s)", at.DisplayName, at.URL))
			} else {
				lines = append(lines, "- "+at.DisplayName)
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if desc := StripHTML(a.Description); desc != "" {
		sections = append(sections, "Description:\n"+Truncate(desc, maxDetailDescriptionLen))
	}
	if summary != "" {
		sections = append(sections, "Summary:\n"+summary)
	}
	if a.HTMLURL != "" {
		sections = append(sections, "View on Canvas: "+a.HTMLURL)
	}

	return strings.Join(sections, "\n\n")
}

// humanizeAll turns Canvas enum values like "online_upload" into "Online Upload".
func humanizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		words := strings.Split(strings.ReplaceAll(v, "_", " "), " ")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		out = append(out, strings.Join(words, " "))
	}
	return out
}
