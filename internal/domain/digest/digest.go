package digest

import "assignment_notifier_bot/internal/domain/assignment"

// Estimate is the model's view of one assignment: a positive hour estimate
// when one could be extracted, an optional free-text summary. Either field
// may be absent; an absent estimate only suppresses the hours suffix in the
// rendered digest.
type Estimate struct {
	AssignmentID int64
	Hours        float64
	HasHours     bool
	Summary      string
}

// Entry is one row of a rendered digest. Index is 1-based and stable only
// within the digest it was assigned in; a fresh fetch invalidates it.
type Entry struct {
	Index      int
	Assignment assignment.Assignment
	Estimate   Estimate
}

// BuildEntries pairs filtered assignments with their estimates and assigns
// display indexes in display order (soonest due first).
func BuildEntries(assignments []assignment.Assignment, estimates []Estimate) []Entry {
	entries := make([]Entry, 0, len(assignments))
	for i, a := range assignments {
		e := Entry{Index: i + 1, Assignment: a}
		if i < len(estimates) {
			e.Estimate = estimates[i]
		}
		entries = append(entries, e)
	}
	return entries
}
