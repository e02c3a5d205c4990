package digest

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Format renders entries into delivery-ready chunks, each at most limit
// characters. An empty entry list yields exactly one "nothing due" chunk.
func Format(entries []Entry, now time.Time, horizonDays, limit int) []string {
	if len(entries) == 0 {
		return []string{NothingDueMessage(horizonDays)}
	}
	return Pack(RenderLines(entries, now), limit)
}

// NothingDueMessage is the sentinel chunk body for an empty digest.
func NothingDueMessage(horizonDays int) string {
	return fmt.Sprintf("No assignments due in the next %d days", horizonDays)
}

// RenderLines renders one line per entry, in entry order:
//
//	[1] Tomorrow 11:59pm — ENG101: Essay 1 (~3.5h)
//
// The hours suffix is omitted when the estimate is absent.
func RenderLines(entries []Entry, now time.Time) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, renderLine(e, now))
	}
	return lines
}

func renderLine(e Entry, now time.Time) string {
	a := e.Assignment
	line := fmt.Sprintf("[%d] %s %s — %s: %s",
		e.Index, dayLabel(*a.DueAt, now), timeLabel(*a.DueAt), a.CourseName, a.Title)
	if e.Estimate.HasHours {
		line += fmt.Sprintf(" (~%sh)", FormatHours(e.Estimate.Hours))
	}
	return line
}

// dayLabel names the due day relative to now: Today, Tomorrow, the weekday
// name up to six days out, a month/day form beyond that. Days already past
// get the month/day form too, so the detail view never calls an overdue
// assignment "Today".
func dayLabel(due, now time.Time) string {
	switch d := calendarDaysBetween(now, due); {
	case d < 0:
		return due.Format("Jan 2")
	case d == 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	case d <= 6:
		return due.Format("Monday")
	default:
		return due.Format("Jan 2")
	}
}

// timeLabel is a 12-hour clock time without a leading zero, e.g. "11:59pm".
func timeLabel(due time.Time) string {
	return due.Format("3:04pm")
}

// FormatHours prints an hour estimate without trailing zeros: 2, 3.5.
func FormatHours(h float64) string {
	return formatNumber(h)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// calendarDaysBetween counts date-line crossings from a to b in a's
// location. Rounding absorbs DST-shortened or -lengthened days.
func calendarDaysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	aMid := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bMid := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, a.Location())
	return int(math.Round(bMid.Sub(aMid).Hours() / 24))
}
