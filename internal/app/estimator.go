package app

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
	"assignment_notifier_bot/internal/domain/digest"
	"assignment_notifier_bot/internal/domain/llm"

	"github.com/sirupsen/logrus"
)

const (
	maxPromptDescriptionLen = 1000
	defaultEstimateTimeout  = 60 * time.Second
)

// Estimator asks the local model for per-assignment time estimates and
// summaries. Every model call is bounded by its own timeout and any failure
// degrades to an absent result; the estimator never fails a digest run.
type Estimator struct {
	client  llm.Client
	timeout time.Duration
	logger  *logrus.Entry
}

func NewEstimator(client llm.Client, logger *logrus.Entry) *Estimator {
	return &Estimator{
		client:  client,
		timeout: defaultEstimateTimeout,
		logger:  logger,
	}
}

// EstimateAll issues one estimation call per assignment, concurrently, and
// waits for every call to settle. The returned slice is index-aligned with
// the input.
func (e *Estimator) EstimateAll(ctx context.Context, assignments []assignment.Assignment) []digest.Estimate {
	estimates := make([]digest.Estimate, len(assignments))

	var wg sync.WaitGroup
	for i, a := range assignments {
		wg.Add(1)
		go func(i int, a assignment.Assignment) {
			defer wg.Done()
			estimates[i] = e.Estimate(ctx, a)
		}(i, a)
	}
	wg.Wait()

	return estimates
}

// Estimate produces the Estimate for one assignment. Assignments without a
// usable description are not sent to the model at all.
func (e *Estimator) Estimate(ctx context.Context, a assignment.Assignment) digest.Estimate {
	est := digest.Estimate{AssignmentID: a.ID}

	description := digest.StripHTML(a.Description)
	if description == "" {
		e.logger.WithField("assignment", a.Title).Debug("Skipping estimate: no description")
		return est
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.client.Chat(callCtx, estimatePrompt(a, description))
	if err != nil {
		e.logger.WithField("assignment", a.Title).WithError(err).Debug("Model estimate call failed")
		return est
	}

	hours, ok := parseHours(reply)
	if !ok {
		e.logger.WithFields(logrus.Fields{"assignment": a.Title, "reply": reply}).
			Debug("No numeric estimate in model reply")
		return est
	}

	est.Hours = hours
	est.HasHours = true
	return est
}

// Summarize asks the model for a short summary of the assignment, used by
// the detail view.
func (e *Estimator) Summarize(ctx context.Context, a assignment.Assignment) (string, error) {
	description := digest.StripHTML(a.Description)
	if description == "" {
		return "", nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.client.Chat(callCtx, summarizePrompt(a, description))
	if err != nil {
		return "", fmt.Errorf("model summary call failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func estimatePrompt(a assignment.Assignment, description string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping a college student estimate assignment completion time.\n\n")
	b.WriteString("Assignment Details:\n")
	fmt.Fprintf(&b, "- Course: %s\n", a.CourseName)
	fmt.Fprintf(&b, "- Title: %s\n", a.Title)
	if a.DueAt != nil {
		fmt.Fprintf(&b, "- Due: %s\n", a.DueAt.Format("Monday, Jan 2, 2006 at 3:04 PM MST"))
	}
	if a.HTMLURL != "" {
		fmt.Fprintf(&b, "- URL: %s\n", a.HTMLURL)
	}
	fmt.Fprintf(&b, "\nDescription:\n%s\n\n", digest.Truncate(description, maxPromptDescriptionLen))
	b.WriteString("Estimate the hours needed to complete this assignment. Consider typical college student workload. ")
	b.WriteString("Respond ONLY with a single number (e.g., '2', '3.5', '0.5').")
	return b.String()
}

func summarizePrompt(a assignment.Assignment, description string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping a college student understand an assignment.\n\n")
	b.WriteString("Assignment Details:\n")
	fmt.Fprintf(&b, "- Course: %s\n", a.CourseName)
	fmt.Fprintf(&b, "- Title: %s\n", a.Title)
	if a.DueAt != nil {
		fmt.Fprintf(&b, "- Due: %s\n", a.DueAt.Format("Monday, Jan 2, 2006 at 3:04 PM MST"))
	}
	fmt.Fprintf(&b, "\nDescription:\n%s\n\n", digest.Truncate(description, maxPromptDescriptionLen))
	b.WriteString("Provide a 2-3 sentence summary of this assignment that highlights:\n")
	b.WriteString("1. The main task/deliverable\n")
	b.WriteString("2. Key requirements or focus areas\n")
	b.WriteString("3. Any important deadlines or submission details\n\n")
	b.WriteString("Be concise and direct.")
	return b.String()
}

var (
	rangeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)`)
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parseHours extracts an hour estimate from a free-text model reply. The
// first numeric token wins; when it opens a range ("2-3 hours", "2 to 3"),
// the midpoint of the range is used. Non-positive or non-finite values are
// rejected.
func parseHours(reply string) (float64, bool) {
	numLoc := numberRe.FindStringIndex(reply)
	if numLoc == nil {
		return 0, false
	}

	var value float64
	if m := rangeRe.FindStringSubmatchIndex(reply); m != nil && m[2] == numLoc[0] {
		lo, errLo := strconv.ParseFloat(reply[m[2]:m[3]], 64)
		hi, errHi := strconv.ParseFloat(reply[m[4]:m[5]], 64)
		if errLo != nil || errHi != nil {
			return 0, false
		}
		value = (lo + hi) / 2
	} else {
		v, err := strconv.ParseFloat(reply[numLoc[0]:numLoc[1]], 64)
		if err != nil {
			return 0, false
		}
		value = v
	}

	if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}
