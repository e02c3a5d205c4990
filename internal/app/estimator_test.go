package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply string
	err   error
	delay time.Duration
	calls int64

	mu      sync.Mutex
	prompts []string
}

func (f *fakeLLM) Chat(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func describedAssignment(title string) assignment.Assignment {
	due := time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC)
	return assignment.Assignment{
		ID:          42,
		Title:       title,
		CourseName:  "ENG101",
		DueAt:       &due,
		Description: "<p>Write an essay about something.</p>",
	}
}

func TestParseHours(t *testing.T) {
	cases := []struct {
		reply string
		want  float64
		ok    bool
	}{
		{"3.5", 3.5, true},
		{"I'd say 2 hours.", 2, true},
		{"about 2-3 hours", 2.5, true},
		{"2 to 4 hours, roughly", 3, true},
		{"0.5", 0.5, true},
		{"no idea, sorry", 0, false},
		{"", 0, false},
		{"0 hours", 0, false},
		{"maybe 3, or 5 if you're slow", 3, true}, // first number wins
	}
	for _, tc := range cases {
		t.Run(tc.reply, func(t *testing.T) {
			got, ok := parseHours(tc.reply)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestEstimateParsesReply(t *testing.T) {
	e := NewEstimator(&fakeLLM{reply: "Around 3.5 hours."}, testLogger())

	est := e.Estimate(context.Background(), describedAssignment("Essay 1"))

	require.True(t, est.HasHours)
	assert.InDelta(t, 3.5, est.Hours, 1e-9)
	assert.EqualValues(t, 42, est.AssignmentID)
}

func TestEstimateAbsentOnModelError(t *testing.T) {
	e := NewEstimator(&fakeLLM{err: errors.New("connection refused")}, testLogger())

	est := e.Estimate(context.Background(), describedAssignment("Essay 1"))

	assert.False(t, est.HasHours)
}

func TestEstimateAbsentOnUnparseableReply(t *testing.T) {
	e := NewEstimator(&fakeLLM{reply: "that depends on the student"}, testLogger())

	est := e.Estimate(context.Background(), describedAssignment("Essay 1"))

	assert.False(t, est.HasHours)
}

func TestEstimateAbsentOnTimeout(t *testing.T) {
	llm := &fakeLLM{reply: "3", delay: time.Second}
	e := NewEstimator(llm, testLogger())
	e.timeout = 10 * time.Millisecond

	est := e.Estimate(context.Background(), describedAssignment("Essay 1"))

	assert.False(t, est.HasHours)
}

func TestEstimateSkipsAssignmentWithoutDescription(t *testing.T) {
	llm := &fakeLLM{reply: "3"}
	e := NewEstimator(llm, testLogger())

	a := describedAssignment("Essay 1")
	a.Description = ""
	est := e.Estimate(context.Background(), a)

	assert.False(t, est.HasHours)
	assert.EqualValues(t, 0, atomic.LoadInt64(&llm.calls))
}

func TestEstimateAllAlignsWithInput(t *testing.T) {
	llm := &fakeLLM{reply: "2"}
	e := NewEstimator(llm, testLogger())

	a := describedAssignment("Essay 1")
	b := describedAssignment("Essay 2")
	b.Description = "" // no model call, absent estimate

	estimates := e.EstimateAll(context.Background(), []assignment.Assignment{a, b})

	require.Len(t, estimates, 2)
	assert.True(t, estimates[0].HasHours)
	assert.False(t, estimates[1].HasHours)
}
