package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"
	"assignment_notifier_bot/internal/domain/delivery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	assignments []assignment.Assignment
	listErr     error
	detail      *assignment.Assignment
	detailErr   error
}

func (f *fakeSource) ListUpcoming(ctx context.Context) ([]assignment.Assignment, error) {
	return f.assignments, f.listErr
}

func (f *fakeSource) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*assignment.Assignment, error) {
	return f.detail, f.detailErr
}

type fakeChannel struct {
	sent      []string
	failAfter int // fail the send after this many successes; -1 never fails
	limit     int
}

func (f *fakeChannel) Send(ctx context.Context, destination, text string) error {
	if f.failAfter >= 0 && len(f.sent) == f.failAfter {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChannel) MaxMessageLength() int {
	if f.limit > 0 {
		return f.limit
	}
	return 4096
}

func newTestService(source *fakeSource, channel *fakeChannel, llm *fakeLLM) (*DigestServiceImpl, *SessionStore) {
	sessions := NewSessionStore()
	svc := NewDigestService(
		source,
		NewEstimator(llm, testLogger()),
		channel,
		sessions,
		time.UTC,
		7,
		testLogger(),
	)
	return svc, sessions
}

func upcomingAssignment(id int64, course, title string, dueIn time.Duration) assignment.Assignment {
	due := time.Now().UTC().Add(dueIn)
	return assignment.Assignment{
		ID:          id,
		CourseID:    1,
		Title:       title,
		CourseName:  course,
		DueAt:       &due,
		Description: "<p>do the thing</p>",
	}
}

func TestRunAbortsWhenFetchFails(t *testing.T) {
	source := &fakeSource{listErr: errors.New("connection refused")}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "2"})

	res := svc.Run(context.Background(), "chat-1")

	assert.Equal(t, delivery.StatusAborted, res.Status)
	assert.Error(t, res.Err)
	assert.Empty(t, channel.sent) // zero chunks attempted
}

func TestRunDeliversNothingDueSentinel(t *testing.T) {
	source := &fakeSource{}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "2"})

	res := svc.Run(context.Background(), "chat-1")

	assert.Equal(t, delivery.StatusSuccess, res.Status)
	require.Len(t, channel.sent, 1)
	assert.Contains(t, channel.sent[0], "No assignments due")
	assert.Equal(t, 0, res.Entries)
	assert.Equal(t, 1, res.ChunksSent)
}

func TestRunDeliversDigestWithEstimates(t *testing.T) {
	source := &fakeSource{assignments: []assignment.Assignment{
		upcomingAssignment(1, "ENG101", "Essay 1", 24*time.Hour),
		upcomingAssignment(2, "MATH200", "Problem Set", 48*time.Hour),
	}}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "3.5"})

	res := svc.Run(context.Background(), "chat-1")

	assert.Equal(t, delivery.StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Entries)
	require.NotEmpty(t, channel.sent)
	body := strings.Join(channel.sent, "\n")
	assert.Contains(t, body, "[1] ")
	assert.Contains(t, body, "[2] ")
	assert.Contains(t, body, "(~3.5h)")
}

func TestRunProceedsWhenEstimationFails(t *testing.T) {
	source := &fakeSource{assignments: []assignment.Assignment{
		upcomingAssignment(1, "ENG101", "Essay 1", 24*time.Hour),
	}}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{err: errors.New("model down")})

	res := svc.Run(context.Background(), "chat-1")

	assert.Equal(t, delivery.StatusSuccess, res.Status)
	require.Len(t, channel.sent, 1)
	assert.Contains(t, channel.sent[0], "Essay 1")
	assert.NotContains(t, channel.sent[0], "(~")
}

func TestRunStopsOnMidSequenceDeliveryFailure(t *testing.T) {
	var assignments []assignment.Assignment
	for i := int64(1); i <= 6; i++ {
		assignments = append(assignments, upcomingAssignment(i, "ENG101", strings.Repeat("Essay ", 5), time.Duration(i)*time.Hour))
	}
	source := &fakeSource{assignments: assignments}
	channel := &fakeChannel{failAfter: 1, limit: 60} // small chunks, fail on the second
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "2"})

	res := svc.Run(context.Background(), "chat-1")

	assert.Equal(t, delivery.StatusPartial, res.Status)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, res.ChunksSent)
	assert.Greater(t, res.ChunksTotal, res.ChunksSent)
	assert.Len(t, channel.sent, 1)
}

// cancellingChannel cancels the run's context after its first successful
// send, like a shutdown arriving mid-delivery.
type cancellingChannel struct {
	inner  *fakeChannel
	cancel context.CancelFunc
}

func (c *cancellingChannel) Send(ctx context.Context, destination, text string) error {
	err := c.inner.Send(ctx, destination, text)
	c.cancel()
	return err
}

func (c *cancellingChannel) MaxMessageLength() int { return c.inner.MaxMessageLength() }

func TestRunStopsSendingWhenContextCancelled(t *testing.T) {
	var assignments []assignment.Assignment
	for i := int64(1); i <= 6; i++ {
		assignments = append(assignments, upcomingAssignment(i, "ENG101", strings.Repeat("Essay ", 5), time.Duration(i)*time.Hour))
	}
	source := &fakeSource{assignments: assignments}
	inner := &fakeChannel{failAfter: -1, limit: 60} // forces multiple chunks

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	channel := &cancellingChannel{inner: inner, cancel: cancel}

	sessions := NewSessionStore()
	svc := NewDigestService(source, NewEstimator(&fakeLLM{reply: "2"}, testLogger()), channel, sessions, time.UTC, 7, testLogger())

	res := svc.Run(ctx, "chat-1")

	assert.Equal(t, delivery.StatusPartial, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, 1, res.ChunksSent)
	assert.Len(t, inner.sent, 1)
	assert.Greater(t, res.ChunksTotal, res.ChunksSent)
}

func TestRunReplacesSessionMapping(t *testing.T) {
	first := upcomingAssignment(1, "ENG101", "Essay 1", 24*time.Hour)
	source := &fakeSource{assignments: []assignment.Assignment{first}}
	channel := &fakeChannel{failAfter: -1}
	svc, sessions := newTestService(source, channel, &fakeLLM{reply: "2"})

	svc.Run(context.Background(), "chat-1")

	got, err := sessions.Resolve("chat-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Essay 1", got.Assignment.Title)

	// A fresh run invalidates the previous mapping.
	source.assignments = []assignment.Assignment{upcomingAssignment(2, "BIO110", "Lab Report", 24*time.Hour)}
	svc.Run(context.Background(), "chat-1")

	got, err = sessions.Resolve("chat-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Lab Report", got.Assignment.Title)
	_, err = sessions.Resolve("chat-1", 2)
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestResolveDetailWithoutSession(t *testing.T) {
	svc, _ := newTestService(&fakeSource{}, &fakeChannel{failAfter: -1}, &fakeLLM{reply: "2"})

	_, err := svc.ResolveDetail(context.Background(), "chat-9", 1)

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveDetailRendersFullView(t *testing.T) {
	listed := upcomingAssignment(1, "ENG101", "Essay 1", 24*time.Hour)
	points := 100.0
	full := listed
	full.PointsPossible = &points
	full.SubmissionTypes = []string{"online_upload"}

	source := &fakeSource{assignments: []assignment.Assignment{listed}, detail: &full}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "A short summary."})

	svc.Run(context.Background(), "chat-1")
	text, err := svc.ResolveDetail(context.Background(), "chat-1", 1)

	require.NoError(t, err)
	assert.Contains(t, text, "Essay 1")
	assert.Contains(t, text, "Points: 100")
	assert.Contains(t, text, "Online Upload")
	assert.Contains(t, text, "A short summary.")
}

func TestResolveDetailFallsBackToCachedAssignment(t *testing.T) {
	listed := upcomingAssignment(1, "ENG101", "Essay 1", 24*time.Hour)
	source := &fakeSource{assignments: []assignment.Assignment{listed}, detailErr: errors.New("canvas down")}
	channel := &fakeChannel{failAfter: -1}
	svc, _ := newTestService(source, channel, &fakeLLM{reply: "A short summary."})

	svc.Run(context.Background(), "chat-1")
	text, err := svc.ResolveDetail(context.Background(), "chat-1", 1)

	require.NoError(t, err)
	assert.Contains(t, text, "Essay 1")
	assert.Contains(t, text, "ENG101")
}
