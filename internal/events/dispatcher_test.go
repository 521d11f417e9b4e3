package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Sink Implementation
// ==========================

type MockSink struct {
	mock.Mock
	name string
}

func (m *MockSink) Name() string { return m.name }

func (m *MockSink) Publish(ctx context.Context, event models.ParticipantEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testEnrollment() models.Enrollment {
	return models.Enrollment{
		Activity:         "Chess Club",
		Email:            "newstudent@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
	}
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(models.EventParticipantEnrolled, testEnrollment())

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, models.EventParticipantEnrolled, event.Type)
	assert.Equal(t, "Chess Club", event.Activity)
	assert.Equal(t, "newstudent@mergington.edu", event.Email)
	assert.Equal(t, 3, event.ParticipantCount)
	assert.Equal(t, 12, event.MaxParticipants)
	assert.WithinDuration(t, time.Now().UTC(), event.OccurredAt, 5*time.Second)

	other := NewEvent(models.EventParticipantEnrolled, testEnrollment())
	assert.NotEqual(t, event.ID, other.ID)
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	event := NewEvent(models.EventParticipantUnregistered, testEnrollment())

	first := &MockSink{name: "first"}
	second := &MockSink{name: "second"}
	first.On("Publish", mock.Anything, event).Return(nil).Once()
	second.On("Publish", mock.Anything, event).Return(nil).Once()

	d := NewDispatcher(logger.NewTestLogger(t), time.Second, first, second)

	assert.Equal(t, 0, d.Dispatch(context.Background(), event))
	assert.Equal(t, []string{"first", "second"}, d.Sinks())
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestDispatcher_FailingSinkDoesNotStopOthers(t *testing.T) {
	event := NewEvent(models.EventParticipantEnrolled, testEnrollment())

	broken := &MockSink{name: "broken"}
	healthy := &MockSink{name: "healthy"}
	broken.On("Publish", mock.Anything, event).Return(errors.New("connection refused")).Once()
	healthy.On("Publish", mock.Anything, event).Return(nil).Once()

	d := NewDispatcher(logger.NewTestLogger(t), time.Second, broken, healthy)

	assert.Equal(t, 1, d.Dispatch(context.Background(), event))
	broken.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestDispatcher_AppliesTimeout(t *testing.T) {
	event := NewEvent(models.EventParticipantEnrolled, testEnrollment())

	sink := &MockSink{name: "slow"}
	sink.On("Publish", mock.Anything, event).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
	}).Return(nil).Once()

	d := NewDispatcher(nil, 50*time.Millisecond, sink)
	assert.Equal(t, 0, d.Dispatch(context.Background(), event))
	sink.AssertExpectations(t)
}

func TestDispatcher_SlowSinkDoesNotExpireOthers(t *testing.T) {
	event := NewEvent(models.EventParticipantEnrolled, testEnrollment())

	slow := &MockSink{name: "redis"}
	slow.On("Publish", mock.Anything, event).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(context.DeadlineExceeded).Once()

	var auditErr error
	audit := &MockSink{name: "audit"}
	audit.On("Publish", mock.Anything, event).Run(func(args mock.Arguments) {
		auditErr = args.Get(0).(context.Context).Err()
	}).Return(nil).Once()

	d := NewDispatcher(logger.NewTestLogger(t), 50*time.Millisecond, slow, audit)

	started := time.Now()
	assert.Equal(t, 1, d.Dispatch(context.Background(), event))
	assert.Less(t, time.Since(started), time.Second)
	assert.NoError(t, auditErr)
	slow.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestDispatcher_NoSinks(t *testing.T) {
	d := NewDispatcher(nil, time.Second)
	assert.Equal(t, 0, d.Dispatch(context.Background(), models.ParticipantEvent{}))
	assert.Empty(t, d.Sinks())
}
