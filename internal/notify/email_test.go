package notify

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock SES Implementation
// ==========================

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func testEvent(eventType models.ParticipantEventType) models.ParticipantEvent {
	return models.ParticipantEvent{
		ID:               "evt-1",
		Type:             eventType,
		Activity:         "Tennis Club",
		Email:            "newstudent@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  10,
		OccurredAt:       time.Now().UTC(),
	}
}

func TestEmailNotifier_Publish(t *testing.T) {
	tests := []struct {
		name        string
		eventType   models.ParticipantEventType
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "enrolled",
			eventType:   models.EventParticipantEnrolled,
			wantSubject: "You are signed up for Tennis Club",
			wantBody:    []string{"Hi newstudent@mergington.edu", "3 of 10 spots are taken"},
		},
		{
			name:        "unregistered",
			eventType:   models.EventParticipantUnregistered,
			wantSubject: "You have left Tennis Club",
			wantBody:    []string{"no longer registered for Tennis Club"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockEmailSender)
			var captured *ses.SendEmailInput
			sender.On("SendEmail", mock.Anything, mock.AnythingOfType("*ses.SendEmailInput")).
				Run(func(args mock.Arguments) {
					captured = args.Get(1).(*ses.SendEmailInput)
				}).
				Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil).Once()

			notifier := NewEmailNotifier(sender, "activities@mergington.edu")
			require.NoError(t, notifier.Publish(context.Background(), testEvent(tt.eventType)))

			require.NotNil(t, captured)
			assert.Equal(t, "activities@mergington.edu", aws.ToString(captured.Source))
			assert.Equal(t, []string{"newstudent@mergington.edu"}, captured.Destination.ToAddresses)
			assert.Equal(t, tt.wantSubject, aws.ToString(captured.Message.Subject.Data))
			body := aws.ToString(captured.Message.Body.Text.Data)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			sender.AssertExpectations(t)
		})
	}
}

func TestEmailNotifier_SendFailure(t *testing.T) {
	sender := new(MockEmailSender)
	sender.On("SendEmail", mock.Anything, mock.Anything).
		Return(nil, stderrors.New("throttled")).Once()

	notifier := NewEmailNotifier(sender, "activities@mergington.edu")
	err := notifier.Publish(context.Background(), testEvent(models.EventParticipantEnrolled))

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
	assert.Equal(t, "email", notifier.Name())
}

func TestEmailNotifier_UnknownEventType(t *testing.T) {
	sender := new(MockEmailSender)
	notifier := NewEmailNotifier(sender, "activities@mergington.edu")

	err := notifier.Publish(context.Background(), testEvent("participant.moved"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestRender(t *testing.T) {
	out := render("{{activity}} / {{unknown}}", map[string]string{"activity": "Chess Club"})
	assert.Equal(t, "Chess Club / {{unknown}}", out)
}

func TestEmailNotifier_SkipsEmptyRecipient(t *testing.T) {
	sender := new(MockEmailSender)
	notifier := NewEmailNotifier(sender, "activities@mergington.edu")

	event := testEvent(models.EventParticipantEnrolled)
	event.Email = ""

	require.NoError(t, notifier.Publish(context.Background(), event))
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}
