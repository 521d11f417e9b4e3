// internal/models/notification.go
package models

import "time"

type ParticipantEventType string

const (
	EventParticipantEnrolled     ParticipantEventType = "participant.enrolled"
	EventParticipantUnregistered ParticipantEventType = "participant.unregistered"
)

// ParticipantEvent is emitted after every successful enroll or unregister.
type ParticipantEvent struct {
	ID               string               `json:"id"`
	Type             ParticipantEventType `json:"type"`
	Activity         string               `json:"activity"`
	Email            string               `json:"email"`
	ParticipantCount int                  `json:"participant_count"`
	MaxParticipants  int                  `json:"max_participants"`
	OccurredAt       time.Time            `json:"occurred_at"`
}

type NotificationTemplate struct {
	Type    ParticipantEventType `json:"type"`
	Subject string               `json:"subject"`
	Body    string               `json:"body"`
}
