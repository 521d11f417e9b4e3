// internal/models/activity.go
package models

// Activity is one extracurricular offering. Name is the registry key and is
// not part of the JSON body; GET /activities returns a name-keyed object.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Clone returns a deep copy with a non-nil participant slice.
func (a Activity) Clone() Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	a.Participants = participants
	return a
}

// Enrollment confirms a participant mutation. Email is normalized.
type Enrollment struct {
	Activity         string `json:"activity"`
	Email            string `json:"email"`
	ParticipantCount int    `json:"participantCount"`
	MaxParticipants  int    `json:"maxParticipants"`
}
