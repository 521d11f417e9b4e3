// Package registry holds the in-memory activity registry: a fixed set of
// activities whose participant lists change through Enroll and Unregister.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"
)

// Registry maps activity name to activity. A single RWMutex makes each
// Enroll/Unregister check-then-mutate step atomic; readers get copies.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*models.Activity
	order      []string
}

// New builds a registry from seed. The seed is copied and must satisfy the
// registry invariants.
func New(seed []models.Activity) (*Registry, error) {
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	activities := make(map[string]*models.Activity, len(seed))
	order := make([]string, 0, len(seed))
	for _, a := range seed {
		clone := a.Clone()
		activities[a.Name] = &clone
		order = append(order, a.Name)
	}
	return &Registry{activities: activities, order: order}, nil
}

// NewDefault builds a registry from SeedActivities.
func NewDefault() *Registry {
	r, err := New(SeedActivities())
	if err != nil {
		panic(fmt.Sprintf("built-in seed is invalid: %v", err))
	}
	return r
}

// NormalizeEmail trims surrounding whitespace and lower-cases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// List returns every activity keyed by name.
func (r *Registry) List() map[string]models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.Activity, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.Clone()
	}
	return out
}

// Names returns activity names in seed order. The set of activities is
// fixed after New, so the slice never changes.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns one activity.
func (r *Registry) Get(name string) (models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return models.Activity{}, errors.NewActivityNotFoundError(name)
	}
	return a.Clone(), nil
}

// Len returns the number of activities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Enroll appends the normalized email to the activity's participants.
// Checks run in order: unknown activity, duplicate participant, capacity.
func (r *Registry) Enroll(activityName, email string) (models.Enrollment, error) {
	normalized := NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityName]
	if !ok {
		return models.Enrollment{}, errors.NewActivityNotFoundError(activityName)
	}
	if indexOf(a.Participants, normalized) >= 0 {
		return models.Enrollment{}, errors.NewAlreadySignedUpError(activityName, normalized)
	}
	if len(a.Participants) >= a.MaxParticipants {
		return models.Enrollment{}, errors.NewActivityFullError(activityName, a.MaxParticipants)
	}

	a.Participants = append(a.Participants, normalized)
	return enrollment(a, normalized), nil
}

// Unregister removes the first participant matching the normalized email.
func (r *Registry) Unregister(activityName, email string) (models.Enrollment, error) {
	normalized := NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityName]
	if !ok {
		return models.Enrollment{}, errors.NewActivityNotFoundError(activityName)
	}
	i := indexOf(a.Participants, normalized)
	if i < 0 {
		return models.Enrollment{}, errors.NewParticipantNotFoundError(activityName, normalized)
	}

	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	return enrollment(a, normalized), nil
}

// indexOf compares each stored entry after normalization; stored values
// keep whatever casing they were seeded with.
func indexOf(participants []string, normalized string) int {
	for i, p := range participants {
		if NormalizeEmail(p) == normalized {
			return i
		}
	}
	return -1
}

func enrollment(a *models.Activity, email string) models.Enrollment {
	return models.Enrollment{
		Activity:         a.Name,
		Email:            email,
		ParticipantCount: len(a.Participants),
		MaxParticipants:  a.MaxParticipants,
	}
}

func validateSeed(seed []models.Activity) error {
	seen := make(map[string]struct{}, len(seed))
	for _, a := range seed {
		if a.Name == "" {
			return errors.NewCatalogInvalidError("activity name must not be empty")
		}
		if _, dup := seen[a.Name]; dup {
			return errors.NewCatalogInvalidError(fmt.Sprintf("duplicate activity %q", a.Name))
		}
		seen[a.Name] = struct{}{}

		if a.MaxParticipants < 1 {
			return errors.NewCatalogInvalidError(fmt.Sprintf("activity %q: max_participants must be positive", a.Name))
		}
		if len(a.Participants) > a.MaxParticipants {
			return errors.NewCatalogInvalidError(fmt.Sprintf("activity %q: %d participants exceed capacity %d",
				a.Name, len(a.Participants), a.MaxParticipants))
		}
		for i, p := range a.Participants {
			if indexOf(a.Participants[:i], NormalizeEmail(p)) >= 0 {
				return errors.NewCatalogInvalidError(fmt.Sprintf("activity %q: duplicate participant %q", a.Name, p))
			}
		}
	}
	return nil
}
