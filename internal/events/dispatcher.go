// Package events fans participant events out to external sinks after a
// registry mutation has been committed.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"

	"github.com/google/uuid"
)

// Sink accepts participant events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event models.ParticipantEvent) error
}

// Dispatcher publishes each event to every sink. Sink errors are logged and
// counted; they never propagate to the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger
}

func NewDispatcher(log logger.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, logger: log}
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch publishes to every sink concurrently and returns the number of
// sinks that failed. Each sink gets its own timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.ParticipantEvent) int {
	if len(d.sinks) == 0 {
		return 0
	}

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			if err := d.publish(ctx, sink, event); err != nil {
				failed.Add(1)
				metrics.EventSinkFailures.WithLabelValues(sink.Name()).Inc()
				d.logger.WithError(err).Warn("Participant event not delivered", map[string]interface{}{
					"sink":     sink.Name(),
					"eventId":  event.ID,
					"type":     string(event.Type),
					"activity": event.Activity,
				})
			}
		}(sink)
	}
	wg.Wait()
	return int(failed.Load())
}

func (d *Dispatcher) publish(ctx context.Context, sink Sink, event models.ParticipantEvent) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return sink.Publish(ctx, event)
}

// NewEvent builds an event for a committed enrollment change.
func NewEvent(eventType models.ParticipantEventType, e models.Enrollment) models.ParticipantEvent {
	return models.ParticipantEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		Activity:         e.Activity,
		Email:            e.Email,
		ParticipantCount: e.ParticipantCount,
		MaxParticipants:  e.MaxParticipants,
		OccurredAt:       time.Now().UTC(),
	}
}
