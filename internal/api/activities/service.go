package activities

import (
	"context"
	"fmt"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/events"
	"mergington-activities/internal/models"
	"mergington-activities/internal/registry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opSignup     = "signup"
	opUnregister = "unregister"
)

type Service struct {
	registry   *registry.Registry
	dispatcher *events.Dispatcher
	logger     logger.Logger
	obs        *observability.Observability
}

func NewService(deps ServiceDependencies) *Service {
	s := &Service{
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		obs:        deps.Observability,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewDispatcher(s.logger, 0)
	}
	if s.obs == nil {
		s.obs = &observability.Observability{}
	}
	return s
}

// SyncParticipantGauges publishes the current participant count of every
// activity.
func (s *Service) SyncParticipantGauges() {
	for name, a := range s.registry.List() {
		metrics.Participants.WithLabelValues(name).Set(float64(len(a.Participants)))
	}
}

func (s *Service) ListActivities(ctx context.Context) ListResponse {
	_, span := s.obs.StartSpan(ctx, "activities.list")
	defer span.End()

	return ListResponse{
		Names:      s.registry.Names(),
		Activities: s.registry.List(),
	}
}

func (s *Service) Signup(ctx context.Context, activityName, email string) (*MessageResponse, error) {
	ctx, span := s.obs.StartSpan(ctx, "activities.signup", attribute.String("activity", activityName))
	defer span.End()

	start := time.Now()
	enrollment, err := s.registry.Enroll(activityName, email)
	s.obs.RecordMutationDuration(ctx, opSignup, time.Since(start))
	if err != nil {
		s.reject(ctx, span, opSignup, activityName, err)
		return nil, err
	}

	s.obs.RecordMutation(ctx, opSignup, "success")
	metrics.SignupsTotal.WithLabelValues(enrollment.Activity).Inc()
	metrics.Participants.WithLabelValues(enrollment.Activity).Set(float64(enrollment.ParticipantCount))

	s.logger.Info("Participant signed up", map[string]interface{}{
		"activity":     enrollment.Activity,
		"email":        enrollment.Email,
		"participants": enrollment.ParticipantCount,
		"max":          enrollment.MaxParticipants,
	})

	s.dispatch(ctx, events.NewEvent(models.EventParticipantEnrolled, enrollment))

	return &MessageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", enrollment.Email, enrollment.Activity),
	}, nil
}

func (s *Service) Unregister(ctx context.Context, activityName, email string) (*MessageResponse, error) {
	ctx, span := s.obs.StartSpan(ctx, "activities.unregister", attribute.String("activity", activityName))
	defer span.End()

	start := time.Now()
	enrollment, err := s.registry.Unregister(activityName, email)
	s.obs.RecordMutationDuration(ctx, opUnregister, time.Since(start))
	if err != nil {
		s.reject(ctx, span, opUnregister, activityName, err)
		return nil, err
	}

	s.obs.RecordMutation(ctx, opUnregister, "success")
	metrics.UnregistrationsTotal.WithLabelValues(enrollment.Activity).Inc()
	metrics.Participants.WithLabelValues(enrollment.Activity).Set(float64(enrollment.ParticipantCount))

	s.logger.Info("Participant unregistered", map[string]interface{}{
		"activity":     enrollment.Activity,
		"email":        enrollment.Email,
		"participants": enrollment.ParticipantCount,
	})

	s.dispatch(ctx, events.NewEvent(models.EventParticipantUnregistered, enrollment))

	return &MessageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", enrollment.Email, enrollment.Activity),
	}, nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, operation, activityName string, err error) {
	code := errors.CodeOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))
	s.obs.RecordMutation(ctx, operation, "rejected")
	metrics.RejectionsTotal.WithLabelValues(operation, string(code)).Inc()

	s.logger.Debug("Participant change rejected", map[string]interface{}{
		"operation": operation,
		"activity":  activityName,
		"errorCode": string(code),
	})
}

// dispatch runs after the registry change is committed; the request being
// cancelled must not cancel delivery.
func (s *Service) dispatch(ctx context.Context, event models.ParticipantEvent) {
	if failed := s.dispatcher.Dispatch(context.WithoutCancel(ctx), event); failed > 0 {
		s.logger.Warn("Participant event partially delivered", map[string]interface{}{
			"eventId": event.ID,
			"failed":  failed,
		})
	}
}
