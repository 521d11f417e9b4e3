// internal/events/redis.go
package events

import (
	"context"
	"encoding/json"

	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"
)

// RedisPublisher publishes events on a channel and keeps a capped list of
// the most recent ones for late subscribers.
type RedisPublisher struct {
	client      *database.RedisClient
	channel     string
	recentKey   string
	recentLimit int
}

func NewRedisPublisher(client *database.RedisClient, channel, recentKey string, recentLimit int) *RedisPublisher {
	return &RedisPublisher{
		client:      client,
		channel:     channel,
		recentKey:   recentKey,
		recentLimit: recentLimit,
	}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Publish(ctx context.Context, event models.ParticipantEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.NewEventPublishFailedError(err)
	}

	if err := p.client.Publish(ctx, p.channel, payload); err != nil {
		return errors.NewEventPublishFailedError(err)
	}
	if p.recentKey != "" {
		if err := p.client.PushCapped(ctx, p.recentKey, payload, p.recentLimit); err != nil {
			return errors.NewEventPublishFailedError(err)
		}
	}
	return nil
}
