// Package audit records every committed participant change in Postgres.
package audit

import (
	"context"

	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS participant_audit (
	id                UUID PRIMARY KEY,
	event_type        TEXT        NOT NULL,
	activity          TEXT        NOT NULL,
	email             TEXT        NOT NULL,
	participant_count INTEGER     NOT NULL,
	max_participants  INTEGER     NOT NULL,
	occurred_at       TIMESTAMPTZ NOT NULL
)`

const insertQuery = `
INSERT INTO participant_audit
	(id, event_type, activity, email, participant_count, max_participants, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Journal is an event sink writing one row per event.
type Journal struct {
	db *database.PostgresClient
}

func NewJournal(db *database.PostgresClient) *Journal {
	return &Journal{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, createTableQuery); err != nil {
		return errors.NewAuditWriteFailedError(err)
	}
	return nil
}

func (j *Journal) Name() string { return "audit" }

func (j *Journal) Publish(ctx context.Context, event models.ParticipantEvent) error {
	_, err := j.db.Exec(ctx, insertQuery,
		event.ID,
		string(event.Type),
		event.Activity,
		event.Email,
		event.ParticipantCount,
		event.MaxParticipants,
		event.OccurredAt,
	)
	if err != nil {
		return errors.NewAuditWriteFailedError(err)
	}
	return nil
}
