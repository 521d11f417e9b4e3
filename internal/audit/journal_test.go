package audit

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) (*Journal, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJournal(database.NewPostgresFromDB(db)), mock
}

func testEvent() models.ParticipantEvent {
	return models.ParticipantEvent{
		ID:               "5f0c7a53-3c55-4a4c-9d8e-1b2d3f4a5b6c",
		Type:             models.EventParticipantEnrolled,
		Activity:         "Chess Club",
		Email:            "newstudent@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
		OccurredAt:       time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC),
	}
}

func TestJournal_EnsureSchema(t *testing.T) {
	journal, mock := newTestJournal(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS participant_audit`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, journal.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_EnsureSchemaFailure(t *testing.T) {
	journal, mock := newTestJournal(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS participant_audit`).
		WillReturnError(stderrors.New("permission denied"))

	err := journal.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuditWriteFailed, errors.CodeOf(err))
}

func TestJournal_Publish(t *testing.T) {
	journal, mock := newTestJournal(t)
	event := testEvent()

	mock.ExpectExec(`INSERT INTO participant_audit`).
		WithArgs(
			event.ID,
			"participant.enrolled",
			"Chess Club",
			"newstudent@mergington.edu",
			3,
			12,
			event.OccurredAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, journal.Publish(context.Background(), event))
	assert.Equal(t, "audit", journal.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_PublishFailure(t *testing.T) {
	journal, mock := newTestJournal(t)

	mock.ExpectExec(`INSERT INTO participant_audit`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(stderrors.New("connection reset"))

	err := journal.Publish(context.Background(), testEvent())
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAuditWriteFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
