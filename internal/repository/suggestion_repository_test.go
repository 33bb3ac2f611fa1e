package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
)

func TestSuggestionRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewSuggestionRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO suggestions")).
		WithArgs("STF00001", "extend the lab hours", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at"}).AddRow(int64(4), now))

	suggestion := &models.Suggestion{
		CoordinatorID:  "STF00001",
		SuggestionText: "extend the lab hours",
	}
	require.NoError(t, repo.Create(context.Background(), suggestion))
	require.Equal(t, int64(4), suggestion.ID)
	require.Equal(t, models.StatusPending, suggestion.Status)

	author := "Alice Carter"
	rows := sqlmock.NewRows([]string{
		"id", "coordinator_id", "suggestion_text", "status", "admin_comments",
		"processed_by", "processed_at", "submitted_at", "author_name", "author_email",
	}).AddRow(int64(4), "STF00001", "extend the lab hours", "pending", nil, nil, nil, now, author, "alice@campus.edu")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.coordinator_id")).
		WithArgs(int64(4)).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, "extend the lab hours", found.SuggestionText)
	require.Equal(t, author, *found.AuthorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewSuggestionRepository(db)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE suggestions")).
		WithArgs(int64(4), "approved", nil, "ADM00001", now, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 4, models.StatusApproved, nil, "ADM00001", now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE suggestions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), 4, models.StatusRejected, nil, "ADM00001", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
