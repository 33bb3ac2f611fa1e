package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
)

func newLeaveRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLeaveRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leave_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	deputy := "STF00002"
	req := &models.LeaveRequest{
		CoordinatorID: "STF00001",
		DeputyID:      &deputy,
		StartDate:     now,
		EndDate:       now.Add(48 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.Equal(t, int64(7), req.ID)
	require.Equal(t, models.StatusPending, req.Status)
	require.False(t, req.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	now := time.Now()
	coordinator := "Alice Carter"
	rows := sqlmock.NewRows([]string{
		"id", "coordinator_id", "deputy_id", "course_code", "duties", "start_date", "end_date",
		"is_short_leave", "status", "admin_comments", "processed_by", "processed_at",
		"created_at", "updated_at", "coordinator_name", "coordinator_email", "deputy_name", "deputy_email",
	}).AddRow(int64(1), "STF00001", nil, nil, nil, now, now.Add(24*time.Hour),
		false, "pending", nil, nil, nil, now, now, coordinator, "alice@campus.edu", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT lr.id, lr.coordinator_id")).
		WithArgs("pending").
		WillReturnRows(rows)

	pending, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "STF00001", pending[0].CoordinatorID)
	require.Equal(t, coordinator, *pending[0].CoordinatorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	now := time.Now()
	comments := "enjoy your break"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests")).
		WithArgs(int64(1), "approved", &comments, "ADM00001", now, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), UpdateStatusParams{
		ID:            1,
		Status:        models.StatusApproved,
		AdminComments: &comments,
		ProcessedBy:   "ADM00001",
		ProcessedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryUpdateStatusAlreadyProcessed(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), UpdateStatusParams{
		ID:          1,
		Status:      models.StatusRejected,
		ProcessedBy: "ADM00001",
		ProcessedAt: time.Now(),
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryStatements(t *testing.T) {
	db, mock, cleanup := newLeaveRepoMock(t)
	defer cleanup()

	repo := NewLeaveRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leave_statements")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	stmt := &models.LeaveStatement{
		LeaveRequestID: 1,
		AuthorID:       "STF00001",
		StatementText:  "handover notes attached",
	}
	require.NoError(t, repo.CreateStatement(context.Background(), stmt))
	require.Equal(t, int64(3), stmt.ID)

	author := "Alice Carter"
	rows := sqlmock.NewRows([]string{"id", "leave_request_id", "author_id", "statement_text", "created_at", "author_name", "author_email"}).
		AddRow(int64(3), int64(1), "STF00001", "handover notes attached", now, author, "alice@campus.edu")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ls.id, ls.leave_request_id")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	statements, err := repo.ListStatementsByRequest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	require.Equal(t, "handover notes attached", statements[0].StatementText)
	require.NoError(t, mock.ExpectationsWereMet())
}
