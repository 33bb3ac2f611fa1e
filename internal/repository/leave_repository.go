package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/coordination-api/internal/models"
)

const leaveColumns = `id, coordinator_id, deputy_id, course_code, duties, start_date, end_date,
	is_short_leave, status, admin_comments, processed_by, processed_at, created_at, updated_at`

const leaveJoinColumns = `lr.id, lr.coordinator_id, lr.deputy_id, lr.course_code, lr.duties, lr.start_date,
	lr.end_date, lr.is_short_leave, lr.status, lr.admin_comments, lr.processed_by, lr.processed_at,
	lr.created_at, lr.updated_at,
	co.first_name || ' ' || co.last_name AS coordinator_name, co.email AS coordinator_email,
	dep.first_name || ' ' || dep.last_name AS deputy_name, dep.email AS deputy_email`

// LeaveRepository persists leave requests and their statements.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request in the pending state.
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	const query = `INSERT INTO leave_requests
	(coordinator_id, deputy_id, course_code, duties, start_date, end_date, is_short_leave, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		req.CoordinatorID, req.DeputyID, req.CourseCode, req.Duties,
		req.StartDate, req.EndDate, req.IsShortLeave, req.Status)
	if err := row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// GetByID fetches a leave request joined with both parties' identities.
func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*models.LeaveRequestWithParties, error) {
	query := `SELECT ` + leaveJoinColumns + `
	FROM leave_requests lr
	LEFT JOIN users co ON co.staff_id = lr.coordinator_id
	LEFT JOIN users dep ON dep.staff_id = lr.deputy_id
	WHERE lr.id = $1`
	var req models.LeaveRequestWithParties
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPending returns the admin review queue in creation order.
func (r *LeaveRepository) ListPending(ctx context.Context) ([]models.LeaveRequestWithParties, error) {
	query := `SELECT ` + leaveJoinColumns + `
	FROM leave_requests lr
	LEFT JOIN users co ON co.staff_id = lr.coordinator_id
	LEFT JOIN users dep ON dep.staff_id = lr.deputy_id
	WHERE lr.status = $1
	ORDER BY lr.created_at ASC`
	var requests []models.LeaveRequestWithParties
	if err := r.db.SelectContext(ctx, &requests, query, models.StatusPending); err != nil {
		return nil, fmt.Errorf("list pending leave requests: %w", err)
	}
	return requests, nil
}

// ListByCoordinator returns a coordinator's history, newest first.
func (r *LeaveRepository) ListByCoordinator(ctx context.Context, coordinatorID string) ([]models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE coordinator_id = $1 ORDER BY created_at DESC`
	var requests []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &requests, query, coordinatorID); err != nil {
		return nil, fmt.Errorf("list leave requests by coordinator: %w", err)
	}
	return requests, nil
}

// UpdateStatusParams groups the columns written by a review decision.
type UpdateStatusParams struct {
	ID            int64
	Status        models.ReviewStatus
	AdminComments *string
	ProcessedBy   string
	ProcessedAt   time.Time
}

// UpdateStatus transitions a pending request to its final state. The
// conditional WHERE makes the transition atomic: zero affected rows
// means the request was already processed.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, params UpdateStatusParams) error {
	const query = `UPDATE leave_requests
	SET status = $2, admin_comments = $3, processed_by = $4, processed_at = $5, updated_at = $5
	WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query,
		params.ID, params.Status, params.AdminComments, params.ProcessedBy, params.ProcessedAt,
		models.StatusPending)
	if err != nil {
		return fmt.Errorf("update leave request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check leave status update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateStatement appends a statement to a leave request.
func (r *LeaveRepository) CreateStatement(ctx context.Context, stmt *models.LeaveStatement) error {
	const query = `INSERT INTO leave_statements (leave_request_id, author_id, statement_text, created_at)
	VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, stmt.LeaveRequestID, stmt.AuthorID, stmt.StatementText)
	if err := row.Scan(&stmt.ID, &stmt.CreatedAt); err != nil {
		return fmt.Errorf("create leave statement: %w", err)
	}
	return nil
}

// ListStatementsByRequest returns a request's statements, newest first.
func (r *LeaveRepository) ListStatementsByRequest(ctx context.Context, leaveRequestID int64) ([]models.LeaveStatementWithAuthor, error) {
	const query = `SELECT ls.id, ls.leave_request_id, ls.author_id, ls.statement_text, ls.created_at,
	u.first_name || ' ' || u.last_name AS author_name, u.email AS author_email
	FROM leave_statements ls
	LEFT JOIN users u ON u.staff_id = ls.author_id
	WHERE ls.leave_request_id = $1
	ORDER BY ls.created_at DESC`
	var statements []models.LeaveStatementWithAuthor
	if err := r.db.SelectContext(ctx, &statements, query, leaveRequestID); err != nil {
		return nil, fmt.Errorf("list leave statements: %w", err)
	}
	return statements, nil
}
