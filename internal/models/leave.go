package models

import "time"

// ReviewStatus captures the lifecycle states shared by leave requests
// and suggestions.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// LeaveRequest is a coordinator's request for leave cover. Once the
// status leaves pending it is final; the row is never deleted.
type LeaveRequest struct {
	ID            int64        `db:"id" json:"id"`
	CoordinatorID string       `db:"coordinator_id" json:"coordinator_id"`
	DeputyID      *string      `db:"deputy_id" json:"deputy_id,omitempty"`
	CourseCode    *string      `db:"course_code" json:"course_code,omitempty"`
	Duties        *string      `db:"duties" json:"duties,omitempty"`
	StartDate     time.Time    `db:"start_date" json:"start_date"`
	EndDate       time.Time    `db:"end_date" json:"end_date"`
	IsShortLeave  bool         `db:"is_short_leave" json:"is_short_leave"`
	Status        ReviewStatus `db:"status" json:"status"`
	AdminComments *string      `db:"admin_comments" json:"admin_comments,omitempty"`
	ProcessedBy   *string      `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt   *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// LeaveRequestWithParties joins a leave request with the coordinator and
// deputy identities for the admin review queue.
type LeaveRequestWithParties struct {
	LeaveRequest
	CoordinatorName  *string `db:"coordinator_name" json:"coordinator_name,omitempty"`
	CoordinatorEmail *string `db:"coordinator_email" json:"coordinator_email,omitempty"`
	DeputyName       *string `db:"deputy_name" json:"deputy_name,omitempty"`
	DeputyEmail      *string `db:"deputy_email" json:"deputy_email,omitempty"`
}

// SubmitLeaveRequest is the coordinator payload for a new request. The
// coordinator identity always comes from the authenticated claims.
type SubmitLeaveRequest struct {
	DeputyID     string `json:"deputy_id" validate:"required,len=8"`
	CourseCode   string `json:"course_code" validate:"omitempty,max=20"`
	Duties       string `json:"duties" validate:"omitempty,max=1000"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
	IsShortLeave bool   `json:"is_short_leave"`
}

// ReviewRequest carries the optional comments an admin attaches to a
// decision.
type ReviewRequest struct {
	AdminComments string `json:"admin_comments" validate:"omitempty,max=500"`
}

// LeaveStatement is an append-only annotation on a leave request.
type LeaveStatement struct {
	ID             int64     `db:"id" json:"id"`
	LeaveRequestID int64     `db:"leave_request_id" json:"leave_request_id"`
	AuthorID       string    `db:"author_id" json:"author_id"`
	StatementText  string    `db:"statement_text" json:"statement_text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// LeaveStatementWithAuthor joins the statement with its author identity.
type LeaveStatementWithAuthor struct {
	LeaveStatement
	AuthorName  *string `db:"author_name" json:"author_name,omitempty"`
	AuthorEmail *string `db:"author_email" json:"author_email,omitempty"`
}

// SubmitLeaveStatementRequest is the payload for attaching a statement.
type SubmitLeaveStatementRequest struct {
	LeaveRequestID int64  `json:"leave_request_id" validate:"required"`
	StatementText  string `json:"statement_text" validate:"required,max=2000"`
}
