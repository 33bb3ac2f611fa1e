package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/coordination-api/internal/models"
	"github.com/campushq/coordination-api/internal/repository"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
	"github.com/campushq/coordination-api/pkg/export"
)

const (
	dateLayout        = "2006-01-02"
	displayDateLayout = "2 Jan 2006"
)

type leaveRepository interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*models.LeaveRequestWithParties, error)
	ListPending(ctx context.Context) ([]models.LeaveRequestWithParties, error)
	ListByCoordinator(ctx context.Context, coordinatorID string) ([]models.LeaveRequest, error)
	UpdateStatus(ctx context.Context, params repository.UpdateStatusParams) error
	CreateStatement(ctx context.Context, stmt *models.LeaveStatement) error
	ListStatementsByRequest(ctx context.Context, leaveRequestID int64) ([]models.LeaveStatementWithAuthor, error)
}

type staffDirectory interface {
	FindByStaffID(ctx context.Context, staffID string) (*models.User, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type reviewNotifier interface {
	Dispatch(to, subject, message string)
}

// LeaveService implements the leave request lifecycle: submission by
// coordinators, review by administrators, and the coordinator-visible
// history with statements and exports.
type LeaveService struct {
	repo      leaveRepository
	staff     staffDirectory
	audit     auditLogger
	notifier  reviewNotifier
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs a LeaveService instance.
func NewLeaveService(repo leaveRepository, staff staffDirectory, audit auditLogger, notifier reviewNotifier, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{
		repo:      repo,
		staff:     staff,
		audit:     audit,
		notifier:  notifier,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Submit records a new pending leave request for the authenticated
// coordinator. The coordinator identity always comes from the claims,
// never from the payload.
func (s *LeaveService) Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication context")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave request payload")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted as YYYY-MM-DD")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be formatted as YYYY-MM-DD")
	}
	if !endDate.After(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}

	deputy, err := s.staff.FindByStaffID(ctx, req.DeputyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "deputy staff ID is not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up deputy")
	}

	now := time.Now().UTC()
	leave := &models.LeaveRequest{
		CoordinatorID: claims.StaffID,
		DeputyID:      &req.DeputyID,
		StartDate:     startDate,
		EndDate:       endDate,
		IsShortLeave:  req.IsShortLeave,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.CourseCode != "" {
		leave.CourseCode = &req.CourseCode
	}
	if req.Duties != "" {
		leave.Duties = &req.Duties
	}

	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}

	if s.notifier != nil {
		message := fmt.Sprintf("You have been named deputy on leave request #%d for %s to %s.",
			leave.ID, startDate.Format(displayDateLayout), endDate.Format(displayDateLayout))
		if leave.CourseCode != nil {
			message += " Course: " + *leave.CourseCode + "."
		}
		if leave.Duties != nil {
			message += " Duties: " + *leave.Duties
		}
		s.notifier.Dispatch(deputy.Email, "Leave cover assignment", message)
	}

	return leave, nil
}

// ListPending returns every pending request with its parties, oldest
// submission first so the review queue is fair.
func (s *LeaveService) ListPending(ctx context.Context) ([]models.LeaveRequestWithParties, error) {
	requests, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending leave requests")
	}
	return requests, nil
}

// Get loads a single leave request. Only the owning coordinator and
// administrators may read it.
func (s *LeaveService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.LeaveRequestWithParties, error) {
	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if err := ensureSelfOrAdmin(claims, leave.CoordinatorID); err != nil {
		return nil, err
	}
	return leave, nil
}

// History returns a coordinator's leave requests, newest first.
func (s *LeaveService) History(ctx context.Context, claims *models.JWTClaims, coordinatorID string) ([]models.LeaveRequest, error) {
	if err := ensureSelfOrAdmin(claims, coordinatorID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListByCoordinator(ctx, coordinatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave history")
	}
	return requests, nil
}

// Approve finalizes a pending request as approved.
func (s *LeaveService) Approve(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error) {
	return s.review(ctx, claims, id, models.StatusApproved, req)
}

// Reject finalizes a pending request as rejected.
func (s *LeaveService) Reject(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error) {
	return s.review(ctx, claims, id, models.StatusRejected, req)
}

func (s *LeaveService) review(ctx context.Context, claims *models.JWTClaims, id int64, status models.ReviewStatus, req models.ReviewRequest) (*models.LeaveRequestWithParties, error) {
	if claims == nil || !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can review leave requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "leave request has already been processed")
	}

	now := time.Now().UTC()
	params := repository.UpdateStatusParams{
		ID:          id,
		Status:      status,
		ProcessedBy: claims.StaffID,
		ProcessedAt: now,
	}
	if req.AdminComments != "" {
		params.AdminComments = &req.AdminComments
	}

	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "leave request has already been processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
	}

	leave.Status = status
	leave.AdminComments = params.AdminComments
	leave.ProcessedBy = &params.ProcessedBy
	leave.ProcessedAt = &now
	leave.UpdatedAt = now

	if s.audit != nil {
		resourceID := strconv.FormatInt(id, 10)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionLeaveReview,
			Resource:   "leave_requests",
			ResourceID: &resourceID,
			NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, status)),
		}); err != nil {
			s.logger.Warn("failed to record leave review audit log", zap.Error(err))
		}
	}

	s.notifyDecision(leave)

	return leave, nil
}

// notifyDecision emails the coordinator and deputy after a review.
// Parties without an email address are skipped.
func (s *LeaveService) notifyDecision(leave *models.LeaveRequestWithParties) {
	if s.notifier == nil {
		return
	}
	subject := fmt.Sprintf("Leave request %s", leave.Status)
	message := fmt.Sprintf("Leave request #%d for %s to %s has been %s.",
		leave.ID, leave.StartDate.Format(displayDateLayout), leave.EndDate.Format(displayDateLayout), leave.Status)
	if leave.CourseCode != nil {
		message += " Course: " + *leave.CourseCode + "."
	}
	if leave.AdminComments != nil {
		message += " Comments: " + *leave.AdminComments
	}
	if leave.CoordinatorEmail != nil {
		s.notifier.Dispatch(*leave.CoordinatorEmail, subject, message)
	}
	if leave.DeputyEmail != nil {
		s.notifier.Dispatch(*leave.DeputyEmail, subject, message)
	}
}

// SubmitStatement appends a statement to an existing leave request.
func (s *LeaveService) SubmitStatement(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveStatementRequest) (*models.LeaveStatement, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication context")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid statement payload")
	}

	leave, err := s.repo.GetByID(ctx, req.LeaveRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if err := ensureSelfOrAdmin(claims, leave.CoordinatorID); err != nil {
		return nil, err
	}

	stmt := &models.LeaveStatement{
		LeaveRequestID: req.LeaveRequestID,
		AuthorID:       claims.StaffID,
		StatementText:  req.StatementText,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateStatement(ctx, stmt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create statement")
	}
	return stmt, nil
}

// ListStatements returns the statements attached to a leave request.
func (s *LeaveService) ListStatements(ctx context.Context, claims *models.JWTClaims, leaveRequestID int64) ([]models.LeaveStatementWithAuthor, error) {
	leave, err := s.repo.GetByID(ctx, leaveRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if err := ensureSelfOrAdmin(claims, leave.CoordinatorID); err != nil {
		return nil, err
	}

	statements, err := s.repo.ListStatementsByRequest(ctx, leaveRequestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list statements")
	}
	return statements, nil
}

// ExportHistory renders a coordinator's leave history as CSV or PDF.
// It returns the document, its content type, and a suggested filename.
func (s *LeaveService) ExportHistory(ctx context.Context, claims *models.JWTClaims, coordinatorID, format string) ([]byte, string, string, error) {
	requests, err := s.History(ctx, claims, coordinatorID)
	if err != nil {
		return nil, "", "", err
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Start Date", "End Date", "Deputy", "Course", "Short Leave", "Status", "Admin Comments"},
	}
	for _, r := range requests {
		row := map[string]string{
			"ID":          strconv.FormatInt(r.ID, 10),
			"Start Date":  r.StartDate.Format(dateLayout),
			"End Date":    r.EndDate.Format(dateLayout),
			"Short Leave": strconv.FormatBool(r.IsShortLeave),
			"Status":      string(r.Status),
		}
		if r.DeputyID != nil {
			row["Deputy"] = *r.DeputyID
		}
		if r.CourseCode != nil {
			row["Course"] = *r.CourseCode
		}
		if r.AdminComments != nil {
			row["Admin Comments"] = *r.AdminComments
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return payload, "text/csv", fmt.Sprintf("leave-history-%s.csv", coordinatorID), nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Leave History %s", coordinatorID))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return payload, "application/pdf", fmt.Sprintf("leave-history-%s.pdf", coordinatorID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
