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
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type suggestionRepository interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id int64) (*models.SuggestionWithAuthor, error)
	ListAll(ctx context.Context) ([]models.SuggestionWithAuthor, error)
	ListByCoordinator(ctx context.Context, coordinatorID string) ([]models.SuggestionWithAuthor, error)
	UpdateStatus(ctx context.Context, id int64, status models.ReviewStatus, adminComments *string, processedBy string, processedAt time.Time) error
}

// SuggestionService handles coordinator suggestions and their review.
// The lifecycle mirrors leave requests: pending until an administrator
// approves or rejects, exactly once.
type SuggestionService struct {
	repo      suggestionRepository
	audit     auditLogger
	notifier  reviewNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSuggestionService constructs a SuggestionService instance.
func NewSuggestionService(repo suggestionRepository, audit auditLogger, notifier reviewNotifier, validate *validator.Validate, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SuggestionService{repo: repo, audit: audit, notifier: notifier, validator: validate, logger: logger}
}

// Submit records a new pending suggestion for the authenticated
// coordinator.
func (s *SuggestionService) Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitSuggestionRequest) (*models.Suggestion, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication context")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	suggestion := &models.Suggestion{
		CoordinatorID:  claims.StaffID,
		SuggestionText: req.SuggestionText,
		Status:         models.StatusPending,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create suggestion")
	}
	return suggestion, nil
}

// ListAll returns every suggestion with its author, newest first.
func (s *SuggestionService) ListAll(ctx context.Context) ([]models.SuggestionWithAuthor, error) {
	suggestions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suggestions")
	}
	return suggestions, nil
}

// Get returns a single suggestion with its author. Owners can read
// their own suggestions, administrators can read any.
func (s *SuggestionService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.SuggestionWithAuthor, error) {
	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestion")
	}
	if err := ensureSelfOrAdmin(claims, suggestion.CoordinatorID); err != nil {
		return nil, err
	}
	return suggestion, nil
}

// History returns a coordinator's own suggestions, newest first.
func (s *SuggestionService) History(ctx context.Context, claims *models.JWTClaims, coordinatorID string) ([]models.SuggestionWithAuthor, error) {
	if err := ensureSelfOrAdmin(claims, coordinatorID); err != nil {
		return nil, err
	}
	suggestions, err := s.repo.ListByCoordinator(ctx, coordinatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suggestion history")
	}
	return suggestions, nil
}

// Approve finalizes a pending suggestion as approved.
func (s *SuggestionService) Approve(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.SuggestionWithAuthor, error) {
	return s.review(ctx, claims, id, models.StatusApproved, req)
}

// Reject finalizes a pending suggestion as rejected.
func (s *SuggestionService) Reject(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.SuggestionWithAuthor, error) {
	return s.review(ctx, claims, id, models.StatusRejected, req)
}

func (s *SuggestionService) review(ctx context.Context, claims *models.JWTClaims, id int64, status models.ReviewStatus, req models.ReviewRequest) (*models.SuggestionWithAuthor, error) {
	if claims == nil || !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can review suggestions")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestion")
	}
	if suggestion.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "suggestion has already been processed")
	}

	now := time.Now().UTC()
	var comments *string
	if req.AdminComments != "" {
		comments = &req.AdminComments
	}

	if err := s.repo.UpdateStatus(ctx, id, status, comments, claims.StaffID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyProcessed, "suggestion has already been processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update suggestion")
	}

	suggestion.Status = status
	suggestion.AdminComments = comments
	suggestion.ProcessedBy = &claims.StaffID
	suggestion.ProcessedAt = &now

	if s.audit != nil {
		resourceID := strconv.FormatInt(id, 10)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionSuggestionReview,
			Resource:   "suggestions",
			ResourceID: &resourceID,
			NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, status)),
		}); err != nil {
			s.logger.Warn("failed to record suggestion review audit log", zap.Error(err))
		}
	}

	if s.notifier != nil && suggestion.AuthorEmail != nil {
		message := fmt.Sprintf("Your suggestion #%d has been %s.", id, status)
		if comments != nil {
			message += " Comments: " + *comments
		}
		s.notifier.Dispatch(*suggestion.AuthorEmail, fmt.Sprintf("Suggestion %s", status), message)
	}

	return suggestion, nil
}
