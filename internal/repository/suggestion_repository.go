package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/coordination-api/internal/models"
)

const suggestionJoinColumns = `s.id, s.coordinator_id, s.suggestion_text, s.status, s.admin_comments,
	s.processed_by, s.processed_at, s.submitted_at,
	u.first_name || ' ' || u.last_name AS author_name, u.email AS author_email`

// SuggestionRepository persists coordinator suggestions.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository constructs the repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Create inserts a new suggestion in the pending state.
func (r *SuggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	if suggestion.Status == "" {
		suggestion.Status = models.StatusPending
	}
	const query = `INSERT INTO suggestions (coordinator_id, suggestion_text, status, submitted_at)
	VALUES ($1, $2, $3, NOW()) RETURNING id, submitted_at`
	row := r.db.QueryRowxContext(ctx, query, suggestion.CoordinatorID, suggestion.SuggestionText, suggestion.Status)
	if err := row.Scan(&suggestion.ID, &suggestion.SubmittedAt); err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}
	return nil
}

// GetByID fetches a suggestion joined with its author's identity.
func (r *SuggestionRepository) GetByID(ctx context.Context, id int64) (*models.SuggestionWithAuthor, error) {
	query := `SELECT ` + suggestionJoinColumns + `
	FROM suggestions s
	LEFT JOIN users u ON u.staff_id = s.coordinator_id
	WHERE s.id = $1`
	var suggestion models.SuggestionWithAuthor
	if err := r.db.GetContext(ctx, &suggestion, query, id); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// ListAll returns every suggestion, newest first.
func (r *SuggestionRepository) ListAll(ctx context.Context) ([]models.SuggestionWithAuthor, error) {
	query := `SELECT ` + suggestionJoinColumns + `
	FROM suggestions s
	LEFT JOIN users u ON u.staff_id = s.coordinator_id
	ORDER BY s.submitted_at DESC`
	var suggestions []models.SuggestionWithAuthor
	if err := r.db.SelectContext(ctx, &suggestions, query); err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

// ListByCoordinator returns a coordinator's own suggestions, newest first.
func (r *SuggestionRepository) ListByCoordinator(ctx context.Context, coordinatorID string) ([]models.SuggestionWithAuthor, error) {
	query := `SELECT ` + suggestionJoinColumns + `
	FROM suggestions s
	LEFT JOIN users u ON u.staff_id = s.coordinator_id
	WHERE s.coordinator_id = $1
	ORDER BY s.submitted_at DESC`
	var suggestions []models.SuggestionWithAuthor
	if err := r.db.SelectContext(ctx, &suggestions, query, coordinatorID); err != nil {
		return nil, fmt.Errorf("list suggestions by coordinator: %w", err)
	}
	return suggestions, nil
}

// UpdateStatus transitions a pending suggestion to its final state with
// the same conditional-write guard as leave requests.
func (r *SuggestionRepository) UpdateStatus(ctx context.Context, id int64, status models.ReviewStatus, adminComments *string, processedBy string, processedAt time.Time) error {
	const query = `UPDATE suggestions
	SET status = $2, admin_comments = $3, processed_by = $4, processed_at = $5
	WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, id, status, adminComments, processedBy, processedAt, models.StatusPending)
	if err != nil {
		return fmt.Errorf("update suggestion status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check suggestion update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
