package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type suggestionRepoStub struct {
	suggestions map[int64]*models.SuggestionWithAuthor
	nextID      int64
}

func newSuggestionRepoStub() *suggestionRepoStub {
	return &suggestionRepoStub{suggestions: make(map[int64]*models.SuggestionWithAuthor), nextID: 1}
}

func (s *suggestionRepoStub) Create(ctx context.Context, suggestion *models.Suggestion) error {
	suggestion.ID = s.nextID
	s.nextID++
	s.suggestions[suggestion.ID] = &models.SuggestionWithAuthor{Suggestion: *suggestion}
	return nil
}

func (s *suggestionRepoStub) GetByID(ctx context.Context, id int64) (*models.SuggestionWithAuthor, error) {
	if suggestion, ok := s.suggestions[id]; ok {
		copy := *suggestion
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *suggestionRepoStub) ListAll(ctx context.Context) ([]models.SuggestionWithAuthor, error) {
	var result []models.SuggestionWithAuthor
	for _, suggestion := range s.suggestions {
		result = append(result, *suggestion)
	}
	return result, nil
}

func (s *suggestionRepoStub) ListByCoordinator(ctx context.Context, coordinatorID string) ([]models.SuggestionWithAuthor, error) {
	var result []models.SuggestionWithAuthor
	for _, suggestion := range s.suggestions {
		if suggestion.CoordinatorID == coordinatorID {
			result = append(result, *suggestion)
		}
	}
	return result, nil
}

func (s *suggestionRepoStub) UpdateStatus(ctx context.Context, id int64, status models.ReviewStatus, adminComments *string, processedBy string, processedAt time.Time) error {
	suggestion, ok := s.suggestions[id]
	if !ok || suggestion.Status != models.StatusPending {
		return sql.ErrNoRows
	}
	suggestion.Status = status
	suggestion.AdminComments = adminComments
	suggestion.ProcessedBy = &processedBy
	suggestion.ProcessedAt = &processedAt
	return nil
}

func TestSuggestionServiceSubmit(t *testing.T) {
	repo := newSuggestionRepoStub()
	svc := NewSuggestionService(repo, &auditStub{}, nil, nil, nil)

	text := strings.Repeat("improve the lab booking process. ", 5)
	suggestion, err := svc.Submit(context.Background(), coordinatorClaims("CRD00001"), models.SubmitSuggestionRequest{
		SuggestionText: text,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, suggestion.Status)
	assert.Equal(t, "CRD00001", suggestion.CoordinatorID)

	stored, err := repo.GetByID(context.Background(), suggestion.ID)
	require.NoError(t, err)
	assert.Equal(t, text, stored.SuggestionText, "text must be stored verbatim")
}

func TestSuggestionServiceSubmitValidation(t *testing.T) {
	repo := newSuggestionRepoStub()
	svc := NewSuggestionService(repo, &auditStub{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), coordinatorClaims("CRD00001"), models.SubmitSuggestionRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), coordinatorClaims("CRD00001"), models.SubmitSuggestionRequest{
		SuggestionText: strings.Repeat("x", 1001),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.suggestions)
}

func TestSuggestionServiceReviewIsFinal(t *testing.T) {
	repo := newSuggestionRepoStub()
	audit := &auditStub{}
	notifier := &notifierStub{}
	svc := NewSuggestionService(repo, audit, notifier, nil, nil)

	suggestion, err := svc.Submit(context.Background(), coordinatorClaims("CRD00001"), models.SubmitSuggestionRequest{
		SuggestionText: "rotate meeting chairs",
	})
	require.NoError(t, err)

	authorEmail := "coordinator@example.edu"
	repo.suggestions[suggestion.ID].AuthorEmail = &authorEmail

	approved, err := svc.Approve(context.Background(), adminClaims("ADM00001"), suggestion.ID, models.ReviewRequest{AdminComments: "good idea"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, "ADM00001", *approved.ProcessedBy)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSuggestionReview, audit.logs[0].Action)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "coordinator@example.edu")

	_, err = svc.Reject(context.Background(), adminClaims("ADM00001"), suggestion.ID, models.ReviewRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyProcessed.Code, appErrors.FromError(err).Code)
}

func TestSuggestionServiceReviewRequiresAdmin(t *testing.T) {
	svc := NewSuggestionService(newSuggestionRepoStub(), &auditStub{}, nil, nil, nil)

	_, err := svc.Approve(context.Background(), coordinatorClaims("CRD00001"), 1, models.ReviewRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSuggestionServiceHistoryAccess(t *testing.T) {
	repo := newSuggestionRepoStub()
	svc := NewSuggestionService(repo, &auditStub{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), coordinatorClaims("CRD00001"), models.SubmitSuggestionRequest{
		SuggestionText: "publish deadlines earlier",
	})
	require.NoError(t, err)

	own, err := svc.History(context.Background(), coordinatorClaims("CRD00001"), "CRD00001")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = svc.History(context.Background(), coordinatorClaims("CRD00002"), "CRD00001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSuggestionServiceReviewNotFound(t *testing.T) {
	svc := NewSuggestionService(newSuggestionRepoStub(), &auditStub{}, nil, nil, nil)

	_, err := svc.Approve(context.Background(), adminClaims("ADM00001"), 99, models.ReviewRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
