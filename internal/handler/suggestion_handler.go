package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
	"github.com/campushq/coordination-api/pkg/response"
)

type suggestionService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitSuggestionRequest) (*models.Suggestion, error)
	Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.SuggestionWithAuthor, error)
	ListAll(ctx context.Context) ([]models.SuggestionWithAuthor, error)
	History(ctx context.Context, claims *models.JWTClaims, coordinatorID string) ([]models.SuggestionWithAuthor, error)
	Approve(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.SuggestionWithAuthor, error)
	Reject(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.SuggestionWithAuthor, error)
}

// SuggestionHandler exposes the suggestion lifecycle endpoints.
type SuggestionHandler struct {
	service suggestionService
}

// NewSuggestionHandler constructs the handler.
func NewSuggestionHandler(service suggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// Submit godoc
// @Summary Submit a suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body models.SubmitSuggestionRequest true "Suggestion payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions [post]
func (h *SuggestionHandler) Submit(c *gin.Context) {
	var req models.SubmitSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid suggestion payload"))
		return
	}
	suggestion, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "suggestion submitted", suggestion)
}

// List godoc
// @Summary List all suggestions
// @Tags Suggestions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions [get]
func (h *SuggestionHandler) List(c *gin.Context) {
	suggestions, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(suggestions), suggestions)
}

// Get godoc
// @Summary Fetch a suggestion
// @Tags Suggestions
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions/{id} [get]
func (h *SuggestionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "suggestion ID must be numeric"))
		return
	}
	suggestion, err := h.service.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, suggestion)
}

// History godoc
// @Summary List a coordinator's suggestions
// @Tags Suggestions
// @Produce json
// @Param staff_id path string true "Coordinator staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions/history/{staff_id} [get]
func (h *SuggestionHandler) History(c *gin.Context) {
	suggestions, err := h.service.History(c.Request.Context(), claimsFromContext(c), c.Param("staff_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(suggestions), suggestions)
}

// Approve godoc
// @Summary Approve a pending suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param payload body models.ReviewRequest false "Review comments"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions/{id}/approve [put]
func (h *SuggestionHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a pending suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param payload body models.ReviewRequest false "Review comments"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /suggestions/{id}/reject [put]
func (h *SuggestionHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *SuggestionHandler) review(c *gin.Context, decide func(context.Context, *models.JWTClaims, int64, models.ReviewRequest) (*models.SuggestionWithAuthor, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "suggestion ID must be numeric"))
		return
	}
	var req models.ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}
	suggestion, err := decide(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("suggestion %s", suggestion.Status), suggestion)
}
