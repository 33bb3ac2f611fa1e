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

type leaveService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveRequest) (*models.LeaveRequest, error)
	ListPending(ctx context.Context) ([]models.LeaveRequestWithParties, error)
	Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.LeaveRequestWithParties, error)
	History(ctx context.Context, claims *models.JWTClaims, coordinatorID string) ([]models.LeaveRequest, error)
	Approve(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error)
	Reject(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error)
	SubmitStatement(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveStatementRequest) (*models.LeaveStatement, error)
	ListStatements(ctx context.Context, claims *models.JWTClaims, leaveRequestID int64) ([]models.LeaveStatementWithAuthor, error)
	ExportHistory(ctx context.Context, claims *models.JWTClaims, coordinatorID, format string) ([]byte, string, string, error)
}

// LeaveHandler exposes the leave request lifecycle endpoints.
type LeaveHandler struct {
	service leaveService
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(service leaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

func leaveRequestID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "leave request ID must be numeric")
	}
	return id, nil
}

// Submit godoc
// @Summary Submit a leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body models.SubmitLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	var req models.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid leave request payload"))
		return
	}
	leave, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "leave request submitted", leave)
}

// ListPending godoc
// @Summary List pending leave requests for review
// @Tags Leave
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/pending [get]
func (h *LeaveHandler) ListPending(c *gin.Context) {
	requests, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(requests), requests)
}

// Get godoc
// @Summary Fetch a leave request
// @Tags Leave
// @Produce json
// @Param id path int true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/{id} [get]
func (h *LeaveHandler) Get(c *gin.Context) {
	id, err := leaveRequestID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	leave, err := h.service.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, leave)
}

// History godoc
// @Summary List a coordinator's leave history
// @Tags Leave
// @Produce json
// @Param staff_id path string true "Coordinator staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/history/{staff_id} [get]
func (h *LeaveHandler) History(c *gin.Context) {
	requests, err := h.service.History(c.Request.Context(), claimsFromContext(c), c.Param("staff_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(requests), requests)
}

// Approve godoc
// @Summary Approve a pending leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body models.ReviewRequest false "Review comments"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/{id}/approve [put]
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a pending leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body models.ReviewRequest false "Review comments"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/{id}/reject [put]
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

func (h *LeaveHandler) review(c *gin.Context, decide func(context.Context, *models.JWTClaims, int64, models.ReviewRequest) (*models.LeaveRequestWithParties, error)) {
	id, err := leaveRequestID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}
	leave, err := decide(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("leave request %s", leave.Status), leave)
}

// SubmitStatement godoc
// @Summary Attach a statement to a leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body models.SubmitLeaveStatementRequest true "Statement payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/{id}/statements [post]
func (h *LeaveHandler) SubmitStatement(c *gin.Context) {
	id, err := leaveRequestID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.SubmitLeaveStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid statement payload"))
		return
	}
	req.LeaveRequestID = id
	stmt, err := h.service.SubmitStatement(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "statement recorded", stmt)
}

// ListStatements godoc
// @Summary List statements on a leave request
// @Tags Leave
// @Produce json
// @Param id path int true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /leave-requests/{id}/statements [get]
func (h *LeaveHandler) ListStatements(c *gin.Context) {
	id, err := leaveRequestID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	statements, err := h.service.ListStatements(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(statements), statements)
}

// ExportHistory godoc
// @Summary Export a coordinator's leave history
// @Tags Leave
// @Produce text/csv
// @Produce application/pdf
// @Param staff_id path string true "Coordinator staff ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /leave-requests/history/{staff_id}/export [get]
func (h *LeaveHandler) ExportHistory(c *gin.Context) {
	payload, contentType, filename, err := h.service.ExportHistory(
		c.Request.Context(), claimsFromContext(c), c.Param("staff_id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
