package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
	"github.com/campushq/coordination-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListCoordinators(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, claims *models.JWTClaims, staffID string) (*models.User, error)
	Create(ctx context.Context, claims *models.JWTClaims, req models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, claims *models.JWTClaims, staffID string, req models.UpdateUserRequest) (*models.User, error)
	Deactivate(ctx context.Context, claims *models.JWTClaims, staffID string) error
	Promote(ctx context.Context, claims *models.JWTClaims, staffID string) (*models.User, error)
}

// UserHandler exposes account management endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List accounts
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := models.UserStatus(raw)
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, users)
}

// Coordinators godoc
// @Summary List the public coordinator directory
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /coordinators [get]
func (h *UserHandler) Coordinators(c *gin.Context) {
	coordinators, err := h.service.ListCoordinators(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(coordinators), coordinators)
}

// Get godoc
// @Summary Fetch a single account
// @Tags Users
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{staff_id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("staff_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Create godoc
// @Summary Provision an account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user payload"))
		return
	}
	user, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "user created", user)
}

// Update godoc
// @Summary Update an account
// @Tags Users
// @Accept json
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Param payload body models.UpdateUserRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{staff_id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("staff_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "user updated", user)
}

// Deactivate godoc
// @Summary Deactivate an account
// @Tags Users
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{staff_id} [delete]
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), claimsFromContext(c), c.Param("staff_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "user deactivated", nil)
}

// Promote godoc
// @Summary Grant an account the administrator role
// @Tags Users
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{staff_id}/promote [post]
func (h *UserHandler) Promote(c *gin.Context) {
	user, err := h.service.Promote(c.Request.Context(), claimsFromContext(c), c.Param("staff_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "user promoted", user)
}
