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

type courseService interface {
	List(ctx context.Context) ([]models.CourseWithCoordinator, error)
	Search(ctx context.Context, term string) ([]models.CourseWithCoordinator, error)
	Get(ctx context.Context, id int64) (*models.CourseWithCoordinator, error)
	ListByCoordinator(ctx context.Context, staffID string) ([]models.Course, error)
	Create(ctx context.Context, req models.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id int64, req models.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// CourseHandler exposes the course directory endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary List the course directory
// @Tags Courses
// @Produce json
// @Param q query string false "Search by course code or name"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var (
		courses []models.CourseWithCoordinator
		err     error
	)
	if term := c.Query("q"); term != "" {
		courses, err = h.service.Search(c.Request.Context(), term)
	} else {
		courses, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(courses), courses)
}

// Get godoc
// @Summary Fetch a course with its coordinator
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course ID must be numeric"))
		return
	}
	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// ByCoordinator godoc
// @Summary List courses assigned to a coordinator
// @Tags Courses
// @Produce json
// @Param staff_id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /coordinators/{staff_id}/courses [get]
func (h *CourseHandler) ByCoordinator(c *gin.Context) {
	courses, err := h.service.ListByCoordinator(c.Request.Context(), c.Param("staff_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, len(courses), courses)
}

// Create godoc
// @Summary Add a course to the directory
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "course created", course)
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course ID must be numeric"))
		return
	}
	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "course updated", course)
}

// Delete godoc
// @Summary Remove a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course ID must be numeric"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "course deleted", nil)
}
