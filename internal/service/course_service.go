package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

const (
	courseCacheKeyAll       = "courses:all"
	courseCacheKeySearch    = "courses:search:"
	courseCacheInvalidation = "courses:*"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.CourseWithCoordinator, error)
	GetByID(ctx context.Context, id int64) (*models.CourseWithCoordinator, error)
	FindByCode(ctx context.Context, code string) (*models.CourseWithCoordinator, error)
	Search(ctx context.Context, term string) ([]models.CourseWithCoordinator, error)
	ListByCoordinator(ctx context.Context, staffID string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseCache is the read-through cache used by the public directory.
// A nil value disables caching entirely.
type CourseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CourseService serves the public course directory and its admin
// maintenance operations.
type CourseService struct {
	repo      courseRepository
	cache     CourseCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, cache CourseCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns every course with its coordinator, cache-first.
func (s *CourseService) List(ctx context.Context) ([]models.CourseWithCoordinator, error) {
	var cached []models.CourseWithCoordinator
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, courseCacheKeyAll, &cached); hit {
			return cached, nil
		}
	}

	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courseCacheKeyAll, courses, s.cacheTTL); err != nil {
			s.logger.Debug("course list not cached", zap.Error(err))
		}
	}
	return courses, nil
}

// Search filters the directory by course code or name. An empty term
// falls back to the full listing.
func (s *CourseService) Search(ctx context.Context, term string) ([]models.CourseWithCoordinator, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}

	key := courseCacheKeySearch + strings.ToLower(term)
	var cached []models.CourseWithCoordinator
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	courses, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, courses, s.cacheTTL); err != nil {
			s.logger.Debug("course search not cached", zap.Error(err))
		}
	}
	return courses, nil
}

// Get loads a single course with its coordinator.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseWithCoordinator, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListByCoordinator returns the courses a coordinator is assigned to.
func (s *CourseService) ListByCoordinator(ctx context.Context, staffID string) ([]models.Course, error) {
	courses, err := s.repo.ListByCoordinator(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned courses")
	}
	return courses, nil
}

// Create adds a course to the directory.
func (s *CourseService) Create(ctx context.Context, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if _, err := s.repo.FindByCode(ctx, req.CourseCode); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}

	course := &models.Course{
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
	}
	if req.Major != "" {
		course.Major = &req.Major
	}
	if req.CoordinatorID != "" {
		course.CoordinatorID = &req.CoordinatorID
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidate(ctx)
	return course, nil
}

// Update applies directory changes to a course.
func (s *CourseService) Update(ctx context.Context, id int64, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	course := existing.Course
	if req.CourseName != nil {
		course.CourseName = *req.CourseName
	}
	if req.Major != nil {
		course.Major = req.Major
	}
	if req.CoordinatorID != nil {
		if *req.CoordinatorID == "" {
			course.CoordinatorID = nil
		} else {
			course.CoordinatorID = req.CoordinatorID
		}
	}
	course.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidate(ctx)
	return &course, nil
}

// Delete removes a course from the directory.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, courseCacheInvalidation); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.Error(err))
	}
}
