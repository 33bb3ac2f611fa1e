package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type courseRepoStub struct {
	courses     map[int64]*models.CourseWithCoordinator
	nextID      int64
	searchCalls int
	listCalls   int
}

func newCourseRepoStub() *courseRepoStub {
	return &courseRepoStub{courses: make(map[int64]*models.CourseWithCoordinator), nextID: 1}
}

func (s *courseRepoStub) List(ctx context.Context) ([]models.CourseWithCoordinator, error) {
	s.listCalls++
	var result []models.CourseWithCoordinator
	for _, c := range s.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (s *courseRepoStub) GetByID(ctx context.Context, id int64) (*models.CourseWithCoordinator, error) {
	if c, ok := s.courses[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) FindByCode(ctx context.Context, code string) (*models.CourseWithCoordinator, error) {
	for _, c := range s.courses {
		if c.CourseCode == code {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) Search(ctx context.Context, term string) ([]models.CourseWithCoordinator, error) {
	s.searchCalls++
	var result []models.CourseWithCoordinator
	for _, c := range s.courses {
		if c.CourseCode == term || c.CourseName == term {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (s *courseRepoStub) ListByCoordinator(ctx context.Context, staffID string) ([]models.Course, error) {
	var result []models.Course
	for _, c := range s.courses {
		if c.CoordinatorID != nil && *c.CoordinatorID == staffID {
			result = append(result, c.Course)
		}
	}
	return result, nil
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = s.nextID
	s.nextID++
	s.courses[course.ID] = &models.CourseWithCoordinator{Course: *course}
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	if _, ok := s.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	s.courses[course.ID] = &models.CourseWithCoordinator{Course: *course}
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := s.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.courses, id)
	return nil
}

// memoryCache is a map-backed stand-in for the Redis cache service.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestCourseServiceSearchUsesCache(t *testing.T) {
	repo := newCourseRepoStub()
	cache := newMemoryCache()
	svc := NewCourseService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateCourseRequest{
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
	})
	require.NoError(t, err)

	first, err := svc.Search(context.Background(), "CS101")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Search(context.Background(), "CS101")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.searchCalls, "second lookup must be served from cache")
}

func TestCourseServiceMutationsInvalidateCache(t *testing.T) {
	repo := newCourseRepoStub()
	cache := newMemoryCache()
	svc := NewCourseService(repo, cache, time.Minute, nil, nil)

	course, err := svc.Create(context.Background(), models.CreateCourseRequest{
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
	})
	require.NoError(t, err)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	name := "Foundations of Computing"
	_, err = svc.Update(context.Background(), course.ID, models.UpdateCourseRequest{CourseName: &name})
	require.NoError(t, err)
	assert.Empty(t, cache.entries, "updates must invalidate cached listings")

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, name, listed[0].CourseName)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	svc := NewCourseService(newCourseRepoStub(), nil, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateCourseRequest{
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), models.CreateCourseRequest{
		CourseCode: "CS101",
		CourseName: "Different Name",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetAndDelete(t *testing.T) {
	svc := NewCourseService(newCourseRepoStub(), nil, time.Minute, nil, nil)

	course, err := svc.Create(context.Background(), models.CreateCourseRequest{
		CourseCode:    "CS101",
		CourseName:    "Intro to Computing",
		CoordinatorID: "CRD00001",
	})
	require.NoError(t, err)

	found, err := svc.Get(context.Background(), course.ID)
	require.NoError(t, err)
	require.NotNil(t, found.CoordinatorID)
	assert.Equal(t, "CRD00001", *found.CoordinatorID)

	assigned, err := svc.ListByCoordinator(context.Background(), "CRD00001")
	require.NoError(t, err)
	assert.Len(t, assigned, 1)

	require.NoError(t, svc.Delete(context.Background(), course.ID))

	_, err = svc.Get(context.Background(), course.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), course.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
