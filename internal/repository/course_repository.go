package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/coordination-api/internal/models"
)

const courseJoinColumns = `c.id, c.course_code, c.course_name, c.major, c.coordinator_id, c.created_at, c.updated_at,
	u.first_name || ' ' || u.last_name AS coordinator_name, u.email AS coordinator_email`

// CourseRepository persists the course directory.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns every course joined with coordinator identity, ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseWithCoordinator, error) {
	query := `SELECT ` + courseJoinColumns + `
	FROM courses c LEFT JOIN users u ON u.staff_id = c.coordinator_id
	ORDER BY c.course_code ASC`
	var courses []models.CourseWithCoordinator
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetByID fetches a course by identifier.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.CourseWithCoordinator, error) {
	query := `SELECT ` + courseJoinColumns + `
	FROM courses c LEFT JOIN users u ON u.staff_id = c.coordinator_id
	WHERE c.id = $1`
	var course models.CourseWithCoordinator
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode fetches a course by its unique course code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.CourseWithCoordinator, error) {
	query := `SELECT ` + courseJoinColumns + `
	FROM courses c LEFT JOIN users u ON u.staff_id = c.coordinator_id
	WHERE c.course_code = $1`
	var course models.CourseWithCoordinator
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// Search matches courses by code or name substring, case-insensitive.
func (r *CourseRepository) Search(ctx context.Context, term string) ([]models.CourseWithCoordinator, error) {
	query := `SELECT ` + courseJoinColumns + `
	FROM courses c LEFT JOIN users u ON u.staff_id = c.coordinator_id
	WHERE LOWER(c.course_code) LIKE $1 OR LOWER(c.course_name) LIKE $1
	ORDER BY c.course_code ASC`
	pattern := "%" + strings.ToLower(term) + "%"
	var courses []models.CourseWithCoordinator
	if err := r.db.SelectContext(ctx, &courses, query, pattern); err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return courses, nil
}

// ListByCoordinator returns the courses assigned to a coordinator.
func (r *CourseRepository) ListByCoordinator(ctx context.Context, staffID string) ([]models.Course, error) {
	const query = `SELECT id, course_code, course_name, major, coordinator_id, created_at, updated_at
	FROM courses WHERE coordinator_id = $1 ORDER BY course_code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, staffID); err != nil {
		return nil, fmt.Errorf("list courses by coordinator: %w", err)
	}
	return courses, nil
}

// Create inserts a new course row.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_code, course_name, major, coordinator_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, course.CourseCode, course.CourseName, course.Major, course.CoordinatorID)
	if err := row.Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET course_name = $2, major = $3, coordinator_id = $4, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, course.ID, course.CourseName, course.Major, course.CoordinatorID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course from the directory.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
