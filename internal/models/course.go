package models

import "time"

// Course represents a unit in the course directory. The coordinator
// reference is by staff ID and may dangle when the user is removed.
type Course struct {
	ID            int64     `db:"id" json:"id"`
	CourseCode    string    `db:"course_code" json:"course_code"`
	CourseName    string    `db:"course_name" json:"course_name"`
	Major         *string   `db:"major" json:"major,omitempty"`
	CoordinatorID *string   `db:"coordinator_id" json:"coordinator_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CourseWithCoordinator joins the course with its coordinator's identity
// for directory listings.
type CourseWithCoordinator struct {
	Course
	CoordinatorName  *string `db:"coordinator_name" json:"coordinator_name,omitempty"`
	CoordinatorEmail *string `db:"coordinator_email" json:"coordinator_email,omitempty"`
}

// CreateCourseRequest is the admin payload for adding a course.
type CreateCourseRequest struct {
	CourseCode    string `json:"course_code" validate:"required,max=20"`
	CourseName    string `json:"course_name" validate:"required,max=100"`
	Major         string `json:"major" validate:"omitempty,max=100"`
	CoordinatorID string `json:"coordinator_id" validate:"omitempty,len=8"`
}

// UpdateCourseRequest carries mutable course fields.
type UpdateCourseRequest struct {
	CourseName    *string `json:"course_name" validate:"omitempty,max=100"`
	Major         *string `json:"major" validate:"omitempty,max=100"`
	CoordinatorID *string `json:"coordinator_id" validate:"omitempty,len=8"`
}
