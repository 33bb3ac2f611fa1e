package models

import "time"

// UserRole represents the available roles for access control.
type UserRole string

const (
	RoleCoordinator UserRole = "coordinator"
	RoleAdmin       UserRole = "admin"
)

// UserStatus marks whether an account can authenticate. Accounts are
// never hard-deleted; deactivation flips the status instead.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents a staff member stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	StaffID      string     `db:"staff_id" json:"staff_id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the user's given and family names for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Status   *UserStatus
	Page     int
	PageSize int
}

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	StaffID   string   `json:"staff_id" validate:"required,len=8"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      UserRole `json:"role" validate:"omitempty,oneof=coordinator admin"`
}

// UpdateUserRequest carries mutable profile fields. Role and status
// changes are accepted only from administrators.
type UpdateUserRequest struct {
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Phone     *string     `json:"phone"`
	Role      *UserRole   `json:"role" validate:"omitempty,oneof=coordinator admin"`
	Status    *UserStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}
