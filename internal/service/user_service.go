package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByStaffID(ctx context.Context, staffID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, staffID string, role models.UserRole) error
	Deactivate(ctx context.Context, staffID string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListCoordinators(ctx context.Context) ([]models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type userNotifier interface {
	Dispatch(to, subject, message string)
}

// UserService manages staff accounts and the coordinator directory.
type UserService struct {
	repo      userRepository
	notifier  userNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, notifier userNotifier, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// List returns accounts matching the filter with the total count.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// ListCoordinators returns the active coordinator directory.
func (s *UserService) ListCoordinators(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListCoordinators(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coordinators")
	}
	return users, nil
}

// Get loads a single account. Coordinators may only read their own.
func (s *UserService) Get(ctx context.Context, claims *models.JWTClaims, staffID string) (*models.User, error) {
	if err := ensureSelfOrAdmin(claims, staffID); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create provisions an account on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	if _, err := s.repo.FindByStaffID(ctx, req.StaffID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff ID is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff ID")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCoordinator
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		StaffID:      req.StaffID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(ctx, claims, models.AuditActionUserCreate, user.StaffID, []byte(fmt.Sprintf(`{"role":%q}`, user.Role)))

	return user, nil
}

// Update applies profile changes. Role and status changes require an
// administrator.
func (s *UserService) Update(ctx context.Context, claims *models.JWTClaims, staffID string, req models.UpdateUserRequest) (*models.User, error) {
	if err := ensureSelfOrAdmin(claims, staffID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if (req.Role != nil || req.Status != nil) && !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role and status changes require an administrator")
	}

	user, err := s.repo.FindByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "email is already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.audit(ctx, claims, models.AuditActionUserUpdate, user.StaffID, nil)

	return user, nil
}

// Deactivate disables an account. The row is kept so leave history and
// suggestions stay attributable.
func (s *UserService) Deactivate(ctx context.Context, claims *models.JWTClaims, staffID string) error {
	if claims == nil || !claims.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can deactivate accounts")
	}
	if claims.StaffID == staffID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate own account")
	}

	if err := s.repo.Deactivate(ctx, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}

	s.audit(ctx, claims, models.AuditActionUserDeactivate, staffID, nil)

	return nil
}

// Promote grants a coordinator the administrator role and notifies them.
func (s *UserService) Promote(ctx context.Context, claims *models.JWTClaims, staffID string) (*models.User, error) {
	if claims == nil || !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can promote accounts")
	}

	user, err := s.repo.FindByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already an administrator")
	}

	if err := s.repo.UpdateRole(ctx, staffID, models.RoleAdmin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	user.Role = models.RoleAdmin
	user.UpdatedAt = time.Now().UTC()

	s.audit(ctx, claims, models.AuditActionRolePromotion, staffID, []byte(`{"role":"admin"}`))

	if s.notifier != nil {
		s.notifier.Dispatch(user.Email, "Administrator access granted",
			fmt.Sprintf("Hello %s, your account has been granted administrator access.", user.FullName()))
	}

	return user, nil
}

func (s *UserService) audit(ctx context.Context, claims *models.JWTClaims, action, resourceID string, newValues []byte) {
	log := &models.AuditLog{
		Action:     action,
		Resource:   "users",
		ResourceID: &resourceID,
		NewValues:  newValues,
	}
	if claims != nil {
		log.UserID = &claims.UserID
	}
	if err := s.repo.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
