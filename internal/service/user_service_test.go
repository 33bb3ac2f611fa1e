package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
	logs  []*models.AuditLog
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]*models.User)}
	for _, u := range users {
		stub.users[u.StaffID] = u
	}
	return stub
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByStaffID(ctx context.Context, staffID string) (*models.User, error) {
	if u, ok := s.users[staffID]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.users[user.StaffID] = user
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.StaffID]; !ok {
		return sql.ErrNoRows
	}
	s.users[user.StaffID] = user
	return nil
}

func (s *userRepoStub) UpdateRole(ctx context.Context, staffID string, role models.UserRole) error {
	user, ok := s.users[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	user.Role = role
	return nil
}

func (s *userRepoStub) Deactivate(ctx context.Context, staffID string) error {
	user, ok := s.users[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	user.Status = models.UserStatusInactive
	return nil
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var result []models.User
	for _, u := range s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		result = append(result, *u)
	}
	return result, len(result), nil
}

func (s *userRepoStub) ListCoordinators(ctx context.Context) ([]models.User, error) {
	var result []models.User
	for _, u := range s.users {
		if u.Role == models.RoleCoordinator && u.Status == models.UserStatusActive {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func staffUser(staffID, email string, role models.UserRole) *models.User {
	return &models.User{
		ID:      "user-" + staffID,
		StaffID: staffID,
		Email:   email,
		Role:    role,
		Status:  models.UserStatusActive,
	}
}

func TestUserServiceCreate(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil, nil)

	user, err := svc.Create(context.Background(), adminClaims("ADM00001"), models.CreateUserRequest{
		StaffID:   "CRD00009",
		FirstName: "Lena",
		LastName:  "Vargas",
		Email:     "lena@example.edu",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, user.Role, "role defaults to coordinator")
	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.logs[0].Action)

	_, err = svc.Create(context.Background(), adminClaims("ADM00001"), models.CreateUserRequest{
		StaffID:   "CRD00010",
		FirstName: "Lena",
		LastName:  "Vargas",
		Email:     "lena@example.edu",
		Password:  "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestUserServiceGetSelfOrAdmin(t *testing.T) {
	repo := newUserRepoStub(staffUser("CRD00001", "a@example.edu", models.RoleCoordinator))
	svc := NewUserService(repo, nil, nil, nil)

	_, err := svc.Get(context.Background(), coordinatorClaims("CRD00001"), "CRD00001")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), adminClaims("ADM00001"), "CRD00001")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), coordinatorClaims("CRD00002"), "CRD00001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateRoleRequiresAdmin(t *testing.T) {
	repo := newUserRepoStub(staffUser("CRD00001", "a@example.edu", models.RoleCoordinator))
	svc := NewUserService(repo, nil, nil, nil)

	role := models.RoleAdmin
	_, err := svc.Update(context.Background(), coordinatorClaims("CRD00001"), "CRD00001", models.UpdateUserRequest{
		Role: &role,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(context.Background(), adminClaims("ADM00001"), "CRD00001", models.UpdateUserRequest{
		Role: &role,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUserServiceDeactivate(t *testing.T) {
	repo := newUserRepoStub(
		staffUser("CRD00001", "a@example.edu", models.RoleCoordinator),
		staffUser("ADM00001", "admin@example.edu", models.RoleAdmin),
	)
	svc := NewUserService(repo, nil, nil, nil)

	err := svc.Deactivate(context.Background(), coordinatorClaims("CRD00002"), "CRD00001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.Deactivate(context.Background(), adminClaims("ADM00001"), "ADM00001")
	require.Error(t, err, "admins cannot deactivate themselves")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Deactivate(context.Background(), adminClaims("ADM00001"), "CRD00001"))
	assert.Equal(t, models.UserStatusInactive, repo.users["CRD00001"].Status)

	// Deactivated coordinators drop out of the public directory.
	coordinators, err := svc.ListCoordinators(context.Background())
	require.NoError(t, err)
	assert.Empty(t, coordinators)
}

func TestUserServicePromote(t *testing.T) {
	repo := newUserRepoStub(staffUser("CRD00001", "a@example.edu", models.RoleCoordinator))
	notifier := &notifierStub{}
	svc := NewUserService(repo, notifier, nil, nil)

	promoted, err := svc.Promote(context.Background(), adminClaims("ADM00001"), "CRD00001")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "a@example.edu")
	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.AuditActionRolePromotion, repo.logs[0].Action)

	_, err = svc.Promote(context.Background(), adminClaims("ADM00001"), "CRD00001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
