package service

import (
	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

// ensureSelfOrAdmin allows a user to act on their own records while
// administrators may act on anyone's.
func ensureSelfOrAdmin(claims *models.JWTClaims, staffID string) error {
	if claims == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication context")
	}
	if claims.IsAdmin() || claims.StaffID == staffID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "access restricted to the record owner or an administrator")
}
