package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushq/coordination-api/internal/middleware"
	"github.com/campushq/coordination-api/internal/models"
)

// claimsFromContext extracts the authenticated claims set by the JWT
// middleware, or nil when the route is unauthenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
