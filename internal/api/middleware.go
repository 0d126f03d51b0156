package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// UserGetter resolves the authenticated user.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Authenticated validates the bearer token and then makes sure the account it
// was issued for still exists. Tokens of deleted users are rejected with 401.
func Authenticated(jwtManager *auth.JWTManager, users UserGetter) gin.HandlerFunc {
	verifyToken := auth.AuthRequired(jwtManager)
	return func(c *gin.Context) {
		verifyToken(c)
		if c.IsAborted() {
			return
		}

		if _, err := users.GetByID(c.Request.Context(), auth.GetUserID(c)); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}
	}
}
