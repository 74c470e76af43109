package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/models/user_models"
	"github.com/snapcharge/backend/utils"
)

// AuthMiddleware validates the bearer access token and loads the account it
// belongs to. On success the context carries "user_id" (string) and
// "authenticated_user" (*user_models.User).
func AuthMiddleware(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "NO_TOKEN", "No authorization token provided.")
			return
		}
		if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "bearer ") {
			utils.AbortWithError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid authorization format.")
			return
		}

		claims, err := shared_models.ParseToken(authHeader[7:], "access")
		if err != nil {
			logger.WarnLogger.Warnf("Rejected access token: %v", err)
			utils.AbortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token.")
			return
		}

		user, err := user_models.GetUserByID(c.Request.Context(), db, claims.UserID)
		if err != nil {
			logger.ErrorLogger.Errorf("User %s from token not found: %v", claims.UserID, err)
			utils.AbortWithError(c, http.StatusUnauthorized, "USER_TOKEN_INVALID", "User associated with token not found.")
			return
		}

		c.Set("user_id", user.ID.String())
		c.Set("authenticated_user", user)
		c.Next()
	}
}

// RequireRole gates a route group to accounts with the given role. Must run
// after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("authenticated_user")
		if !exists {
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
			return
		}
		user, ok := value.(*user_models.User)
		if !ok || user.Role != role {
			utils.AbortWithError(c, http.StatusForbidden, "ACCESS_DENIED", "Insufficient role for this resource.")
			return
		}
		c.Next()
	}
}
