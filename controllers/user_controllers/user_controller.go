package user_controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/models/user_models"
	"github.com/snapcharge/backend/utils"
)

// UserController handles account registration, sessions and profiles.
type UserController struct {
	db  *pgxpool.Pool
	rdb *redislib.Client
}

// NewUserController creates a UserController with its dependencies.
func NewUserController(db *pgxpool.Pool, rdb *redislib.Client) *UserController {
	return &UserController{db: db, rdb: rdb}
}

// Register creates a driver or host account.
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Username    string  `json:"username" binding:"required,min=3,max=50"`
		Email       string  `json:"email" binding:"required,email"`
		Password    string  `json:"password" binding:"required,min=8"`
		Role        string  `json:"role" binding:"required"`
		PhoneNumber *string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != shared_models.RoleDriver && role != shared_models.RoleHost {
		utils.AbortWithError(c, http.StatusBadRequest, "INVALID_ROLE", "Role must be driver or host.")
		return
	}

	user, err := user_models.CreateUser(c.Request.Context(), uc.db, req.Username, req.Email, req.Password, role, req.PhoneNumber)
	if err != nil {
		logger.ErrorLogger.Errorf("Registration failed for %s: %v", req.Email, err)
		utils.AbortWithError(c, http.StatusConflict, "REGISTRATION_FAILED", "Could not register with the given details.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login authenticates an account and returns token pair plus profile.
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, accessToken, refreshToken, err := user_models.LoginUser(c.Request.Context(), uc.db, uc.rdb, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user_models.ErrInvalidCredentials) {
			utils.AbortWithError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.")
			return
		}
		logger.ErrorLogger.Errorf("Login failed for %s: %v", req.Email, err)
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Login failed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout revokes the caller's refresh token.
func (uc *UserController) Logout(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return
	}
	if err := user_models.LogoutUser(c.Request.Context(), uc.rdb, userID); err != nil {
		logger.ErrorLogger.Errorf("Logout failed for user %s: %v", userID, err)
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Logout failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

// GetMyProfile returns the authenticated account.
func (uc *UserController) GetMyProfile(c *gin.Context) {
	value, exists := c.Get("authenticated_user")
	if !exists {
		utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": value})
}

// UpdateProfile applies a sparse patch to the caller's profile.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return
	}

	var patch user_models.ProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if patch.Username == nil && patch.PhoneNumber == nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "At least one field is required.")
		return
	}

	user, err := user_models.UpdateProfile(c.Request.Context(), uc.db, userID, patch)
	if err != nil {
		logger.ErrorLogger.Errorf("Profile update failed for user %s: %v", userID, err)
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to update profile.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
