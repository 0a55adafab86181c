package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/repository"
	"go.uber.org/zap"
)

// AuthHandler issues and revokes tokens. Admin accounts come from kosctl
// create-admin or the ADMIN_* settings; tenants are created at check-in.
type AuthHandler struct {
	userRepo  repository.UserRepository
	revoker   auth.Revoker
	jwtSecret string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(
	userRepo repository.UserRepository,
	revoker auth.Revoker,
	jwtSecret string,
	ttl time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		logger:    logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger := middleware.Logger(c, h.logger)
	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		logger.Error("failed to find user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// Same answer for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, claims, err := auth.GenerateToken(user, h.jwtSecret, h.ttl)
	if err != nil {
		logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	logger.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	c.JSON(http.StatusOK, authResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user})
}

// Logout handles POST /v1/auth/logout. The presented token stays revoked
// until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.Remaining(time.Now())); err != nil {
		middleware.Logger(c, h.logger).Error("failed to revoke token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
