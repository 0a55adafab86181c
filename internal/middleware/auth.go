package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// AuthMiddleware validates the bearer token and stores its claims on the
// context. Tokens whose jti has been revoked by logout are rejected.
func AuthMiddleware(secret string, revoker auth.Revoker, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(secret, revoker, logger, false)
}

// WebsocketAuth is AuthMiddleware for websocket handshakes. Browsers cannot
// set headers there, so a "token" query parameter is accepted when the
// header is absent. Use it only on upgrade routes.
func WebsocketAuth(secret string, revoker auth.Revoker, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(secret, revoker, logger, true)
}

func authenticate(secret string, revoker auth.Revoker, logger *zap.Logger, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c, allowQuery)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed authorization, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Error("failed to check token revocation", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "could not verify token",
			})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token has been revoked",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("token"); allowQuery && t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAdmin rejects non-admin callers. It must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin role required",
			})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetRole(c *gin.Context) models.Role {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	role, ok := val.(models.Role)
	if !ok {
		return ""
	}
	return role
}

func GetClaims(c *gin.Context) *auth.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := val.(*auth.Claims)
	return claims
}

// GetActor builds the service actor for this request. It is the zero
// Actor on unauthenticated routes.
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{UserID: GetUserID(c), Role: GetRole(c)}
}
