package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(revoker auth.Revoker) *gin.Engine {
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(secret, revoker, zap.NewNop()))
	authed.GET("/me", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/ws", WebsocketAuth(secret, revoker, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func token(t *testing.T, role models.Role) (string, *auth.Claims) {
	t.Helper()
	tok, claims, err := auth.GenerateToken(&models.User{ID: uuid.New(), Email: "x@kos.test", Role: role}, secret, time.Hour)
	require.NoError(t, err)
	return tok, claims
}

func do(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(auth.NewMemoryRevoker())
	tok, _ := token(t, models.RoleTenant)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Token "+tok).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer garbage").Code)

	w := do(r, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"tenant"`)

	// Tokens in the URL are only taken on the websocket route.
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me?token="+tok, "").Code)
}

func TestWebsocketAuth_QueryToken(t *testing.T) {
	revoker := auth.NewMemoryRevoker()
	r := newRouter(revoker)
	tok, claims := token(t, models.RoleAdmin)

	assert.Equal(t, http.StatusNoContent, do(r, "/ws?token="+tok, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/ws", "Bearer "+tok).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ws", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ws?token=garbage", "").Code)

	require.NoError(t, revoker.Revoke(context.Background(), claims.ID, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ws?token="+tok, "").Code)
}

func TestAuthMiddleware_Revoked(t *testing.T) {
	revoker := auth.NewMemoryRevoker()
	r := newRouter(revoker)
	tok, claims := token(t, models.RoleAdmin)

	assert.Equal(t, http.StatusOK, do(r, "/me", "Bearer "+tok).Code)

	require.NoError(t, revoker.Revoke(context.Background(), claims.ID, time.Hour))
	w := do(r, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(auth.NewMemoryRevoker())

	tenantTok, _ := token(t, models.RoleTenant)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+tenantTok).Code)

	adminTok, _ := token(t, models.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+adminTok).Code)
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestID(logger), AccessLog(logger))
	r.GET("/ping", func(c *gin.Context) {
		Logger(c, zap.NewNop()).Info("handled")
		c.Status(http.StatusOK)
	})

	w := do(r, "/ping", "")
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	handled := logs.FilterMessage("handled").All()
	require.Len(t, handled, 2)
	assert.Equal(t, generated, handled[0].ContextMap()["request_id"])
	assert.Equal(t, "abc-123", handled[1].ContextMap()["request_id"])

	access := logs.FilterMessage("request").All()
	require.Len(t, access, 2)
	assert.Equal(t, int64(http.StatusOK), access[0].ContextMap()["status"])
}
