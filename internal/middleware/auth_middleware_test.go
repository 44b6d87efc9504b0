package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pms/internal/database"
	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/config"
	"pms/pkg/jwt"
	"pms/pkg/tokenstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authEnv struct {
	engine  *gin.Engine
	users   *services.UserService
	keys    *services.APIKeyService
	jwt     *jwt.JWTManager
	revoked *tokenstore.MemoryStore
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "auth.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	env := &authEnv{
		users:   services.NewUserService(db),
		keys:    services.NewAPIKeyService(db),
		jwt:     jwt.NewJWTManager("test-secret", time.Hour, 24*time.Hour),
		revoked: tokenstore.NewMemoryStore(),
	}
	auth := NewAuthMiddleware(env.users, env.keys, env.jwt, env.revoked)

	whoami := func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, identity)
	}
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", auth.RequireLogin(), whoami)
	r.GET("/stream", auth.RequireStreamLogin(), whoami)
	r.GET("/admin", auth.RequireLogin(), auth.RequireSuperuser(), whoami)
	env.engine = r
	return env
}

func (e *authEnv) do(t *testing.T, path string, header map[string]string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return w, nil
	}
	var identity Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	return w, &identity
}

func (e *authEnv) token(t *testing.T, superuser bool) (string, *models.User) {
	t.Helper()
	name := "operator"
	if superuser {
		name = "admin"
	}
	u, err := e.users.Create(context.Background(), name, name+"@example.com", "secret123", superuser)
	require.NoError(t, err)
	token, err := e.jwt.GenerateToken(u.ID, u.Username, u.IsSuperuser)
	require.NoError(t, err)
	return token, u
}

func TestRequireLoginRejectsMissingCredentials(t *testing.T) {
	env := newAuthEnv(t)

	w, _ := env.do(t, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, "/me", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, "/me", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, "/me", map[string]string{APIKeyHeader: "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginAcceptsAPIKey(t *testing.T) {
	env := newAuthEnv(t)
	key, err := env.keys.Create(context.Background(), "reporting")
	require.NoError(t, err)

	w, identity := env.do(t, "/me", map[string]string{APIKeyHeader: key.Key})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, IdentityAPIKey, identity.Kind)
	assert.Equal(t, key.ID, identity.APIKeyID)
	assert.False(t, identity.IsSuperuser)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	// 只有流接口接受查询参数
	w, _ = env.do(t, "/me?api_key="+key.Key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, identity = env.do(t, "/stream?api_key="+key.Key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, key.ID, identity.APIKeyID)

	require.NoError(t, env.keys.Revoke(context.Background(), key.ID))
	w, _ = env.do(t, "/me", map[string]string{APIKeyHeader: key.Key})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginAcceptsBearerToken(t *testing.T) {
	env := newAuthEnv(t)
	token, u := env.token(t, false)

	w, identity := env.do(t, "/me", map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, IdentityUser, identity.Kind)
	assert.Equal(t, u.ID, identity.UserID)
	assert.Equal(t, "operator", identity.Username)

	w, _ = env.do(t, "/stream?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	env := newAuthEnv(t)
	token, _ := env.token(t, false)

	claims, err := env.jwt.VerifyToken(token)
	require.NoError(t, err)
	require.NoError(t, env.revoked.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	w, _ := env.do(t, "/me", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSuperuser(t *testing.T) {
	env := newAuthEnv(t)
	userToken, _ := env.token(t, false)
	adminToken, _ := env.token(t, true)

	w, _ := env.do(t, "/admin", map[string]string{"Authorization": "Bearer " + userToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, identity := env.do(t, "/admin", map[string]string{"Authorization": "Bearer " + adminToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, identity.IsSuperuser)
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newAuthEnv(t)

	w, _ := env.do(t, "/me", map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
