package middleware

import (
	"context"
	"strings"
	"time"

	"pms/internal/services"
	apperrors "pms/pkg/errors"
	"pms/pkg/jwt"
	"pms/pkg/logger"
	"pms/pkg/response"
	"pms/pkg/tokenstore"

	"github.com/gin-gonic/gin"
)

const (
	APIKeyHeader = "X-API-Key"
	identityKey  = "identity"
)

// 认证方式
const (
	IdentityUser   = "user"
	IdentityAPIKey = "api_key"
)

// Identity 已认证的调用方
type Identity struct {
	Kind        string    `json:"kind"`
	UserID      uint      `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	IsSuperuser bool      `json:"is_superuser"`
	APIKeyID    uint      `json:"api_key_id,omitempty"`
	APIKeyName  string    `json:"api_key_name,omitempty"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"-"`
}

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	userService   *services.UserService
	apiKeyService *services.APIKeyService
	jwtManager    *jwt.JWTManager
	revoked       tokenstore.Store
}

func NewAuthMiddleware(userService *services.UserService, apiKeyService *services.APIKeyService, jwtManager *jwt.JWTManager, revoked tokenstore.Store) *AuthMiddleware {
	return &AuthMiddleware{
		userService:   userService,
		apiKeyService: apiKeyService,
		jwtManager:    jwtManager,
		revoked:       revoked,
	}
}

// RequireLogin 要求 Bearer 令牌或 API 密钥
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return m.require(false)
}

// RequireStreamLogin 与 RequireLogin 相同，另外接受 ?token= 和 ?api_key=（浏览器WebSocket无法设置请求头）
func (m *AuthMiddleware) RequireStreamLogin() gin.HandlerFunc {
	return m.require(true)
}

func (m *AuthMiddleware) require(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer, apiKey, err := extractCredentials(c, allowQuery)
		if err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		identity, err := m.Authenticate(c.Request.Context(), bearer, apiKey)
		if err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireSuperuser 要求超级管理员，需在 RequireLogin 之后使用
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !identity.IsSuperuser {
			response.Forbidden(c, "权限不足：需要超级管理员")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authenticate 解析凭证，令牌优先于API密钥
func (m *AuthMiddleware) Authenticate(ctx context.Context, bearer, apiKey string) (*Identity, error) {
	switch {
	case bearer != "":
		return m.authenticateToken(ctx, bearer)
	case apiKey != "":
		key, err := m.apiKeyService.Validate(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return &Identity{
			Kind:       IdentityAPIKey,
			APIKeyID:   key.ID,
			APIKeyName: key.Name,
		}, nil
	default:
		return nil, apperrors.Unauthorized("请先登录")
	}
}

func (m *AuthMiddleware) authenticateToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := m.jwtManager.VerifyToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Token无效或已过期")
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		// 吊销表不可用时拒绝请求
		logger.GetLogger().WithError(err).Error("查询令牌吊销状态失败")
		return nil, apperrors.Unauthorized("Token校验失败")
	}
	if revoked {
		return nil, apperrors.Unauthorized("Token已注销")
	}

	// 获取用户信息
	user, err := m.userService.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("用户不存在")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("用户已被禁用")
	}

	identity := &Identity{
		Kind:        IdentityUser,
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		TokenID:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func extractCredentials(c *gin.Context, allowQuery bool) (bearer, apiKey string, err error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", "", apperrors.Unauthorized("认证头格式错误")
		}
		bearer = strings.TrimSpace(authHeader[7:])
	}
	apiKey = strings.TrimSpace(c.GetHeader(APIKeyHeader))

	if allowQuery {
		if bearer == "" {
			bearer = c.Query("token")
		}
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}
	}
	return bearer, apiKey, nil
}

// GetIdentity 读取当前请求的调用方
func GetIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok
}
