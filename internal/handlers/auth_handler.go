package handlers

import (
	"time"

	"pms/internal/middleware"
	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/jwt"
	"pms/pkg/logger"
	"pms/pkg/response"
	"pms/pkg/tokenstore"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
	revoked     tokenstore.Store
}

func NewAuthHandler(userService *services.UserService, jwtManager *jwt.JWTManager, revoked tokenstore.Store) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
		revoked:     revoked,
	}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.IsSuperuser)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("用户登录")

	response.Success(c, models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtManager.GetTokenDuration().Seconds()),
		User:      user,
	})
}

// Refresh 刷新令牌，旧令牌随即吊销
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	token, old, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无法刷新")
		return
	}

	revoked, err := h.revoked.IsRevoked(ctx, old.ID)
	if err != nil || revoked {
		response.Unauthorized(c, "Token已注销")
		return
	}

	user, err := h.userService.GetByID(ctx, old.UserID)
	if err != nil || !user.IsActive {
		response.Unauthorized(c, "用户不存在或已被禁用")
		return
	}

	if err := h.revoked.Revoke(ctx, old.ID, tokenExpiry(old)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtManager.GetTokenDuration().Seconds()),
		User:      user,
	})
}

// Logout 用户登出，吊销当前令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok || identity.Kind != middleware.IdentityUser {
		response.BadRequest(c, "仅支持令牌登出")
		return
	}

	if err := h.revoked.Revoke(c.Request.Context(), identity.TokenID, identity.ExpiresAt); err != nil {
		response.HandleError(c, err)
		return
	}

	logger.GetLogger().WithField("user_id", identity.UserID).Info("用户登出")
	response.SuccessWithMessage(c, "登出成功", nil)
}

// Me 当前调用方
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	if identity.Kind != middleware.IdentityUser {
		response.Success(c, gin.H{"identity": identity})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"identity": identity, "user": user})
}

func tokenExpiry(claims *jwt.JWTClaims) time.Time {
	if claims.ExpiresAt == nil {
		return time.Now()
	}
	return claims.ExpiresAt.Time
}
