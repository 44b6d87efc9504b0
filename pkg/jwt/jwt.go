package jwt

import (
	"errors"
	"sync"
	"time"

	"pms/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims JWT声明
type JWTClaims struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey       string
	tokenDuration   time.Duration
	refreshDuration time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, tokenDuration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       secretKey,
		tokenDuration:   tokenDuration,
		refreshDuration: refreshDuration,
	}
}

// GenerateToken 生成JWT令牌，每个令牌带唯一ID用于吊销
func (manager *JWTManager) GenerateToken(userID uint, username string, isSuperuser bool) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:      userID,
		Username:    username,
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "PMS",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证JWT令牌
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	return manager.parse(tokenString)
}

func (manager *JWTManager) parse(tokenString string, opts ...jwt.ParserOption) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(manager.secretKey), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// RefreshToken 刷新令牌
//
// 已过期但仍在刷新窗口内的令牌也可以刷新。返回新令牌和旧令牌的声明（用于吊销）。
func (manager *JWTManager) RefreshToken(tokenString string) (string, *JWTClaims, error) {
	claims, err := manager.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", nil, err
	}
	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > manager.refreshDuration {
		return "", nil, errors.New("token is outside the refresh window")
	}

	token, err := manager.GenerateToken(claims.UserID, claims.Username, claims.IsSuperuser)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// GetTokenDuration 获取令牌有效期
func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.TokenTTL(), cfg.JWT.RefreshTTL())
	})
	return defaultManager
}
