package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"pms/internal/models"
	apperrors "pms/pkg/errors"
	"pms/pkg/logger"
	"pms/pkg/pagination"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db: db,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (s *UserService) Create(ctx context.Context, username, email, password string, isSuperuser bool) (*models.User, error) {
	// 验证参数
	if err := s.ValidateCreateParams(username, email, password); err != nil {
		return nil, err
	}

	// 检查用户名是否重复
	var usernameCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&usernameCount).Error; err != nil {
		return nil, err
	}
	if usernameCount > 0 {
		return nil, apperrors.Conflict("用户名已存在")
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		IsSuperuser: isSuperuser,
		IsActive:    true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// List 分页查询用户，keyword 匹配用户名和邮箱
func (s *UserService) List(ctx context.Context, keyword string, page *pagination.PageParams) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if strings.TrimSpace(keyword) != "" {
		pattern := likePattern(keyword)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var users []models.User
	total, err := paginate(query, page, "username ASC, id ASC", &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ========== 状态管理 ==========

// SetActive 启用或禁用用户，禁用后已签发的令牌随即失效
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("is_active", active).Error; err != nil {
		return nil, err
	}
	user.IsActive = active
	logger.GetLogger().WithField("user_id", id).Infof("用户状态已更新: active=%t", active)
	return user, nil
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(ctx context.Context, id uint, password string) error {
	if len(password) < 6 {
		return apperrors.FieldValidation("password", "密码长度不能少于6个字符")
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).UpdateColumn("password_hash", user.PasswordHash).Error
}

// ========== 认证相关 ==========

// Authenticate 校验用户名密码并记录登录时间
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("用户名或密码错误")
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.Unauthorized("用户名或密码错误")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("用户已被禁用")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("last_login_at", now).Error; err != nil {
		logger.GetLogger().WithField("user_id", user.ID).Warnf("更新登录时间失败: %v", err)
	}
	return user, nil
}

// EnsureSuperuser 引导超级管理员，已存在时直接返回
func (s *UserService) EnsureSuperuser(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	user, err := s.GetByUsername(ctx, username)
	if err == nil {
		return user, false, nil
	}
	if !stderrors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	user, err = s.Create(ctx, username, email, password, true)
	if err != nil {
		return nil, false, err
	}
	logger.GetLogger().WithField("username", username).Info("超级管理员已创建")
	return user, true, nil
}

// ValidateCreateParams 验证创建参数
func (s *UserService) ValidateCreateParams(username, email, password string) error {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50 {
		return apperrors.FieldValidation("username", "用户名长度必须在3-50个字符之间")
	}
	if email != "" {
		if err := requestValidator.Var(email, "email"); err != nil {
			return apperrors.FieldValidation("email", "邮箱格式不正确")
		}
	}
	if len(password) < 6 {
		return apperrors.FieldValidation("password", "密码长度不能少于6个字符")
	}
	return nil
}
