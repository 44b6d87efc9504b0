package services

import (
	"context"
	"strings"
	"time"

	"pms/internal/models"
	apperrors "pms/pkg/errors"
	"pms/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// APIKeyService API密钥服务
type APIKeyService struct {
	db *gorm.DB
}

// NewAPIKeyService 创建API密钥服务实例
func NewAPIKeyService(db *gorm.DB) *APIKeyService {
	return &APIKeyService{
		db: db,
	}
}

// Create 生成新的API密钥
func (s *APIKeyService) Create(ctx context.Context, name string) (*models.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.FieldValidation("name", "该字段不能为空")
	}

	key := &models.APIKey{
		Key:      uuid.NewString(),
		Name:     name,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return nil, err
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"api_key_id": key.ID,
		"name":       key.Name,
	}).Info("API密钥已创建")
	return key, nil
}

// Validate 验证密钥并记录使用时间
func (s *APIKeyService) Validate(ctx context.Context, raw string) (*models.APIKey, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return nil, apperrors.Unauthorized("无效的API密钥")
	}

	var key models.APIKey
	err := s.db.WithContext(ctx).Where(&models.APIKey{Key: raw, IsActive: true}).First(&key).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Unauthorized("无效的API密钥")
		}
		return nil, err
	}

	now := time.Now()
	key.LastUsedAt = &now
	if err := s.db.WithContext(ctx).Model(&key).UpdateColumn("last_used_at", now).Error; err != nil {
		logger.GetLogger().WithField("api_key_id", key.ID).Warnf("更新密钥使用时间失败: %v", err)
	}
	return &key, nil
}

// List 列出全部密钥
func (s *APIKeyService) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&keys).Error
	return keys, err
}

// Revoke 停用密钥
func (s *APIKeyService) Revoke(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("API密钥不存在")
	}

	logger.GetLogger().WithField("api_key_id", id).Info("API密钥已停用")
	return nil
}
