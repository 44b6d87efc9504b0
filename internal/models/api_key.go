package models

import (
	"time"
)

// APIKey 服务间调用使用的静态密钥，通过 X-API-Key 头传递
type APIKey struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Key        string     `gorm:"size:36;not null;uniqueIndex" json:"key"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName 表名
func (APIKey) TableName() string {
	return "api_keys"
}

// Masked 只显示前8位
func (k *APIKey) Masked() string {
	if len(k.Key) <= 8 {
		return k.Key
	}
	return k.Key[:8] + "..."
}

// CreateAPIKeyRequest 创建密钥请求
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
