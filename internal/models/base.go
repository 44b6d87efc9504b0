package models

import (
	"time"
)

// BaseModel 基础模型
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All 返回需要迁移的全部模型，按外键依赖排序
func All() []interface{} {
	return []interface{}{
		&User{},
		&APIKey{},
		&Contact{},
		&Unit{},
		&Lease{},
	}
}
