package main

import (
	"context"
	"fmt"

	"pms/internal/services"
	"pms/pkg/config"
	"pms/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	appLogger := logger.GetLogger()

	// 未配置密码时不创建管理员，可改用 pmsctl createsuperuser
	if cfg.Admin.Password == "" {
		appLogger.Info("ADMIN_PASSWORD 未设置，跳过创建默认管理员")
		return nil
	}

	user, created, err := services.NewUserService(db).EnsureSuperuser(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}
	if created {
		appLogger.WithField("username", user.Username).Info("默认管理员已创建")
	} else {
		appLogger.WithField("username", user.Username).Info("默认管理员已存在，跳过创建")
	}
	return nil
}
