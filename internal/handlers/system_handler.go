package handlers

import (
	"time"

	"pms/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	serviceName    = "PMS"
	serviceVersion = "1.0.0"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{
		db:      db,
		started: time.Now(),
	}
}

// Health 健康检查，数据库不可用时返回 degraded
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
	}

	response.Success(c, gin.H{
		"status":    status,
		"timestamp": time.Now(),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}

// Ping 存活探测
func (h *SystemHandler) Ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}

// Status 运行状态（仅超级管理员）
func (h *SystemHandler) Status(c *gin.Context) {
	data := gin.H{
		"service":  serviceName,
		"version":  serviceVersion,
		"driver":   h.db.Dialector.Name(),
		"uptime_s": int64(time.Since(h.started).Seconds()),
	}
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		data["db_pool"] = gin.H{
			"open":       stats.OpenConnections,
			"in_use":     stats.InUse,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
		}
	}
	response.Success(c, data)
}
