package logger

import (
	"io"
	"os"
	"path/filepath"

	"pms/pkg/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志实例，Initialize 之前为默认的 stderr 文本日志
var Logger = logrus.New()

// Initialize 初始化日志
func Initialize(cfg *config.Config) error {
	l, err := New(cfg.Log)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New 按配置构造日志实例
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()

	// 设置日志等级
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	// 设置日志格式
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetOutput(os.Stdout)
	if cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}

		// 配置日志轮转
		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}

		// 同时输出到文件和控制台
		l.SetOutput(io.MultiWriter(os.Stdout, rotateLogger))
	}

	return l, nil
}

// GetLogger 获取日志实例
func GetLogger() *logrus.Logger {
	return Logger
}
