package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pms/pkg/config"
	"pms/pkg/events"
	"pms/pkg/tokenstore"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// NewRedisClient 创建Redis客户端并检查连通性
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接Redis失败: %v", err)
	}
	return client, nil
}

// GetRedis 获取Redis客户端的单例实例，未启用时返回 nil
func GetRedis() (*redis.Client, error) {
	cfg := config.GetConfig()
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	var err error
	redisOnce.Do(func() {
		redisClient, err = NewRedisClient(cfg.Redis)
	})
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		return nil, fmt.Errorf("Redis客户端初始化失败")
	}
	return redisClient, nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// NewEventBroker 启用Redis时跨实例广播，否则使用进程内广播
func NewEventBroker(cfg *config.Config, log *logrus.Logger) (events.Broker, error) {
	if !cfg.Redis.Enabled {
		return events.NewMemoryBroker(), nil
	}
	client, err := GetRedis()
	if err != nil {
		return nil, err
	}
	return events.NewRedisBroker(client, cfg.Redis.Prefix, log), nil
}

// NewRevocationStore 令牌吊销表，启用Redis时多实例共享
func NewRevocationStore(cfg *config.Config) (tokenstore.Store, error) {
	if !cfg.Redis.Enabled {
		return tokenstore.NewMemoryStore(), nil
	}
	client, err := GetRedis()
	if err != nil {
		return nil, err
	}
	return tokenstore.NewRedisStore(client, cfg.Redis.Prefix), nil
}
