package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisBroker 通过Redis频道广播，多实例部署时所有实例的仪表盘都能收到变更
type RedisBroker struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
}

// NewRedisBroker 创建Redis广播
func NewRedisBroker(client *redis.Client, prefix string, log *logrus.Logger) *RedisBroker {
	if prefix == "" {
		prefix = "pms"
	}
	return &RedisBroker{
		client:  client,
		channel: fmt.Sprintf("%s:channel:events", prefix),
		log:     log,
	}
}

// Publish 发布消息到事件频道
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅事件频道
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(ctx, b.channel)

	// 等待订阅成功
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		pubsub.Close()
		return nil, nil, fmt.Errorf("订阅事件频道失败: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.WithError(err).Warn("Failed to decode event")
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	return out, cancel, nil
}

// Close 关闭Redis连接
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
