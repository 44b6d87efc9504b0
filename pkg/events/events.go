// Package events 在写操作提交后广播数据变更，供仪表盘实时推送使用。
package events

import (
	"context"
	"sync"
	"time"
)

// 事件类型
const (
	ContactCreated  = "contact.created"
	ContactUpdated  = "contact.updated"
	ContactDeleted  = "contact.deleted"
	UnitCreated     = "unit.created"
	UnitUpdated     = "unit.updated"
	UnitDeleted     = "unit.deleted"
	LeaseCreated    = "lease.created"
	LeaseUpdated    = "lease.updated"
	LeaseTerminated = "lease.terminated"
	LeaseDeleted    = "lease.deleted"
)

// Event 数据变更事件
type Event struct {
	Type     string    `json:"type"`
	EntityID uint      `json:"entity_id"`
	At       time.Time `json:"at"`
}

// New 创建事件
func New(eventType string, entityID uint) Event {
	return Event{Type: eventType, EntityID: entityID, At: time.Now().UTC()}
}

// Broker 事件发布订阅
type Broker interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe 返回事件通道和取消函数，取消后通道关闭
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
	Close() error
}

// subscriberBuffer 每个订阅者的缓冲，慢消费者会丢弃事件而不是阻塞写请求
const subscriberBuffer = 16

// MemoryBroker 进程内广播
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
	closed bool
}

// NewMemoryBroker 创建进程内广播
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]chan Event)}
}

func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}, nil
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}

// Subscribers 当前订阅数
func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
