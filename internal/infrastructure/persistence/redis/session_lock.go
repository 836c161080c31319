// Package redis 提供会话级生成锁实现
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// 仅持有者可释放锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SessionLock 会话级互斥锁：同一会话同一时刻只允许一次生成，
// 避免两次并发生成读取同一份上下文后各自落库
type SessionLock struct {
	client *Client
	ttl    time.Duration
}

// NewSessionLock 创建会话锁
func NewSessionLock(client *Client, ttl time.Duration) *SessionLock {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &SessionLock{client: client, ttl: ttl}
}

func sessionLockKey(sessionID string) string {
	return fmt.Sprintf("lock:session:%s:generation", sessionID)
}

// Acquire 尝试获取会话锁，返回释放函数；锁被占用时 acquired 为 false
func (l *SessionLock) Acquire(ctx context.Context, sessionID string) (release func(context.Context) error, acquired bool, err error) {
	ctx, span := tracer.Start(ctx, "sessionlock.Acquire")
	span.SetAttributes(attribute.String("session.id", sessionID))
	defer span.End()

	key := sessionLockKey(sessionID)
	token := uuid.New().String()

	ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !ok {
		span.SetAttributes(attribute.Bool("sessionlock.acquired", false))
		return nil, false, nil
	}

	span.SetAttributes(attribute.Bool("sessionlock.acquired", true))

	release = func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client.rdb, []string{key}, token).Err()
	}
	return release, true, nil
}
