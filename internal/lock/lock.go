package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLocked = errors.New("资源正被其他请求占用")

// Locker 对某个 key 加互斥锁。获取失败时立即返回 ErrLocked 而不是等待
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local 是进程内的实现，只适用于单实例部署和测试
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.held[key]; exists {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
