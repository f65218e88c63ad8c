package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventlink/internal/domain"
)

const eventKeyPrefix = "eventlink:event:"

// EventCache 活动（含主办方名称）读穿缓存；出票不改活动行，所以只在活动变更/删除时失效
type EventCache struct {
	events *Typed[domain.EventView]
	log    *zap.Logger
}

func NewEventCache(c *Cache, ttl time.Duration, l *zap.Logger) *EventCache {
	if l == nil {
		l = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &EventCache{events: NewTyped[domain.EventView](c, eventKeyPrefix, ttl), log: l}
}

func (e *EventCache) GetEvent(ctx context.Context, id string, load func(ctx context.Context) (*domain.EventView, error)) (*domain.EventView, error) {
	return e.events.Get(ctx, id, load)
}

// ForgetEvent 失效失败只记日志，最坏情况是 ttl 内读到旧数据
func (e *EventCache) ForgetEvent(ctx context.Context, id string) {
	if err := e.events.Forget(ctx, id); err != nil {
		e.log.Warn("event cache forget failed", zap.String("key", e.events.Key(id)), zap.Error(err))
	}
}
