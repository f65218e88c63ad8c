package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed 同一前缀下的 JSON 值；load 返回 (nil, nil) 时缓存 null，错误不缓存
type Typed[T any] struct {
	c      *Cache
	prefix string
	ttl    time.Duration
}

func NewTyped[T any](c *Cache, prefix string, ttl time.Duration) *Typed[T] {
	return &Typed[T]{c: c, prefix: prefix, ttl: ttl}
}

func (t *Typed[T]) Key(id string) string { return t.prefix + id }

func (t *Typed[T]) Get(ctx context.Context, id string, load func(ctx context.Context) (*T, error)) (*T, error) {
	b, err := t.c.GetOrLoad(ctx, t.Key(id), t.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out *T
	if err := json.Unmarshal(b, &out); err != nil {
		// 脏数据直接删掉，下次回源
		_ = t.c.Forget(ctx, t.Key(id))
		return nil, err
	}
	return out, nil
}

func (t *Typed[T]) Forget(ctx context.Context, ids ...string) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = t.Key(id)
	}
	return t.c.Forget(ctx, keys...)
}
