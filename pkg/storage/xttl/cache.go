package xttl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// componentName 是指标与跨度的 component 属性。
const componentName = "xttl"

// Cache 是固定 TTL、有容量上限的并发安全缓存。
// 必须通过 [New] 创建，零值不可用。
//
// Cache 只是对内部状态的句柄：后台清理 goroutine 只引用内部状态，
// 因此被遗弃的句柄可以被回收，并借由 runtime cleanup 停止清理。
type Cache[K comparable, V any] struct {
	s       *store[K, V]
	cleanup runtime.Cleanup
}

// entry 是缓存条目，key 存在 map 中。
type entry[V any] struct {
	value    V
	expireAt time.Time
}

// store 持有缓存的全部状态。
type store[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]entry[V]
	closed bool

	ttl           time.Duration
	sweepInterval time.Duration
	capacity      int
	opts          *options
	attrs         []xmetrics.Attr

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	hits     atomic.Uint64
	misses   atomic.Uint64
	rejected atomic.Uint64
	expired  atomic.Uint64
}

// New 创建缓存并启动后台清理。
//
// cfg.Capacity 为 0 时使用 DefaultCapacity。
// 配置无效时返回的错误匹配 ErrInvalidConfig，以及具体的
// ErrInvalidTTL / ErrInvalidSweepInterval / ErrInvalidCapacity。
func New[K comparable, V any](cfg Config, opts ...Option) (*Cache[K, V], error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w (ttl=%s, sweep_interval=%s, capacity=%d)",
			err, cfg.TTL, cfg.SweepInterval, cfg.Capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &store[K, V]{
		items:         make(map[K]entry[V]),
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		capacity:      cfg.Capacity,
		opts:          o,
		attrs:         []xmetrics.Attr{xmetrics.String("cache", o.name)},
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	go s.runSweeper(ctx)

	c := &Cache[K, V]{s: s}
	c.cleanup = runtime.AddCleanup(c, func(s *store[K, V]) { s.close() }, s)

	o.logger.Info(ctx, "xttl cache started",
		slog.String("cache", o.name),
		slog.Duration("ttl", cfg.TTL),
		slog.Duration("sweep_interval", cfg.SweepInterval),
		slog.Int("capacity", cfg.Capacity),
	)
	return c, nil
}

// Set 写入或覆盖 key，过期时刻为当前时间 + TTL。
//
//   - key 已存在（无论是否过期）：直接覆盖值并刷新过期时刻，不检查容量
//   - key 不存在且缓存已满：先清理过期条目；仍然已满则返回 ErrCapacityExceeded，
//     缓存保持不变，不会淘汰任何存活条目
//   - 缓存已关闭：返回 ErrClosed
//
// 整个"检查-清理-写入"序列在锁内原子完成。
func (c *Cache[K, V]) Set(key K, value V) error {
	s := c.s
	ctx, span := xmetrics.Start(context.Background(), s.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "set",
		Kind:      xmetrics.KindInternal,
		Attrs:     s.attrs,
	})

	swept, err := s.set(key, value)
	span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Int("swept", swept)}})

	if swept > 0 {
		s.opts.logger.Debug(ctx, "xttl swept expired entries under capacity pressure",
			slog.String("cache", s.opts.name),
			slog.Int("removed", swept),
		)
	}
	if errors.Is(err, ErrCapacityExceeded) {
		s.opts.logger.Warn(ctx, "xttl rejected insert",
			slog.String("cache", s.opts.name),
			slog.Int("capacity", s.capacity),
		)
		return fmt.Errorf("%w: capacity %d", err, s.capacity)
	}
	return err
}

// Get 返回 key 对应的值。
// 仅当条目存在且过期时刻严格晚于当前时间时返回 true。
// 过期条目不会被 Get 删除；缓存已关闭时始终返回零值和 false。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	return c.s.get(key)
}

// ClearExpired 删除所有过期条目（过期时刻 <= 当前时间），返回删除数量。
//
// 幂等；与其他所有操作串行。复杂度 O(n)。缓存已关闭时返回 0。
func (c *Cache[K, V]) ClearExpired() int {
	return c.s.sweep(context.Background(), "clear_expired")
}

// Clear 无条件删除所有条目，不影响后台清理。
// 缓存已关闭时为空操作。
func (c *Cache[K, V]) Clear() {
	s := c.s
	_, span := xmetrics.Start(context.Background(), s.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "clear",
		Kind:      xmetrics.KindInternal,
		Attrs:     s.attrs,
	})
	removed := s.clear()
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("removed", removed)}})
}

// Len 返回当前条目数，包括已过期但尚未被清理的条目。
// 缓存已关闭时返回 0。
func (c *Cache[K, V]) Len() int {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close 关闭缓存：停止后台清理、等待清理 goroutine 退出、清空所有条目。
//
// Close 幂等，重复调用为空操作。关闭后缓存进入退役状态，
// Set 返回 ErrClosed，后台清理不会被重新启动。
func (c *Cache[K, V]) Close() {
	c.cleanup.Stop()
	c.s.close()
}

// =============================================================================
// 锁内状态转换
// =============================================================================

func (s *store[K, V]) set(key K, value V) (swept int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	now := s.opts.now()
	if _, exists := s.items[key]; !exists && len(s.items) >= s.capacity {
		swept = s.deleteExpiredLocked(now)
		if len(s.items) >= s.capacity {
			s.rejected.Add(1)
			return swept, ErrCapacityExceeded
		}
	}

	s.items[key] = entry[V]{value: value, expireAt: now.Add(s.ttl)}
	return swept, nil
}

func (s *store[K, V]) get(key K) (value V, ok bool) {
	s.mu.RLock()
	e, found := s.items[key]
	live := found && !s.closed && e.expireAt.After(s.opts.now())
	s.mu.RUnlock()

	if !live {
		s.misses.Add(1)
		return value, false
	}
	s.hits.Add(1)
	return e.value, true
}

func (s *store[K, V]) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	n := len(s.items)
	clear(s.items)
	return n
}

// deleteExpiredLocked 删除所有过期条目，调用方必须持有写锁。
//
// Go 允许在 range 中删除 map 元素，无需先收集 key。
func (s *store[K, V]) deleteExpiredLocked(now time.Time) int {
	removed := 0
	for key, e := range s.items {
		if !e.expireAt.After(now) {
			delete(s.items, key)
			removed++
		}
	}
	if removed > 0 {
		s.expired.Add(uint64(removed))
	}
	return removed
}

// close 执行一次性的退役流程，供 Close 与 runtime cleanup 共用。
func (s *store[K, V]) close() {
	s.closeOnce.Do(func() {
		_, span := xmetrics.Start(context.Background(), s.opts.observer, xmetrics.SpanOptions{
			Component: componentName,
			Operation: "close",
			Kind:      xmetrics.KindInternal,
			Attrs:     s.attrs,
		})

		s.mu.Lock()
		s.closed = true
		dropped := len(s.items)
		clear(s.items)
		s.mu.Unlock()

		// 清理 goroutine 可能正在等锁，必须在释放锁之后再等待它退出。
		s.cancel()
		<-s.done

		span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("dropped", dropped)}})
		s.opts.logger.Info(context.Background(), "xttl cache closed",
			slog.String("cache", s.opts.name),
			slog.Int("dropped", dropped),
		)
	})
}
