package xttl

import (
	"context"
	"log/slog"

	"github.com/omeyang/xttl/pkg/lifecycle/xrun"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// runSweeper 按 sweepInterval 周期清理过期条目，直到 ctx 被取消。
// 首次清理发生在一个周期之后（xrun.Ticker 的 immediate=false）。
func (s *store[K, V]) runSweeper(ctx context.Context) {
	defer close(s.done)

	tick := xrun.Ticker(s.sweepInterval, false, func(ctx context.Context) error {
		s.sweep(ctx, "sweep")
		return nil
	})
	// 清理本身不会失败，Ticker 只会在 ctx 取消时返回。
	_ = tick(ctx)
}

// sweep 在锁内删除过期条目，在锁外记录观测与日志。
func (s *store[K, V]) sweep(ctx context.Context, operation string) int {
	ctx, span := xmetrics.Start(ctx, s.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: operation,
		Kind:      xmetrics.KindInternal,
		Attrs:     s.attrs,
	})

	s.mu.Lock()
	removed, remaining := 0, 0
	if !s.closed {
		removed = s.deleteExpiredLocked(s.opts.now())
		remaining = len(s.items)
	}
	s.mu.Unlock()

	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("removed", removed)}})
	if removed > 0 {
		s.opts.logger.Debug(ctx, "xttl removed expired entries",
			slog.String("cache", s.opts.name),
			slog.String("trigger", operation),
			slog.Int("removed", removed),
			slog.Int("remaining", remaining),
		)
	}
	return removed
}
