package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
)

// Group 并发运行一组任务，任一任务失败或被 Cancel 时取消全部任务。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一任务失败或 Cancel 时被取消。
// nil ctx 视为 context.Background()，nil Option 被跳过。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 在新 goroutine 中执行 fn。fn 返回非 nil 错误会取消整个 Group。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并以 name 记录任务的启动与退出。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		log := g.opts.logger.With(slog.String("group", g.opts.name), slog.String("task", name))
		log.Debug("task starting")

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("task exited with error", slog.Any("error", err))
		} else {
			log.Debug("task stopped")
		}
		return err
	})
}

// Wait 等待所有任务结束，返回第一个非 nil 错误。
//
// 由 Group 取消引起的 context.Canceled 会被过滤：有显式取消原因
// （如 *SignalError）时返回该原因，否则返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() == nil {
			// 取消来自任务内部，不过滤
			return err
		}
		return g.explicitCause()
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

// explicitCause 返回 Cancel 设置的、非 context.Canceled 的取消原因。
func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 取消所有任务，cause 会由 Wait 返回。cause 为 nil 时 Wait 返回 nil。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Run 监听默认信号并运行 tasks，直到全部结束、任一失败或收到信号。
func Run(ctx context.Context, tasks ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, tasks...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, tasks ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			return g.watchSignals(ctx, signals)
		})
	}

	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

// watchSignals 等待信号并以 *SignalError 取消 Group。
func (g *Group) watchSignals(ctx context.Context, signals []os.Signal) error {
	testc := testSigChan(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testc:
	case sig = <-sigCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.opts.logger.Info("received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()),
	)
	g.cancel(&SignalError{Signal: sig})
	return nil
}
