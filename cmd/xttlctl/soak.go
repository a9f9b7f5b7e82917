package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xttl/pkg/lifecycle/xrun"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

// operationTotalMetric 是 xmetrics 记录操作次数的计数器名称。
const operationTotalMetric = "xttl.operation.total"

// soakOptions 是 soak 命令的参数。
type soakOptions struct {
	duration       time.Duration
	workers        int
	keys           int
	reportInterval time.Duration
	// noSignals 为 true 时不监听系统信号，供测试使用。
	noSignals bool
}

func (o soakOptions) validate() error {
	switch {
	case o.duration <= 0:
		return &usageError{msg: "--duration must be positive"}
	case o.workers < 1:
		return &usageError{msg: "--workers must be at least 1"}
	case o.keys < 1:
		return &usageError{msg: "--keys must be at least 1"}
	case o.reportInterval <= 0:
		return &usageError{msg: "--report-interval must be positive"}
	}
	return nil
}

// soakCounters 汇总所有 worker 的操作结果。
type soakCounters struct {
	sets       atomic.Uint64
	gets       atomic.Uint64
	rejected   atomic.Uint64
	unexpected atomic.Uint64
}

// runSoak 运行并发读写压测，直到时长耗尽或收到信号。
//
// 缓存操作通过 OTel 观测器记录到内存 MeterProvider，结束时按操作输出计数。
func runSoak(ctx context.Context, w io.Writer, cfg xttl.Config, opts soakOptions, logger xlog.Logger) error {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.WithoutCancel(ctx)) }()

	observer, err := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(provider))
	if err != nil {
		return err
	}

	cache, err := xttl.New[string, int](cfg,
		xttl.WithName("soak"),
		xttl.WithLogger(logger),
		xttl.WithObserver(observer),
	)
	if err != nil {
		if errors.Is(err, xttl.ErrInvalidConfig) {
			return &usageError{msg: "invalid cache config", err: err}
		}
		return err
	}
	defer cache.Close()

	keys := make([]string, opts.keys)
	for i := range keys {
		keys[i] = "key:" + strconv.Itoa(i)
	}

	var counters soakCounters
	tasks := make([]func(ctx context.Context) error, 0, opts.workers+1)
	for i := range opts.workers {
		tasks = append(tasks, soakWorker(cache, keys, uint64(i), &counters))
	}
	tasks = append(tasks, xrun.Ticker(opts.reportInterval, false, func(context.Context) error {
		printStats(w, "progress", cache.Stats())
		return nil
	}))

	runOpts := []xrun.Option{
		xrun.WithName("soak"),
		xrun.WithLogger(xlog.Slog(logger)),
	}
	if opts.noSignals {
		runOpts = append(runOpts, xrun.WithoutSignalHandler())
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	logger.Info(ctx, "soak started",
		slog.Duration("duration", opts.duration),
		slog.Int("workers", opts.workers),
		slog.Int("keys", opts.keys),
	)
	runErr := xrun.RunWithOptions(runCtx, runOpts, tasks...)

	var sigErr *xrun.SignalError
	switch {
	case runErr == nil, errors.Is(runErr, context.DeadlineExceeded):
	case errors.As(runErr, &sigErr):
		logger.Info(ctx, "soak interrupted", slog.String("signal", sigErr.Signal.String()))
	default:
		return runErr
	}

	printStats(w, "final", cache.Stats())
	cache.Close()
	fmt.Fprintf(w, "sets=%d gets=%d rejected=%d\n",
		counters.sets.Load(), counters.gets.Load(), counters.rejected.Load())

	if err := printOperationTotals(ctx, w, reader); err != nil {
		return err
	}
	if n := counters.unexpected.Load(); n > 0 {
		return fmt.Errorf("soak: %d unexpected errors", n)
	}
	return nil
}

// soakWorker 返回一个随机读写的任务，读写各占一半。
// ctx 结束时正常返回，不视为错误。
func soakWorker(cache *xttl.Cache[string, int], keys []string, seed uint64, counters *soakCounters) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		r := rand.New(rand.NewPCG(seed, uint64(time.Now().UnixNano())))
		for ctx.Err() == nil {
			key := keys[r.IntN(len(keys))]
			if r.IntN(2) == 0 {
				counters.gets.Add(1)
				cache.Get(key)
				continue
			}

			counters.sets.Add(1)
			switch err := cache.Set(key, r.Int()); {
			case err == nil:
			case errors.Is(err, xttl.ErrCapacityExceeded):
				counters.rejected.Add(1)
			default:
				counters.unexpected.Add(1)
			}
		}
		return nil
	}
}

func printStats(w io.Writer, label string, st xttl.Stats) {
	fmt.Fprintf(w, "[%s] len=%d/%d hits=%d misses=%d hit_ratio=%.2f rejected=%d expired=%d\n",
		label, st.Len, st.Capacity, st.Hits, st.Misses, st.HitRatio(), st.Rejected, st.Expired)
}

// printOperationTotals 从 reader 收集操作计数，按 operation/status 排序输出。
func printOperationTotals(ctx context.Context, w io.Writer, reader sdkmetric.Reader) error {
	totals, err := collectOperationTotals(ctx, reader)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s{%s}=%d\n", operationTotalMetric, name, totals[name])
	}
	return nil
}

// collectOperationTotals 返回 "operation,status" 到计数的映射。
func collectOperationTotals(ctx context.Context, reader sdkmetric.Reader) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.WithoutCancel(ctx), &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != operationTotalMetric {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				status, _ := dp.Attributes.Value("status")
				totals[op.AsString()+","+status.AsString()] += dp.Value
			}
		}
	}
	return totals, nil
}
