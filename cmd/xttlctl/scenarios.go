package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

// scenario 是一个独立运行的演示场景，每个场景使用自己的缓存实例。
type scenario struct {
	name string
	desc string
	cfg  xttl.Config
	run  func(ctx context.Context, c *xttl.Cache[string, int]) error
}

func builtinScenarios() []scenario {
	return []scenario{
		{
			name: "A",
			desc: "full cache with only live entries refuses a new key",
			cfg:  xttl.Config{TTL: time.Minute, SweepInterval: time.Minute, Capacity: 2},
			run:  scenarioCapacityExceeded,
		},
		{
			name: "B",
			desc: "expired entry is reclaimed under capacity pressure",
			cfg:  xttl.Config{TTL: 100 * time.Millisecond, SweepInterval: time.Minute, Capacity: 2},
			run:  scenarioExpiredReclaimed,
		},
		{
			name: "C",
			desc: "re-insert overwrites without growing the cache",
			cfg:  xttl.Config{TTL: time.Minute, SweepInterval: time.Minute, Capacity: 10},
			run:  scenarioOverwrite,
		},
	}
}

// runScenarios 依次运行所有场景，任一场景失败立即返回。
func runScenarios(ctx context.Context, w io.Writer, logger xlog.Logger) error {
	for _, sc := range builtinScenarios() {
		if err := runScenario(ctx, sc, logger); err != nil {
			fmt.Fprintf(w, "scenario %s: FAIL (%s)\n", sc.name, sc.desc)
			return fmt.Errorf("scenario %s: %w", sc.name, err)
		}
		fmt.Fprintf(w, "scenario %s: ok (%s)\n", sc.name, sc.desc)
	}
	return nil
}

func runScenario(ctx context.Context, sc scenario, logger xlog.Logger) error {
	c, err := xttl.New[string, int](sc.cfg,
		xttl.WithName("scenario-"+sc.name),
		xttl.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	return sc.run(ctx, c)
}

func scenarioCapacityExceeded(_ context.Context, c *xttl.Cache[string, int]) error {
	if err := c.Set("a", 1); err != nil {
		return err
	}
	if err := c.Set("b", 2); err != nil {
		return err
	}

	err := c.Set("c", 3)
	if e := assertf(errors.Is(err, xttl.ErrCapacityExceeded), "insert c: got %v, want capacity exceeded", err); e != nil {
		return e
	}
	v, ok := c.Get("a")
	if e := assertf(ok && v == 1, "get a: got (%d, %v), want (1, true)", v, ok); e != nil {
		return e
	}
	_, ok = c.Get("c")
	return assertf(!ok, "get c: entry must be absent")
}

func scenarioExpiredReclaimed(ctx context.Context, c *xttl.Cache[string, int]) error {
	if err := c.Set("a", 1); err != nil {
		return err
	}

	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.Set("b", 2); err != nil {
		return err
	}
	if err := c.Set("c", 3); err != nil {
		return err
	}

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	return assertf(!okA && okB && okC && c.Len() == 2,
		"live set: a=%v b=%v c=%v len=%d, want exactly {b, c}", okA, okB, okC, c.Len())
}

func scenarioOverwrite(_ context.Context, c *xttl.Cache[string, int]) error {
	if err := c.Set("a", 1); err != nil {
		return err
	}
	if err := c.Set("a", 2); err != nil {
		return err
	}

	v, ok := c.Get("a")
	return assertf(ok && v == 2 && c.Len() == 1,
		"get a: got (%d, %v) len=%d, want (2, true) len=1", v, ok, c.Len())
}
