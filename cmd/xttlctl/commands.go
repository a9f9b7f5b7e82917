package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xrotate"
)

// usageError 表示参数或配置错误，对应退出码 2。
type usageError struct {
	msg string
	err error
}

func (e *usageError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *usageError) Unwrap() error { return e.err }

// cliUsageMarkers 是 urfave/cli 与 flag 解析器参数错误消息的特征片段。
var cliUsageMarkers = []string{
	"flag provided but not defined",
	"flag needs an argument",
	"invalid value",
	"No help topic for",
}

// isCLIUsageError 判断错误是否由 CLI 框架的参数解析产生。
func isCLIUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range cliUsageMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createScenariosCommand(),
		createSoakCommand(),
	}
}

// createScenariosCommand 创建 scenarios 子命令。
func createScenariosCommand() *cli.Command {
	return &cli.Command{
		Name:    "scenarios",
		Aliases: []string{"s"},
		Usage:   "运行容量拒绝、过期回收、覆盖写三个场景",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			return runScenarios(ctx, cmd.Root().Writer, logger)
		},
	}
}

// createSoakCommand 创建 soak 子命令。
func createSoakCommand() *cli.Command {
	return &cli.Command{
		Name:  "soak",
		Usage: "并发读写压测",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "压测时长",
				Value:   10 * time.Second,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "并发 worker 数",
				Value:   4,
			},
			&cli.IntFlag{
				Name:    "keys",
				Aliases: []string{"k"},
				Usage:   "key 空间大小",
				Value:   2000,
			},
			&cli.DurationFlag{
				Name:  "report-interval",
				Usage: "统计输出周期",
				Value: time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadCacheConfig(cmd)
			if err != nil {
				return err
			}
			opts := soakOptions{
				duration:       cmd.Duration("duration"),
				workers:        int(cmd.Int("workers")),
				keys:           int(cmd.Int("keys")),
				reportInterval: cmd.Duration("report-interval"),
			}
			if err := opts.validate(); err != nil {
				return err
			}

			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			return runSoak(ctx, cmd.Root().Writer, cfg, opts, logger)
		},
	}
}

// buildLogger 按全局日志参数构建 Logger。
func buildLogger(cmd *cli.Command) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format"))
	if file := cmd.String("log-file"); file != "" {
		b.SetRotation(file, xrotate.WithMaxSize(50), xrotate.WithMaxBackups(3))
	}

	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{msg: "invalid log options", err: err}
	}
	return logger, cleanup, nil
}

// errAssertion 表示场景运行结果与预期不符。
var errAssertion = errors.New("scenario assertion failed")

func assertf(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return fmt.Errorf("%w: %s", errAssertion, fmt.Sprintf(format, args...))
}
