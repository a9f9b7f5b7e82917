// xttlctl 是 xttl 缓存的演示与压测命令行工具。
//
// 用法:
//
//	xttlctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config          配置文件路径 (yaml/json)，读取其中的 cache 段
//	    --ttl             条目存活时间
//	    --sweep-interval  后台清理周期
//	    --capacity        最大条目数 (0 表示默认值 1000)
//	    --log-level       日志级别 (debug/info/warn/error)
//	    --log-format      日志格式 (text/json)
//	    --log-file        日志文件路径，启用后按大小轮转
//
// 命令行参数优先于配置文件。
//
// 命令:
//
//	scenarios      依次运行容量拒绝、过期回收、覆盖写三个场景
//	soak           并发读写压测，定期输出统计，结束时输出指标汇总
//	help           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 运行失败（场景断言不成立、压测出现非预期错误）
//	2: 参数或配置错误
//
// 示例:
//
//	xttlctl scenarios
//	xttlctl --ttl 2s --capacity 500 soak --duration 30s --workers 8
//	xttlctl -c cache.yaml --log-level debug soak
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

// 默认缓存参数，配置文件与命令行都未指定时使用。
const (
	defaultTTL           = 5 * time.Second
	defaultSweepInterval = time.Second
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xttlctl",
		Usage:   "xttl 缓存演示与压测工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (yaml/json)",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "条目存活时间",
				Value: defaultTTL,
			},
			&cli.DurationFlag{
				Name:  "sweep-interval",
				Usage: "后台清理周期",
				Value: defaultSweepInterval,
			},
			&cli.IntFlag{
				Name:  "capacity",
				Usage: "最大条目数，0 表示默认值",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径，为空时输出到 stderr",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 退出码由 run() 统一映射，禁止 urfave/cli 直接调用 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

// run 运行应用并返回退出码。
func run(ctx context.Context, args []string) int {
	app := createApp()

	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
