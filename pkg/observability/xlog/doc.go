// Package xlog 提供基于 log/slog 的结构化日志。
//
// # 设计
//
//   - 强制 context：所有日志方法第一个参数是 context.Context
//   - 类型安全：只接受 slog.Attr，不做隐式 key-value 转换
//   - 动态级别：Build 返回 LoggerWithLevel，可在运行时调整级别
//   - 生命周期：Build 返回 cleanup，用于关闭轮转文件
//
// # 使用示例
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xttl/app.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	logger.Info(ctx, "cache started", slog.Int("capacity", 1000))
//
// 库代码默认使用 [Discard]，由调用方通过选项注入真实 Logger。
package xlog
