// Package xrun 提供基于 errgroup + context 的后台任务生命周期管理。
//
// xttl 用 [Ticker] 驱动缓存的周期清理；xttlctl 用 [Group] 与 [RunWithOptions]
// 组织压测 worker、统计上报与信号处理。
//
// # 核心概念
//
// 所有任务都是 func(ctx context.Context) error。ctx 取消即退出信号，
// 任一任务返回错误会取消同组的其他任务。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("soak"))
//	g.Go(xrun.Ticker(time.Second, false, report))
//	g.GoWithName("worker-0", worker)
//	err := g.Wait()
//
// # 信号
//
// Run/RunWithOptions 默认监听 SIGHUP/SIGINT/SIGTERM/SIGQUIT，收到信号后
// 以 *SignalError 作为取消原因，Wait 返回该错误，可用
// errors.Is(err, xrun.ErrSignal) 判断。
package xrun
