// Package xmetrics 提供统一的观测接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span/Attr 三个最小接口，默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(mp))
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xttl",
//		Operation: "set",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标
//
//   - xttl.operation.total：操作次数
//   - xttl.operation.duration：操作耗时（秒）
//
// 统一属性：component / operation / status。
package xmetrics
