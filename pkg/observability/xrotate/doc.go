// Package xrotate 提供按大小轮转的日志文件输出。
//
// 基于 gopkg.in/natefinch/lumberjack.v2，供 xlog.Builder.SetRotation
// 与 xttlctl 的 --log-file 使用。
package xrotate
