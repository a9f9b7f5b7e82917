// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xttl: 进程内固定 TTL、有容量上限的缓存，满载时先清理过期条目再拒绝写入
//
// 设计原则：
//   - 并发安全，零值不可用，必须通过构造函数创建
//   - 内置可观测性（指标、追踪）
//   - 生命周期显式管理，Close 幂等
package storage
