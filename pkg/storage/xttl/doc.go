// Package xttl 提供固定 TTL、有容量上限的进程内缓存。
//
// xttl 面向"短时记忆化"场景：把昂贵查询的结果缓存几秒到几分钟，
// 到期后自然失效。它不是通用缓存：没有 LRU/LFU 淘汰，没有持久化，
// 也没有任何网络协议。
//
// # 核心语义
//
//   - 固定 TTL：每个实例只有一个 TTL，条目过期时刻 = 写入时刻 + TTL
//   - 读取只看存活性：Get 仅在过期时刻严格晚于当前时间时命中，读取从不删除条目
//   - 先清理再拒绝：写入新 key 且已满时，先执行一次过期清理；
//     仍然满则返回 [ErrCapacityExceeded]，缓存保持不变
//   - 覆盖写不占容量：已存在的 key（无论是否过期）被直接覆盖并刷新过期时刻
//   - 后台清理：按 SweepInterval 周期清理过期条目，首次清理发生在一个周期之后
//
// # 并发模型
//
// 整个缓存由一把锁保护，所有操作（Set/Get/ClearExpired/Clear/Close）
// 在同一互斥域内执行。锁内只做 O(1)（Get/Set）或 O(n)（清理）的内存操作，
// 日志与指标都在锁外完成。后台清理与前台操作走同一把锁，因此同一时刻
// 至多只有一次清理在执行。
//
// # 生命周期
//
// Close 是唯一的契约：停止后台清理、等待清理 goroutine 退出、清空所有条目。
// Close 幂等。关闭后的实例是"退役"状态：Set 返回 [ErrClosed]，
// Get 返回未命中，其余操作为空操作，后台清理不会被重新启动。
//
// 若调用方遗忘 Close，New 注册的 runtime cleanup 会在句柄不可达后
// 停止后台清理。这只是兜底，触发时机由 GC 决定，不应依赖。
//
// # 使用示例
//
//	cache, err := xttl.New[string, int](xttl.Config{
//		TTL:           30 * time.Second,
//		SweepInterval: 10 * time.Second,
//		Capacity:      1000,
//	})
//	if err != nil {
//		return err
//	}
//	defer cache.Close()
//
//	if err := cache.Set("user:1", 42); errors.Is(err, xttl.ErrCapacityExceeded) {
//		// 缓存已满且没有过期条目可回收
//	}
//	if v, ok := cache.Get("user:1"); ok {
//		use(v)
//	}
//
// # 复杂度
//
//   - Get/Set：O(1)；容量压力下 Set 额外触发一次 O(n) 清理
//   - ClearExpired：O(n)，全量扫描。适用于数千条目量级，不适合百万级
package xttl
