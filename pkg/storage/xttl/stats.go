package xttl

// Stats 是缓存计数器的快照。
type Stats struct {
	// Len 当前条目数（含已过期但未清理的条目）。
	Len int

	// Capacity 最大条目数。
	Capacity int

	// Hits Get 命中次数。
	Hits uint64

	// Misses Get 未命中次数（不存在、已过期或已关闭）。
	Misses uint64

	// Rejected 因容量不足被拒绝的 Set 次数。
	Rejected uint64

	// Expired 被清理（后台、手动或容量压力触发）删除的过期条目总数。
	Expired uint64
}

// HitRatio 返回命中率 (0.0 - 1.0)，没有任何 Get 时返回 0。
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats 返回计数器快照。计数器在 Close 后保留。
func (c *Cache[K, V]) Stats() Stats {
	s := c.s
	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()

	return Stats{
		Len:      n,
		Capacity: s.capacity,
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Rejected: s.rejected.Load(),
		Expired:  s.expired.Load(),
	}
}
