package xttl

import (
	"strconv"
	"testing"
	"time"
)

// =============================================================================
// 基准测试
// =============================================================================

func newBenchCache(b *testing.B, capacity int) *Cache[string, int] {
	b.Helper()
	c, err := New[string, int](Config{TTL: time.Hour, SweepInterval: time.Hour, Capacity: capacity})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(c.Close)
	return c
}

func benchKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = "key:" + strconv.Itoa(i)
	}
	return keys
}

func BenchmarkCache_Get(b *testing.B) {
	c := newBenchCache(b, 1024)
	keys := benchKeys(1024)
	for i, k := range keys {
		_ = c.Set(k, i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(keys[i&1023])
	}
}

func BenchmarkCache_Set(b *testing.B) {
	c := newBenchCache(b, 1024)
	keys := benchKeys(1024)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(keys[i&1023], i)
	}
}

func BenchmarkCache_SetRejected(b *testing.B) {
	c := newBenchCache(b, 1024)
	keys := benchKeys(2048)
	for i := range 1024 {
		_ = c.Set(keys[i], i)
	}

	// 满且无过期条目：每次都会扫描一遍再拒绝
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(keys[1024+i&1023], i)
	}
}

func BenchmarkCache_GetParallel(b *testing.B) {
	c := newBenchCache(b, 1024)
	keys := benchKeys(1024)
	for i, k := range keys {
		_ = c.Set(k, i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = c.Get(keys[i&1023])
			i++
		}
	})
}

func BenchmarkCache_ClearExpired(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			c := newBenchCache(b, n)
			keys := benchKeys(n)
			for i, k := range keys {
				_ = c.Set(k, i)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.ClearExpired()
			}
		})
	}
}
