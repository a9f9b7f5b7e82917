package xttl

import (
	"time"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// DefaultCapacity 是 Config.Capacity 为 0 时使用的容量。
const DefaultCapacity = 1000

// Config 定义缓存的必需配置。
//
// 字段带 koanf 标签，可以直接通过 xconf 从 YAML/JSON 反序列化：
//
//	cache:
//	  ttl: 30s
//	  sweep_interval: 10s
//	  capacity: 1000
type Config struct {
	// TTL 条目存活时间，必须 > 0。所有条目共用同一个 TTL。
	TTL time.Duration `koanf:"ttl"`

	// SweepInterval 后台清理周期，必须 > 0。
	// 首次清理发生在构造后一个周期，而非立即执行。
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// Capacity 最大条目数。0 表示使用 DefaultCapacity，负数无效。
	Capacity int `koanf:"capacity"`
}

// withDefaults 返回补齐默认值后的配置副本。
func (c Config) withDefaults() Config {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	return c
}

// validate 校验配置，返回的错误都匹配 ErrInvalidConfig。
func (c Config) validate() error {
	if c.TTL <= 0 {
		return ErrInvalidTTL
	}
	if c.SweepInterval <= 0 {
		return ErrInvalidSweepInterval
	}
	if c.Capacity < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

// Option 定义缓存可选配置函数类型。
type Option func(*options)

type options struct {
	name     string
	logger   xlog.Logger
	observer xmetrics.Observer
	now      func() time.Time
}

func defaultOptions() *options {
	return &options{
		name:     "default",
		logger:   xlog.Discard(),
		observer: xmetrics.NoopObserver{},
		now:      time.Now,
	}
}

// WithName 设置缓存名称，作为日志与指标的 cache 属性。
// 空字符串会被忽略。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger 设置日志记录器。
//
// 清理结果记录为 Debug，容量拒绝记录为 Warn，关闭记录为 Info。
// 日志始终在锁外输出。nil 会被忽略，默认丢弃所有日志。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器，为 set/clear_expired/clear/close 记录跨度与指标。
//
// Get 是热路径，不做观测，命中率通过 Stats 获取。
// nil 会被忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// withClock 替换时钟，仅供包内测试使用。
func withClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
