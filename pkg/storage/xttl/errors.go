package xttl

import "errors"

// =============================================================================
// 配置错误
// =============================================================================

var (
	// ErrInvalidConfig 表示构造参数无效。
	// 以下更具体的配置错误都包装了它，可统一用 errors.Is(err, ErrInvalidConfig) 判断。
	ErrInvalidConfig = errors.New("xttl: invalid configuration")

	// ErrInvalidTTL 表示 TTL 不是正数。
	ErrInvalidTTL = fmtConfigErr("ttl must be positive")

	// ErrInvalidSweepInterval 表示清理周期不是正数。
	ErrInvalidSweepInterval = fmtConfigErr("sweep interval must be positive")

	// ErrInvalidCapacity 表示容量小于 1。
	ErrInvalidCapacity = fmtConfigErr("capacity must be at least 1")
)

// =============================================================================
// 运行期错误
// =============================================================================

var (
	// ErrCapacityExceeded 表示写入新 key 时缓存已满，且清理过期条目后仍然已满。
	// 此时缓存保持不变，调用方可稍后重试或调用 Clear。
	ErrCapacityExceeded = errors.New("xttl: capacity exceeded")

	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xttl: cache is closed")
)

// configError 让具体配置错误同时匹配自身与 ErrInvalidConfig。
type configError struct {
	msg string
}

func fmtConfigErr(msg string) error {
	return &configError{msg: "xttl: " + msg}
}

func (e *configError) Error() string { return e.msg }

// Is 支持 errors.Is(err, ErrInvalidConfig)。
func (e *configError) Is(target error) bool {
	return target == ErrInvalidConfig
}
