package code

import "sync"

// code 维护业务错误码注册表
// 各errno包在init中注册错误码与默认文案

type Definition struct {
	Code            int32
	Message         string
	AffectStability bool
}

type Option func(d *Definition)

// WithAffectStability 标记该错误是否影响服务稳定性指标
func WithAffectStability(affect bool) Option {
	return func(d *Definition) {
		d.AffectStability = affect
	}
}

var (
	mu       sync.RWMutex
	registry = make(map[int32]*Definition)
)

// Register 注册错误码, 重复注册时后者覆盖前者
func Register(code int32, msg string, opts ...Option) {
	d := &Definition{Code: code, Message: msg}
	for _, opt := range opts {
		opt(d)
	}
	mu.Lock()
	defer mu.Unlock()
	registry[code] = d
}

// Find 查找错误码定义, 未注册时返回nil
func Find(code int32) *Definition {
	mu.RLock()
	defer mu.RUnlock()
	return registry[code]
}
