package logs

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// logs 是日志门面, 统一封装logx
// 业务代码不直接依赖具体日志实现

func Infof(format string, v ...any) {
	logx.Infof(format, v...)
}

func Warnf(format string, v ...any) {
	logx.Slowf(format, v...)
}

func Errorf(format string, v ...any) {
	logx.Errorf(format, v...)
}

// Error 与Errorf等价, 兼容早期调用
func Error(format string, v ...any) {
	logx.Errorf(format, v...)
}

func CtxInfof(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Infof(format, v...)
}

func CtxWarnf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Slowf(format, v...)
}

func CtxErrorf(ctx context.Context, format string, v ...any) {
	logx.WithContext(ctx).Errorf(format, v...)
}
