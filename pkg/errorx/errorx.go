package errorx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

// errorx 是业务异常
// 最佳实践:
// - 业务处理链路的末端使用errorx, PostProcess处理后给出用户友好的响应
// - 错误码与默认文案在types/errno中注册
// - 除却末端的errorx外, 其余的error照常处理

// StatusError 携带业务错误码的异常
type StatusError interface {
	error
	Code() int32
	Msg() string
}

type statusError struct {
	code  int32
	msg   string
	cause error
}

type Option func(e *statusError)

// KV 填充文案中的{key}占位符
func KV(k, v string) Option {
	return func(e *statusError) {
		e.msg = strings.ReplaceAll(e.msg, "{"+k+"}", v)
	}
}

// New 根据注册的错误码构造errorx
func New(c int32, opts ...Option) error {
	e := &statusError{code: c, msg: messageOf(c)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WrapByCode 将err包装为指定错误码的errorx, err为nil时返回nil
func WrapByCode(err error, c int32, opts ...Option) error {
	if err == nil {
		return nil
	}
	var se StatusError
	if errors.As(err, &se) { // 已带错误码, 保留原始码
		return err
	}
	e := &statusError{code: c, msg: messageOf(c), cause: err}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func messageOf(c int32) string {
	if d := code.Find(c); d != nil {
		return d.Message
	}
	return "服务内部错误"
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code=%d, msg=%s, cause=%s", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("code=%d, msg=%s", e.code, e.msg)
}

func (e *statusError) Code() int32 { return e.code }

func (e *statusError) Msg() string { return e.msg }

func (e *statusError) Unwrap() error { return e.cause }

// ErrorWithoutStack 返回不带堆栈的错误描述, 日志用
func ErrorWithoutStack(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
