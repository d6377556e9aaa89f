package util

import (
	"github.com/xh-polaris/estate-support-api/biz/application/dto/basic"
)

// Success 返回成功的basic.Response指针
func Success() *basic.Response {
	return &basic.Response{
		Code: 200,
		Msg:  "success",
	}
}

// NilDefault v为nil时返回默认值def
func NilDefault[T any](v *T, def *T) *T {
	if v == nil {
		return def
	}
	return v
}
