package errno

import (
	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

const (
	UnAuthErrCode      = 1000
	UnImplementErrCode = 888
	OIDErrCode         = 777
)

func init() {
	code.Register(
		UnAuthErrCode,
		"身份认证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		UnImplementErrCode,
		"功能暂未实现",
		code.WithAffectStability(true),
	)
	code.Register(
		OIDErrCode,
		"标识符格式非法",
		code.WithAffectStability(false),
	)
}
