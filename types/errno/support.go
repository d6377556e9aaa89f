package errno

import (
	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

const (
	ChatTurnErrCode     = 40001
	GenerationErrCode   = 40002
	PersistenceErrCode  = 40003
	SignalBackendCode   = 40004
	RetrievalErrCode    = 40005
	NotificationErrCode = 40006
)

func init() {
	code.Register(
		ChatTurnErrCode,
		"客服对话处理失败, 请稍后重试",
		code.WithAffectStability(true),
	)
	code.Register(
		GenerationErrCode,
		"回复生成失败, 请稍后重试",
		code.WithAffectStability(true),
	)
	code.Register(
		PersistenceErrCode,
		"对话保存失败, 请稍后重试",
		code.WithAffectStability(true),
	)
	code.Register(
		SignalBackendCode,
		"情感意图识别服务不可用",
		code.WithAffectStability(false),
	)
	code.Register(
		RetrievalErrCode,
		"知识库检索服务不可用",
		code.WithAffectStability(false),
	)
	code.Register(
		NotificationErrCode,
		"升级通知发送失败",
		code.WithAffectStability(false),
	)
}
