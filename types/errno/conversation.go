package errno

import (
	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

const (
	ConversationGetErrCode     = 30001
	ConversationListErrCode    = 30002
	ConversationHistoryErrCode = 30003
	ConversationResolveErrCode = 30004
	ConversationAssignErrCode  = 30005
	ConversationNotFoundCode   = 30006
)

func init() {
	code.Register(
		ConversationGetErrCode,
		"获取对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationListErrCode,
		"分页获取历史对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationHistoryErrCode,
		"获取对话历史记录失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationResolveErrCode,
		"关闭对话失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationAssignErrCode,
		"分配人工客服失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationNotFoundCode,
		"对话不存在",
		code.WithAffectStability(false),
	)
}
