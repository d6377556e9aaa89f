package errno

import (
	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

const (
	EmbeddingErrCode = 60001
	ChatModelErrCode = 60002
	WebhookErrCode   = 60003
)

func init() {
	code.Register(
		EmbeddingErrCode,
		"向量化服务访问失败",
		code.WithAffectStability(false),
	)
	code.Register(
		ChatModelErrCode,
		"大模型服务访问失败",
		code.WithAffectStability(true),
	)
	code.Register(
		WebhookErrCode,
		"使用 Webhook 访问 {url} 错误",
		code.WithAffectStability(false),
	)
}
