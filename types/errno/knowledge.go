package errno

import (
	"github.com/xh-polaris/estate-support-api/pkg/errorx/code"
)

const (
	KnowledgeIngestErrCode = 50001
	KnowledgeSearchErrCode = 50002
)

func init() {
	code.Register(
		KnowledgeIngestErrCode,
		"知识库写入失败",
		code.WithAffectStability(false),
	)
	code.Register(
		KnowledgeSearchErrCode,
		"知识库检索失败",
		code.WithAffectStability(false),
	)
}
