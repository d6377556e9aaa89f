package service

import (
	"context"
	"strings"

	"github.com/google/wire"
	"github.com/xh-polaris/estate-support-api/biz/adaptor"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/core_api"
	"github.com/xh-polaris/estate-support-api/biz/domain/flow"
	"github.com/xh-polaris/estate-support-api/biz/infra/util"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ISupportService interface {
	Chat(ctx context.Context, req *core_api.ChatReq) (*core_api.ChatResp, error)
}

type SupportService struct {
	Orchestrator *flow.Orchestrator
}

var SupportServiceSet = wire.NewSet(
	wire.Struct(new(SupportService), "*"),
	wire.Bind(new(ISupportService), new(*SupportService)),
)

func (s *SupportService) Chat(ctx context.Context, req *core_api.ChatReq) (*core_api.ChatResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	ouid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.OIDErrCode)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errorx.New(errno.ChatTurnErrCode)
	}

	// 执行一轮对话编排
	result, err := s.Orchestrator.DoTurn(ctx, &flow.TurnInput{
		ConversationId: req.ConversationId,
		UserId:         ouid,
		UserEmail:      req.UserEmail,
		Message:        req.Message,
	})
	if err != nil {
		logs.Errorf("chat turn error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ChatTurnErrCode)
	}

	sources := make([]*core_api.Source, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = &core_api.Source{Source: src.Source, Category: src.Category, Similarity: src.Similarity}
	}
	return &core_api.ChatResp{
		Resp:           util.Success(),
		ConversationId: result.Conversation.ConversationId.Hex(),
		Response:       result.Response,
		Sentiment:      result.Sentiment.Label,
		Intent:         result.Intent.Label,
		Escalated:      result.Decision.ShouldEscalate,
		Sources:        sources,
	}, nil
}
