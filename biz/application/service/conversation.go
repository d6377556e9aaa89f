package service

import (
	"context"

	"github.com/google/wire"
	"github.com/xh-polaris/estate-support-api/biz/adaptor"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/core_api"
	"github.com/xh-polaris/estate-support-api/biz/domain/convo"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/biz/infra/util"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

type IConversationService interface {
	ListConversations(ctx context.Context, req *core_api.ListConversationsReq) (*core_api.ListConversationsResp, error)
	History(ctx context.Context, req *core_api.HistoryReq) (*core_api.HistoryResp, error)
	Resolve(ctx context.Context, req *core_api.ResolveReq) (*core_api.ResolveResp, error)
	Assign(ctx context.Context, req *core_api.AssignReq) (*core_api.AssignResp, error)
	Analytics(ctx context.Context) (*core_api.AnalyticsResp, error)
}

type ConversationService struct {
	Store              *convo.Store
	ConversationMapper conversation.MongoMapper
}

var ConversationServiceSet = wire.NewSet(
	wire.Struct(new(ConversationService), "*"),
	wire.Bind(new(IConversationService), new(*ConversationService)),
)

func (s *ConversationService) ListConversations(ctx context.Context, req *core_api.ListConversationsReq) (*core_api.ListConversationsResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	// 分页获取该用户的对话列表
	conversations, hasMore, err := s.ConversationMapper.ListByUser(ctx, uid, req.Page)
	if err != nil {
		logs.Errorf("list conversations error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	items := make([]*core_api.ConversationInfo, len(conversations))
	for i, conv := range conversations {
		info := &core_api.ConversationInfo{
			ConversationId: conv.ConversationId.Hex(),
			Intent:         conv.Intent,
			Priority:       conv.Priority,
			Escalated:      conv.Escalated,
			Status:         conv.Status,
			AssignedTo:     conv.AssignedTo,
			CreateTime:     conv.CreateTime.Unix(),
		}
		if conv.Sentiment != nil {
			info.Sentiment = conv.Sentiment.Label
		}
		if !conv.LastMessageAt.IsZero() {
			info.LastMessageAt = conv.LastMessageAt.Unix()
		}
		items[i] = info
	}
	return &core_api.ListConversationsResp{Resp: util.Success(), Conversations: items, HasMore: hasMore}, nil
}

func (s *ConversationService) History(ctx context.Context, req *core_api.HistoryReq) (*core_api.HistoryResp, error) {
	// 鉴权, 只能看自己的对话
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	c, err := s.Store.Get(ctx, req.ConversationId, uid)
	if err != nil {
		logs.Errorf("get conversation history error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationHistoryErrCode)
	}
	if c == nil {
		return nil, errorx.New(errno.ConversationNotFoundCode)
	}

	msgs := make([]*core_api.MessageInfo, len(c.Messages))
	for i, m := range c.Messages {
		info := &core_api.MessageInfo{
			Role:      m.Role,
			Content:   m.Content,
			Sentiment: m.Sentiment,
			Intent:    m.Intent,
			Timestamp: m.Timestamp.Unix(),
		}
		for _, src := range m.Sources {
			info.Sources = append(info.Sources, &core_api.Source{Source: src.Source, Category: src.Category, Similarity: src.Similarity})
		}
		msgs[i] = info
	}
	return &core_api.HistoryResp{Resp: util.Success(), Messages: msgs}, nil
}

func (s *ConversationService) Resolve(ctx context.Context, req *core_api.ResolveReq) (*core_api.ResolveResp, error) {
	// 鉴权
	if _, err := adaptor.ExtractUserId(ctx); err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	if err := s.Store.Resolve(ctx, req.ConversationId, req.ResolvedBy, req.ResolutionNotes); err != nil {
		logs.Errorf("resolve conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return &core_api.ResolveResp{Resp: util.Success()}, nil
}

func (s *ConversationService) Assign(ctx context.Context, req *core_api.AssignReq) (*core_api.AssignResp, error) {
	// 鉴权
	if _, err := adaptor.ExtractUserId(ctx); err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	if err := s.Store.Assign(ctx, req.ConversationId, req.AgentId); err != nil {
		logs.Errorf("assign conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return &core_api.AssignResp{Resp: util.Success()}, nil
}

// Analytics 对话维度的运营统计
func (s *ConversationService) Analytics(ctx context.Context) (*core_api.AnalyticsResp, error) {
	// 鉴权
	if _, err := adaptor.ExtractUserId(ctx); err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	counts, err := s.ConversationMapper.CountByStatus(ctx)
	if err != nil {
		logs.Errorf("count by status error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	escalated, err := s.ConversationMapper.CountEscalated(ctx)
	if err != nil {
		logs.Errorf("count escalated error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	return &core_api.AnalyticsResp{Resp: util.Success(), StatusCounts: counts, EscalatedCount: escalated}, nil
}
