package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/xh-polaris/estate-support-api/biz/adaptor"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/core_api"
	"github.com/xh-polaris/estate-support-api/provider"
)

// Chat 一轮客服对话
// @router /support/chat [POST]
func Chat(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.ChatReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().SupportService.Chat(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListConversations 当前用户的对话列表
// @router /support/conversations [GET]
func ListConversations(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.ListConversationsReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().ConversationService.ListConversations(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// History 单个对话的完整消息历史
// @router /support/conversations/history [GET]
func History(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.HistoryReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().ConversationService.History(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Resolve 关闭对话
// @router /support/conversations/resolve [POST]
func Resolve(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.ResolveReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().ConversationService.Resolve(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Assign 分配人工客服
// @router /support/conversations/assign [POST]
func Assign(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.AssignReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().ConversationService.Assign(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Analytics 对话运营统计
// @router /support/analytics [GET]
func Analytics(ctx context.Context, c *app.RequestContext) {
	resp, err := provider.Get().ConversationService.Analytics(adaptor.InjectContext(ctx, c))
	adaptor.PostProcess(ctx, c, nil, resp, err)
}

// IngestKnowledge 知识库离线入库
// @router /support/knowledge/ingest [POST]
func IngestKnowledge(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.IngestReq
	if err = c.BindAndValidate(&req); err != nil {
		adaptor.PostError(ctx, c, err)
		return
	}
	resp, err := provider.Get().KnowledgeService.Ingest(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
