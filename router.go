package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertz "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/xh-polaris/estate-support-api/biz/adaptor/controller/core_api"
)

// register 注册所有路由
func register(h *server.Hertz) {
	h.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(hertz.StatusOK, map[string]string{"msg": "pong"})
	})

	support := h.Group("/support")
	support.POST("/chat", core_api.Chat)
	support.GET("/conversations", core_api.ListConversations)
	support.GET("/conversations/history", core_api.History)
	support.POST("/conversations/resolve", core_api.Resolve)
	support.POST("/conversations/assign", core_api.Assign)
	support.GET("/analytics", core_api.Analytics)
	support.POST("/knowledge/ingest", core_api.IngestKnowledge)
}
