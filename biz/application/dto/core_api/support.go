package core_api

import (
	"github.com/xh-polaris/estate-support-api/biz/application/dto/basic"
)

// 客服对话相关DTO

// ChatReq 一轮客服对话
// ConversationId为空时新建对话
type ChatReq struct {
	ConversationId string `json:"conversation_id,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
	Message        string `json:"message"`
}

// Source 回复引用的知识库来源
type Source struct {
	Source     string  `json:"source"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
}

type ChatResp struct {
	Resp           *basic.Response `json:"resp,omitempty"`
	ConversationId string          `json:"conversation_id,omitempty"`
	Response       string          `json:"response,omitempty"`
	Sentiment      string          `json:"sentiment,omitempty"`
	Intent         string          `json:"intent,omitempty"`
	Escalated      bool            `json:"escalated,omitempty"`
	Sources        []*Source       `json:"sources,omitempty"`
}

type ListConversationsReq struct {
	Page *basic.Page `json:"page,omitempty"`
}

// ConversationInfo 对话摘要信息
type ConversationInfo struct {
	ConversationId string `json:"conversation_id"`
	Sentiment      string `json:"sentiment,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Priority       string `json:"priority,omitempty"`
	Escalated      bool   `json:"escalated,omitempty"`
	Status         string `json:"status"`
	AssignedTo     string `json:"assigned_to,omitempty"`
	LastMessageAt  int64  `json:"last_message_at,omitempty"`
	CreateTime     int64  `json:"create_time,omitempty"`
}

type ListConversationsResp struct {
	Resp          *basic.Response     `json:"resp,omitempty"`
	Conversations []*ConversationInfo `json:"conversations,omitempty"`
	HasMore       bool                `json:"has_more,omitempty"`
}

type HistoryReq struct {
	ConversationId string `json:"conversation_id"`
}

// MessageInfo 单条消息
type MessageInfo struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	Sources   []*Source `json:"sources,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

type HistoryResp struct {
	Resp     *basic.Response `json:"resp,omitempty"`
	Messages []*MessageInfo  `json:"messages,omitempty"`
}

type ResolveReq struct {
	ConversationId  string `json:"conversation_id"`
	ResolvedBy      string `json:"resolved_by,omitempty"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}

type ResolveResp struct {
	Resp *basic.Response `json:"resp,omitempty"`
}

type AssignReq struct {
	ConversationId string `json:"conversation_id"`
	AgentId        string `json:"agent_id"`
}

type AssignResp struct {
	Resp *basic.Response `json:"resp,omitempty"`
}

type AnalyticsResp struct {
	Resp           *basic.Response  `json:"resp,omitempty"`
	StatusCounts   map[string]int64 `json:"status_counts,omitempty"`
	EscalatedCount int64            `json:"escalated_count,omitempty"`
}

// IngestDoc 待入库的原始文档
type IngestDoc struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Category string `json:"category,omitempty"`
}

type IngestReq struct {
	Documents []*IngestDoc `json:"documents"`
}

type IngestResp struct {
	Resp   *basic.Response `json:"resp,omitempty"`
	Chunks int64           `json:"chunks,omitempty"`
}
