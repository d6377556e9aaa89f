package conversation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source 助手消息引用的知识库来源
type Source struct {
	Source     string  `json:"source" bson:"source"`
	Category   string  `json:"category,omitempty" bson:"category,omitempty"`
	Similarity float64 `json:"similarity" bson:"similarity"`
}

// Message 对话中的一条消息, 内容追加后不再修改
type Message struct {
	Role      string    `json:"role" bson:"role"`                             // user/assistant
	Content   string    `json:"content" bson:"content"`                       // 原始文本
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`                   // 消息时间
	Sentiment string    `json:"sentiment,omitempty" bson:"sentiment,omitempty"` // 仅用户消息
	Intent    string    `json:"intent,omitempty" bson:"intent,omitempty"`       // 仅用户消息
	Sources   []*Source `json:"sources,omitempty" bson:"sources,omitempty"`     // 仅助手消息
}

// Sentiment 对话级情感聚合
type Sentiment struct {
	Label      string `json:"label" bson:"label"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Trajectory string `json:"trajectory,omitempty" bson:"trajectory,omitempty"`
	Frustrated bool   `json:"frustrated,omitempty" bson:"frustrated,omitempty"`
}

// Conversation 一个用户与客服助手的持久化对话
// escalated为true时escalation_reason必定非空
type Conversation struct {
	ConversationId   primitive.ObjectID `json:"conversation_id" bson:"_id"`
	UserId           primitive.ObjectID `json:"user_id" bson:"user_id"`
	UserEmail        string             `json:"user_email,omitempty" bson:"user_email,omitempty"`
	Messages         []*Message         `json:"messages" bson:"messages"`
	Sentiment        *Sentiment         `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
	Intent           string             `json:"intent,omitempty" bson:"intent,omitempty"`
	Priority         string             `json:"priority,omitempty" bson:"priority,omitempty"`
	Escalated        bool               `json:"escalated" bson:"escalated"`
	EscalationReason string             `json:"escalation_reason,omitempty" bson:"escalation_reason,omitempty"`
	Status           string             `json:"status" bson:"status"`
	AssignedTo       string             `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	CreateTime       time.Time          `json:"create_time" bson:"create_time"`
	UpdateTime       time.Time          `json:"update_time" bson:"update_time"`
	LastMessageAt    time.Time          `json:"last_message_at" bson:"last_message_at"`
	ResolvedAt       *time.Time         `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolvedBy       string             `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	ResolutionNotes  string             `json:"resolution_notes,omitempty" bson:"resolution_notes,omitempty"`
}
