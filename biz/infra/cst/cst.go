package cst

const (
	// Assistant is the role of an assistant, means the message is returned by ChatModel.
	Assistant = "assistant"
	// User is the role of a user, means the message is a user message.
	User = "user"
	// System is the role of a system, means the message is a system message.
	System = "system"
)

// 对话状态机
const (
	// StatusActive 对话进行中
	StatusActive = "active"
	// StatusAssigned 已分配人工客服
	StatusAssigned = "assigned"
	// StatusResolved 已解决
	StatusResolved = "resolved"
)

// 升级原因
const (
	ReasonNegativeSentiment = "negative_sentiment"
	ReasonUnresolvedIssue   = "unresolved_issue"
	ReasonBillingIssue      = "billing_issue"
	ReasonTechnicalError    = "technical_error"
	ReasonUserRequest       = "user_request"
)

// 优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 情感标签
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
)

// 情感走向
const (
	TrajectoryImproving = "improving"
	TrajectoryDeclining = "declining"
	TrajectoryStable    = "stable"
)

// 意图标签
const (
	IntentTechnicalSupport  = "technical_support"
	IntentBilling           = "billing"
	IntentFeatureQuestion   = "feature_question"
	IntentSales             = "sales"
	IntentFeedback          = "feedback"
	IntentAccountManagement = "account_management"
	IntentGeneral           = "general"
)

// mapper层字段枚举
const (
	Id             = "_id"
	ConversationId = "conversation_id"
	UserId         = "user_id"
	CreateTime     = "create_time"
	UpdateTime     = "update_time"
	LastMessageAt  = "last_message_at"
	ResolvedAt     = "resolved_at"
	ResolvedBy     = "resolved_by"
	ResolutionNote = "resolution_notes"
	AssignedTo     = "assigned_to"
	Escalated      = "escalated"
	Category       = "metadata.category"

	Status = "status"

	Set = "$set"
)
