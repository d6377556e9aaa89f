package signal

import (
	"context"
)

// signal 负责从用户消息中提取情感与意图信号

// Scores 情感置信度分布, 三项之和为1
type Scores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sentiment 单条消息的情感
type Sentiment struct {
	Label      string  `json:"label"` // positive/neutral/negative/mixed
	Confidence float64 `json:"confidence"`
	Scores     *Scores `json:"scores"`
}

// Intent 单条消息的意图
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Priority   string  `json:"priority"` // 意图静态优先级
}

// ConversationSentiment 对话级情感聚合
type ConversationSentiment struct {
	Overall    string  `json:"overall"`
	Confidence float64 `json:"confidence"` // 与多数标签一致的消息占比
	Trajectory string  `json:"trajectory"` // improving/declining/stable
	Frustrated bool    `json:"frustrated"` // 窗口内存在连续两条负面用户消息
}

// Classifier 情感与意图分类器
// 远端实现与本地词典实现在构造期选择, 不做运行时探测
type Classifier interface {
	Analyze(ctx context.Context, text string) (*Sentiment, error)
	Classify(ctx context.Context, text string) (*Intent, error)
}
