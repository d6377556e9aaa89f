package escalate

import (
	"github.com/xh-polaris/estate-support-api/biz/domain/signal"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/pkg/ac"
)

// escalate 判定一轮对话是否升级给人工
// 规则按声明顺序求值, 先命中者胜出: 规则间并不互斥, 业务上情感信号优先,
// 所以顺序本身是设计的一部分而不是实现细节

// Input 升级判定的输入, 判定不产生副作用
type Input struct {
	Messages  []*conversation.Message
	Sentiment *signal.ConversationSentiment
	Intent    *signal.Intent
	Status    string
}

// Decision 升级判定结果
type Decision struct {
	ShouldEscalate bool   `json:"should_escalate"`
	Reason         string `json:"reason,omitempty"`
	Priority       string `json:"priority"`
}

// Rule 一条升级规则, Match返回nil表示未命中
type Rule struct {
	Name  string
	Match func(in *Input) *Decision
}

// DefaultPhrases 用户明确要求人工时的触发短语
var DefaultPhrases = []string{
	"speak to a human", "talk to a human", "human agent", "real person",
	"speak to someone", "talk to an agent", "customer service representative",
	"speak with a person", "人工客服", "转人工",
}

// DefaultHighPriorityIntents 高优先级意图集合
var DefaultHighPriorityIntents = []string{cst.IntentBilling, cst.IntentTechnicalSupport}

// Policy 有序规则表
type Policy struct {
	rules []*Rule
}

func NewPolicy(c *config.Config) *Policy {
	e := c.Support.Escalation
	if e.NegativeConfidence <= 0 {
		e.NegativeConfidence = 0.75
	}
	if e.MaxAssistantTurns <= 0 {
		e.MaxAssistantTurns = 4
	}
	if len(e.HighPriorityIntents) == 0 {
		e.HighPriorityIntents = DefaultHighPriorityIntents
	}
	if len(e.Phrases) == 0 {
		e.Phrases = DefaultPhrases
	}

	highPriority := make(map[string]bool, len(e.HighPriorityIntents))
	for _, it := range e.HighPriorityIntents {
		highPriority[it] = true
	}
	phrases := ac.MustMatcher(e.Phrases)

	return &Policy{rules: []*Rule{
		{
			// 对话整体负面且置信度达到阈值, 边界取等
			Name: "negative-sentiment",
			Match: func(in *Input) *Decision {
				if in.Sentiment != nil && in.Sentiment.Overall == cst.SentimentNegative &&
					in.Sentiment.Confidence >= e.NegativeConfidence {
					return &Decision{ShouldEscalate: true, Reason: cst.ReasonNegativeSentiment, Priority: cst.PriorityHigh}
				}
				return nil
			},
		},
		{
			// 连续负面消息触发的挫败信号
			Name: "user-frustration",
			Match: func(in *Input) *Decision {
				if in.Sentiment != nil && in.Sentiment.Frustrated {
					return &Decision{ShouldEscalate: true, Reason: cst.ReasonNegativeSentiment, Priority: cst.PriorityHigh}
				}
				return nil
			},
		},
		{
			// 助手回复轮次到达上限仍未解决
			Name: "unresolved-issue",
			Match: func(in *Input) *Decision {
				if in.Status == cst.StatusResolved {
					return nil
				}
				turns := 0
				for _, m := range in.Messages {
					if m.Role == cst.Assistant {
						turns++
					}
				}
				if turns >= e.MaxAssistantTurns {
					return &Decision{ShouldEscalate: true, Reason: cst.ReasonUnresolvedIssue, Priority: cst.PriorityMedium}
				}
				return nil
			},
		},
		{
			// 高优先级意图
			Name: "high-priority-intent",
			Match: func(in *Input) *Decision {
				if in.Intent == nil || in.Intent.Priority != cst.PriorityHigh || !highPriority[in.Intent.Label] {
					return nil
				}
				reason := cst.ReasonTechnicalError
				if in.Intent.Label == cst.IntentBilling {
					reason = cst.ReasonBillingIssue
				}
				return &Decision{ShouldEscalate: true, Reason: reason, Priority: cst.PriorityHigh}
			},
		},
		{
			// 用户明确要求人工
			Name: "user-request",
			Match: func(in *Input) *Decision {
				last := lastUserMessage(in.Messages)
				if last == nil {
					return nil
				}
				if hit, _ := phrases.Search(last.Content, true); hit {
					return &Decision{ShouldEscalate: true, Reason: cst.ReasonUserRequest, Priority: cst.PriorityMedium}
				}
				return nil
			},
		},
	}}
}

// Decide 按序求值规则, 任意输入都恰好产生一个判定
func (p *Policy) Decide(in *Input) *Decision {
	for _, r := range p.rules {
		if d := r.Match(in); d != nil {
			return d
		}
	}
	return &Decision{ShouldEscalate: false, Priority: cst.PriorityLow}
}

func lastUserMessage(msgs []*conversation.Message) *conversation.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == cst.User {
			return msgs[i]
		}
	}
	return nil
}
