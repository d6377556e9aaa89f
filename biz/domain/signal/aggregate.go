package signal

import (
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
)

// DefaultWindow 聚合分析的用户消息窗口上限
const DefaultWindow = 5

// Aggregate 对最近window条用户消息做对话级情感聚合
// 多数标签为整体情感, 置信度为与多数一致的消息占比
// 窗口内出现连续两条负面用户消息时置frustrated
func Aggregate(msgs []*conversation.Message, window int) *ConversationSentiment {
	if window <= 0 || window > DefaultWindow {
		window = DefaultWindow
	}

	// 取末尾window条用户消息, 保持时间顺序
	var users []*conversation.Message
	for i := len(msgs) - 1; i >= 0 && len(users) < window; i-- {
		if msgs[i].Role == cst.User && msgs[i].Sentiment != "" {
			users = append(users, msgs[i])
		}
	}
	for i, j := 0, len(users)-1; i < j; i, j = i+1, j-1 {
		users[i], users[j] = users[j], users[i]
	}

	if len(users) == 0 {
		return &ConversationSentiment{Overall: cst.SentimentNeutral, Confidence: 0.5, Trajectory: cst.TrajectoryStable}
	}

	// 多数标签, 计数相同时负面优先
	counts := make(map[string]int, 4)
	for _, m := range users {
		counts[m.Sentiment]++
	}
	overall, max := cst.SentimentNeutral, 0
	for _, label := range []string{cst.SentimentNegative, cst.SentimentMixed, cst.SentimentNeutral, cst.SentimentPositive} {
		if counts[label] > max {
			overall, max = label, counts[label]
		}
	}

	// 连续两条负面
	frustrated := false
	for i := 1; i < len(users); i++ {
		if users[i-1].Sentiment == cst.SentimentNegative && users[i].Sentiment == cst.SentimentNegative {
			frustrated = true
			break
		}
	}

	return &ConversationSentiment{
		Overall:    overall,
		Confidence: float64(max) / float64(len(users)),
		Trajectory: trajectory(users),
		Frustrated: frustrated,
	}
}

// trajectory 比较窗口首尾消息的情感分值
func trajectory(users []*conversation.Message) string {
	if len(users) < 2 {
		return cst.TrajectoryStable
	}
	first, last := score(users[0].Sentiment), score(users[len(users)-1].Sentiment)
	switch {
	case last > first:
		return cst.TrajectoryImproving
	case last < first:
		return cst.TrajectoryDeclining
	default:
		return cst.TrajectoryStable
	}
}

func score(label string) float64 {
	switch label {
	case cst.SentimentPositive:
		return 1
	case cst.SentimentNegative:
		return 0
	default:
		return 0.5
	}
}
