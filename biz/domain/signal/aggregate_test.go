package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
)

func userMsg(sentiment string) *conversation.Message {
	return &conversation.Message{Role: cst.User, Content: "x", Sentiment: sentiment}
}

func assistantMsg() *conversation.Message {
	return &conversation.Message{Role: cst.Assistant, Content: "y"}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, DefaultWindow)
	assert.Equal(t, cst.SentimentNeutral, s.Overall)
	assert.Equal(t, 0.5, s.Confidence)
	assert.Equal(t, cst.TrajectoryStable, s.Trajectory)
	assert.False(t, s.Frustrated)
}

func TestAggregateMajorityNegative(t *testing.T) {
	msgs := []*conversation.Message{
		userMsg(cst.SentimentNegative), assistantMsg(),
		userMsg(cst.SentimentNegative), assistantMsg(),
		userMsg(cst.SentimentNeutral),
	}
	s := Aggregate(msgs, DefaultWindow)
	assert.Equal(t, cst.SentimentNegative, s.Overall)
	assert.InDelta(t, 2.0/3.0, s.Confidence, 1e-9)
	assert.True(t, s.Frustrated) // 连续两条负面
	assert.Equal(t, cst.TrajectoryImproving, s.Trajectory)
}

func TestAggregateIgnoresAssistantMessages(t *testing.T) {
	msgs := []*conversation.Message{
		assistantMsg(), userMsg(cst.SentimentPositive), assistantMsg(),
	}
	s := Aggregate(msgs, DefaultWindow)
	assert.Equal(t, cst.SentimentPositive, s.Overall)
	assert.Equal(t, 1.0, s.Confidence)
}

func TestAggregateWindowLimit(t *testing.T) {
	// 窗口外的早期负面消息不参与聚合
	var msgs []*conversation.Message
	msgs = append(msgs, userMsg(cst.SentimentNegative), userMsg(cst.SentimentNegative))
	for i := 0; i < DefaultWindow; i++ {
		msgs = append(msgs, userMsg(cst.SentimentPositive))
	}
	s := Aggregate(msgs, DefaultWindow)
	assert.Equal(t, cst.SentimentPositive, s.Overall)
	assert.Equal(t, 1.0, s.Confidence)
	assert.False(t, s.Frustrated)
}

func TestAggregateTiePrefersNegative(t *testing.T) {
	msgs := []*conversation.Message{
		userMsg(cst.SentimentPositive), userMsg(cst.SentimentNegative),
	}
	s := Aggregate(msgs, DefaultWindow)
	assert.Equal(t, cst.SentimentNegative, s.Overall)
	assert.Equal(t, cst.TrajectoryDeclining, s.Trajectory)
}

func TestAggregateNonConsecutiveNegativeNotFrustrated(t *testing.T) {
	msgs := []*conversation.Message{
		userMsg(cst.SentimentNegative), userMsg(cst.SentimentNeutral), userMsg(cst.SentimentNegative),
	}
	s := Aggregate(msgs, DefaultWindow)
	assert.False(t, s.Frustrated)
}
