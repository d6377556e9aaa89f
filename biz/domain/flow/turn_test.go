package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/basic"
	"github.com/xh-polaris/estate-support-api/biz/domain/convo"
	"github.com/xh-polaris/estate-support-api/biz/domain/escalate"
	"github.com/xh-polaris/estate-support-api/biz/domain/generate"
	"github.com/xh-polaris/estate-support-api/biz/domain/retrieval"
	"github.com/xh-polaris/estate-support-api/biz/domain/signal"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/knowledge"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeConvMapper struct {
	docs map[string]*conversation.Conversation
}

func newFakeConvMapper() *fakeConvMapper {
	return &fakeConvMapper{docs: make(map[string]*conversation.Conversation)}
}

func cloneConv(c *conversation.Conversation) *conversation.Conversation {
	cp := *c
	cp.Messages = append([]*conversation.Message{}, c.Messages...)
	return &cp
}

func (m *fakeConvMapper) FindByIdAndUser(_ context.Context, cid, uid string) (*conversation.Conversation, error) {
	c, ok := m.docs[cid]
	if !ok || c.UserId.Hex() != uid {
		return nil, nil
	}
	return cloneConv(c), nil
}

func (m *fakeConvMapper) FindById(_ context.Context, cid string) (*conversation.Conversation, error) {
	c, ok := m.docs[cid]
	if !ok {
		return nil, nil
	}
	return cloneConv(c), nil
}

func (m *fakeConvMapper) Insert(_ context.Context, c *conversation.Conversation) error {
	m.docs[c.ConversationId.Hex()] = cloneConv(c)
	return nil
}

func (m *fakeConvMapper) Replace(_ context.Context, c *conversation.Conversation) error {
	m.docs[c.ConversationId.Hex()] = cloneConv(c)
	return nil
}

func (m *fakeConvMapper) ListByUser(_ context.Context, _ string, _ *basic.Page) ([]*conversation.Conversation, bool, error) {
	return nil, false, nil
}

func (m *fakeConvMapper) Assign(_ context.Context, cid, agent string) error {
	m.docs[cid].Status, m.docs[cid].AssignedTo = cst.StatusAssigned, agent
	return nil
}

func (m *fakeConvMapper) Resolve(_ context.Context, cid, by, notes string) error {
	now := time.Now()
	c := m.docs[cid]
	c.Status, c.ResolvedAt, c.ResolvedBy, c.ResolutionNotes = cst.StatusResolved, &now, by, notes
	return nil
}

func (m *fakeConvMapper) CountByStatus(_ context.Context) (map[string]int64, error) {
	return nil, nil
}

func (m *fakeConvMapper) CountEscalated(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

type fakeKnowledgeMapper struct {
	chunks []*knowledge.Chunk
}

func (f *fakeKnowledgeMapper) InsertMany(_ context.Context, chunks []*knowledge.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeKnowledgeMapper) ListByCategory(_ context.Context, _ string, _ int64) ([]*knowledge.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeKnowledgeMapper) DropAll(_ context.Context) error {
	f.chunks = nil
	return nil
}

type fakeChatModel struct {
	reply string
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

type fixture struct {
	orch   *Orchestrator
	mapper *fakeConvMapper
	kb     *fakeKnowledgeMapper
}

func newFixture(cli model.BaseChatModel) *fixture {
	c := &config.Config{}
	mapper := newFakeConvMapper()
	kb := &fakeKnowledgeMapper{}
	orch := NewOrchestrator(c,
		convo.New(nil, mapper),
		retrieval.New(&fakeEmbedder{vector: []float64{1, 0}}, kb, 3, 0.7, time.Second),
		signal.WithFallback(nil),
		escalate.NewPolicy(c),
		generate.New(cli, c),
		nil,
	)
	return &fixture{orch: orch, mapper: mapper, kb: kb}
}

func TestDoTurnNegativeSentimentEscalates(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "很抱歉给您带来不便"})

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "This is terrible, nothing works",
	})
	require.NoError(t, err)

	assert.True(t, result.Decision.ShouldEscalate)
	assert.Equal(t, cst.ReasonNegativeSentiment, result.Decision.Reason)
	assert.Equal(t, cst.PriorityHigh, result.Decision.Priority)
	assert.True(t, strings.HasSuffix(result.Response, generate.DefaultHandoffText))
	assert.Equal(t, cst.SentimentNegative, result.Sentiment.Label)

	stored, _ := f.mapper.FindById(context.Background(), result.Conversation.ConversationId.Hex())
	require.NotNil(t, stored)
	assert.True(t, stored.Escalated)
	assert.Equal(t, cst.ReasonNegativeSentiment, stored.EscalationReason)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, cst.SentimentNegative, stored.Messages[0].Sentiment)
}

func TestDoTurnNeutralNoEscalation(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "工作日九点到十八点"})

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "what are your office hours",
	})
	require.NoError(t, err)

	assert.False(t, result.Decision.ShouldEscalate)
	assert.Equal(t, "工作日九点到十八点", result.Response)

	stored, _ := f.mapper.FindById(context.Background(), result.Conversation.ConversationId.Hex())
	assert.False(t, stored.Escalated)
	assert.Empty(t, stored.EscalationReason)
	assert.Equal(t, cst.StatusActive, stored.Status)
}

func TestDoTurnPasswordResetNoEscalation(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "在设置页面点击重置密码"})

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "How do I reset my password?",
	})
	require.NoError(t, err)

	assert.Equal(t, cst.IntentAccountManagement, result.Intent.Label)
	assert.False(t, result.Decision.ShouldEscalate)
	assert.Equal(t, cst.PriorityLow, result.Decision.Priority)
}

func TestDoTurnUnresolvedAfterMaxTurns(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "再试试这个办法"})
	uid := primitive.NewObjectID()
	cid := primitive.NewObjectID()

	// 已有4轮助手回复仍未解决
	var msgs []*conversation.Message
	for i := 0; i < 4; i++ {
		msgs = append(msgs,
			&conversation.Message{Role: cst.User, Content: "still broken?"},
			&conversation.Message{Role: cst.Assistant, Content: "try this"})
	}
	require.NoError(t, f.mapper.Insert(context.Background(), &conversation.Conversation{
		ConversationId: cid,
		UserId:         uid,
		Messages:       msgs,
		Status:         cst.StatusActive,
	}))

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		ConversationId: cid.Hex(),
		UserId:         uid,
		Message:        "anything else I can try",
	})
	require.NoError(t, err)

	assert.True(t, result.Decision.ShouldEscalate)
	assert.Equal(t, cst.ReasonUnresolvedIssue, result.Decision.Reason)
	assert.Equal(t, cst.PriorityMedium, result.Decision.Priority)
}

func TestDoTurnUserRequestsHuman(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "好的"})

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "I need to speak to a human",
	})
	require.NoError(t, err)

	assert.True(t, result.Decision.ShouldEscalate)
	assert.Equal(t, cst.ReasonUserRequest, result.Decision.Reason)
	assert.Equal(t, cst.PriorityMedium, result.Decision.Priority)
}

func TestDoTurnContinuesConversation(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "ok"})
	uid := primitive.NewObjectID()

	first, err := f.orch.DoTurn(context.Background(), &TurnInput{UserId: uid, Message: "how to export a report"})
	require.NoError(t, err)

	second, err := f.orch.DoTurn(context.Background(), &TurnInput{
		ConversationId: first.Conversation.ConversationId.Hex(),
		UserId:         uid,
		Message:        "thanks, got it",
	})
	require.NoError(t, err)

	assert.Equal(t, first.Conversation.ConversationId, second.Conversation.ConversationId)
	stored, _ := f.mapper.FindById(context.Background(), first.Conversation.ConversationId.Hex())
	assert.Len(t, stored.Messages, 4)
}

func TestDoTurnConversationNotFound(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "ok"})

	_, err := f.orch.DoTurn(context.Background(), &TurnInput{
		ConversationId: primitive.NewObjectID().Hex(),
		UserId:         primitive.NewObjectID(),
		Message:        "hello",
	})
	assert.Error(t, err)
}

func TestDoTurnGenerationFailureNotPersisted(t *testing.T) {
	f := newFixture(&fakeChatModel{err: errors.New("model down")})

	_, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "hello",
	})
	require.Error(t, err)
	assert.Empty(t, f.mapper.docs)
}

func TestDoTurnAttachesSources(t *testing.T) {
	f := newFixture(&fakeChatModel{reply: "根据资料解答"})
	f.kb.chunks = []*knowledge.Chunk{{
		Content:   "月度报告在分析页面导出",
		Embedding: []float64{1, 0},
		Metadata:  &knowledge.Metadata{Source: "faq.md", Category: "faq"},
	}}

	result, err := f.orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "how to export a report",
	})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, "faq.md", result.Sources[0].Source)

	stored, _ := f.mapper.FindById(context.Background(), result.Conversation.ConversationId.Hex())
	require.Len(t, stored.Messages, 2)
	require.Len(t, stored.Messages[1].Sources, 1)
	assert.Equal(t, "faq.md", stored.Messages[1].Sources[0].Source)
}

func TestDoTurnRetrievalFailureDegrades(t *testing.T) {
	// 向量化不可用时本轮仍然成功, 只是没有引用
	c := &config.Config{}
	mapper := newFakeConvMapper()
	orch := NewOrchestrator(c,
		convo.New(nil, mapper),
		retrieval.New(&fakeEmbedder{err: errors.New("embedding down")}, &fakeKnowledgeMapper{}, 3, 0.7, time.Second),
		signal.WithFallback(nil),
		escalate.NewPolicy(c),
		generate.New(&fakeChatModel{reply: "ok"}, c),
		nil,
	)

	result, err := orch.DoTurn(context.Background(), &TurnInput{
		UserId:  primitive.NewObjectID(),
		Message: "how to export a report",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.Equal(t, "ok", result.Response)
}
