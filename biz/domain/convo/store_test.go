package convo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/basic"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeMapper 内存版mapper, 读取返回副本以模拟独立的读取视图
type fakeMapper struct {
	docs map[string]*conversation.Conversation
}

func newFakeMapper() *fakeMapper {
	return &fakeMapper{docs: make(map[string]*conversation.Conversation)}
}

func clone(c *conversation.Conversation) *conversation.Conversation {
	cp := *c
	cp.Messages = append([]*conversation.Message{}, c.Messages...)
	return &cp
}

func (m *fakeMapper) FindByIdAndUser(_ context.Context, cid, uid string) (*conversation.Conversation, error) {
	c, ok := m.docs[cid]
	if !ok || c.UserId.Hex() != uid {
		return nil, nil
	}
	return clone(c), nil
}

func (m *fakeMapper) FindById(_ context.Context, cid string) (*conversation.Conversation, error) {
	c, ok := m.docs[cid]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (m *fakeMapper) Insert(_ context.Context, c *conversation.Conversation) error {
	m.docs[c.ConversationId.Hex()] = clone(c)
	return nil
}

func (m *fakeMapper) Replace(_ context.Context, c *conversation.Conversation) error {
	m.docs[c.ConversationId.Hex()] = clone(c)
	return nil
}

func (m *fakeMapper) ListByUser(_ context.Context, uid string, _ *basic.Page) ([]*conversation.Conversation, bool, error) {
	var cs []*conversation.Conversation
	for _, c := range m.docs {
		if c.UserId.Hex() == uid {
			cs = append(cs, clone(c))
		}
	}
	return cs, false, nil
}

func (m *fakeMapper) Assign(_ context.Context, cid, agent string) error {
	c := m.docs[cid]
	c.Status, c.AssignedTo = cst.StatusAssigned, agent
	return nil
}

func (m *fakeMapper) Resolve(_ context.Context, cid, by, notes string) error {
	c := m.docs[cid]
	now := time.Now()
	c.Status, c.ResolvedAt, c.ResolvedBy, c.ResolutionNotes = cst.StatusResolved, &now, by, notes
	return nil
}

func (m *fakeMapper) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, c := range m.docs {
		counts[c.Status]++
	}
	return counts, nil
}

func (m *fakeMapper) CountEscalated(_ context.Context) (int64, error) {
	var n int64
	for _, c := range m.docs {
		if c.Escalated {
			n++
		}
	}
	return n, nil
}

func msg(role, content string) *conversation.Message {
	return &conversation.Message{Role: role, Content: content, Timestamp: time.Now()}
}

func derived() *Derived {
	return &Derived{
		Sentiment: &conversation.Sentiment{Label: cst.SentimentNeutral, Confidence: 0.5, Trajectory: cst.TrajectoryStable},
		Intent:    cst.IntentGeneral,
		Priority:  cst.PriorityLow,
	}
}

func TestUpsertTurnFirstTurnInserts(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "user@example.com")
	got, err := s.UpsertTurn(ctx, c, msg(cst.User, "hi"), msg(cst.Assistant, "hello"), derived())
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, cst.StatusActive, got.Status)
	assert.False(t, got.CreateTime.IsZero())

	stored, err := m.FindById(ctx, c.ConversationId.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Messages, 2)
}

func TestUpsertTurnAppendsPairAtomically(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q1"), msg(cst.Assistant, "a1"), derived())
	require.NoError(t, err)

	c2, err := s.Get(ctx, c.ConversationId.Hex(), c.UserId.Hex())
	require.NoError(t, err)
	_, err = s.UpsertTurn(ctx, c2, msg(cst.User, "q2"), msg(cst.Assistant, "a2"), derived())
	require.NoError(t, err)

	stored, _ := m.FindById(ctx, c.ConversationId.Hex())
	require.Len(t, stored.Messages, 4)
	assert.Equal(t, "q2", stored.Messages[2].Content)
	assert.Equal(t, "a2", stored.Messages[3].Content)
}

func TestUpsertTurnEscalatedRequiresReason(t *testing.T) {
	ctx := context.Background()
	s := New(nil, newFakeMapper())

	c := s.NewConversation(primitive.NewObjectID(), "")
	d := derived()
	d.Escalated = true
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q"), msg(cst.Assistant, "a"), d)
	assert.Error(t, err)
}

func TestUpsertTurnLostUpdateLastWriterWins(t *testing.T) {
	// 两个写入方读到同一快照后先后写入, 后写者整体覆盖先写者
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "base"), msg(cst.Assistant, "ok"), derived())
	require.NoError(t, err)

	a, err := s.Get(ctx, c.ConversationId.Hex(), c.UserId.Hex())
	require.NoError(t, err)
	b, err := s.Get(ctx, c.ConversationId.Hex(), c.UserId.Hex())
	require.NoError(t, err)

	_, err = s.UpsertTurn(ctx, a, msg(cst.User, "from-a"), msg(cst.Assistant, "ra"), derived())
	require.NoError(t, err)
	_, err = s.UpsertTurn(ctx, b, msg(cst.User, "from-b"), msg(cst.Assistant, "rb"), derived())
	require.NoError(t, err)

	stored, _ := m.FindById(ctx, c.ConversationId.Hex())
	require.Len(t, stored.Messages, 4)
	assert.Equal(t, "from-b", stored.Messages[2].Content)
}

func TestUpsertTurnReopensResolvedConversation(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q"), msg(cst.Assistant, "a"), derived())
	require.NoError(t, err)
	require.NoError(t, s.Resolve(ctx, c.ConversationId.Hex(), "agent-1", "done"))

	c2, err := s.Get(ctx, c.ConversationId.Hex(), c.UserId.Hex())
	require.NoError(t, err)
	require.Equal(t, cst.StatusResolved, c2.Status)

	got, err := s.UpsertTurn(ctx, c2, msg(cst.User, "again"), msg(cst.Assistant, "sure"), derived())
	require.NoError(t, err)
	assert.Equal(t, cst.StatusActive, got.Status)
	assert.Nil(t, got.ResolvedAt)
	assert.Empty(t, got.ResolvedBy)
}

func TestAssignOnlyFromActive(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q"), msg(cst.Assistant, "a"), derived())
	require.NoError(t, err)

	require.NoError(t, s.Assign(ctx, c.ConversationId.Hex(), "agent-1"))
	stored, _ := m.FindById(ctx, c.ConversationId.Hex())
	assert.Equal(t, cst.StatusAssigned, stored.Status)
	assert.Equal(t, "agent-1", stored.AssignedTo)

	// assigned状态不允许再次分配
	assert.Error(t, s.Assign(ctx, c.ConversationId.Hex(), "agent-2"))
}

func TestAssignNotFound(t *testing.T) {
	s := New(nil, newFakeMapper())
	assert.Error(t, s.Assign(context.Background(), primitive.NewObjectID().Hex(), "agent-1"))
}

func TestResolveFromAssigned(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q"), msg(cst.Assistant, "a"), derived())
	require.NoError(t, err)
	require.NoError(t, s.Assign(ctx, c.ConversationId.Hex(), "agent-1"))

	require.NoError(t, s.Resolve(ctx, c.ConversationId.Hex(), "agent-1", "fixed"))
	stored, _ := m.FindById(ctx, c.ConversationId.Hex())
	assert.Equal(t, cst.StatusResolved, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)

	// 重复关闭覆盖解决信息, 不报错
	require.NoError(t, s.Resolve(ctx, c.ConversationId.Hex(), "agent-2", "re-fixed"))
	stored, _ = m.FindById(ctx, c.ConversationId.Hex())
	assert.Equal(t, "agent-2", stored.ResolvedBy)
}

func TestGetWrongUser(t *testing.T) {
	ctx := context.Background()
	m := newFakeMapper()
	s := New(nil, m)

	c := s.NewConversation(primitive.NewObjectID(), "")
	_, err := s.UpsertTurn(ctx, c, msg(cst.User, "q"), msg(cst.Assistant, "a"), derived())
	require.NoError(t, err)

	got, err := s.Get(ctx, c.ConversationId.Hex(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Nil(t, got)
}
