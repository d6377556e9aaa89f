package convo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/xh-polaris/estate-support-api/biz/infra/cache"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/* 对话存储域 */

const (
	cachePrefix = "estate:conversation:"
	cacheTTL    = 6 * time.Hour
)

// ErrInvalidTransition 状态机不允许的流转
var ErrInvalidTransition = errors.New("invalid status transition")

// Derived 一轮对话产生的派生字段, 随消息一起整体落库
type Derived struct {
	Sentiment        *conversation.Sentiment
	Intent           string
	Priority         string
	Escalated        bool
	EscalationReason string
}

// Store 对话存储, mongo之上叠一层redis缓存
// 写路径只有编排器一个, 通知与分析只读
type Store struct {
	cache  cache.Cmdable
	mapper conversation.MongoMapper
}

func New(cache cache.Cmdable, mapper conversation.MongoMapper) *Store {
	return &Store{cache: cache, mapper: mapper}
}

// Get 按(conversation_id, user_id)取对话, 不存在时返回(nil, nil)
// 缓存优先, 未命中时回源并重建缓存
func (s *Store) Get(ctx context.Context, cid, uid string) (c *conversation.Conversation, err error) {
	if c, err = s.getFromCache(ctx, cid); err == nil && c.UserId.Hex() == uid {
		return c, nil
	}
	if c, err = s.mapper.FindByIdAndUser(ctx, cid, uid); err != nil || c == nil {
		return c, err
	}
	s.rebuildCache(ctx, c)
	return c, nil
}

// NewConversation 构造一个尚未落库的新对话
func (s *Store) NewConversation(uid primitive.ObjectID, email string) *conversation.Conversation {
	now := time.Now()
	return &conversation.Conversation{
		ConversationId: primitive.NewObjectID(),
		UserId:         uid,
		UserEmail:      email,
		Status:         cst.StatusActive,
		Priority:       cst.PriorityLow,
		CreateTime:     now,
		UpdateTime:     now,
	}
}

// UpsertTurn 以整文档替换的方式持久化一轮对话
// c是写入方的完整视图: 既有消息 + 本轮(user, assistant)消息对, 消息对原子落库
//
// 写入前按conversation_id做存在性检查(read-then-write): 不假设底层存储
// 提供唯一约束式的原子upsert. 同一对话上的并发轮次因此存在后写者整体
// 覆盖先写者的丢失更新竞争, 这是已记录的弱一致点, 不是系统保证
func (s *Store) UpsertTurn(ctx context.Context, c *conversation.Conversation, userMsg, assistantMsg *conversation.Message, d *Derived) (*conversation.Conversation, error) {
	if d.Escalated && d.EscalationReason == "" { // escalated必须带原因
		return nil, errorx.New(errno.PersistenceErrCode)
	}

	now := time.Now()
	c.Messages = append(c.Messages, userMsg, assistantMsg)
	c.Sentiment = d.Sentiment
	c.Intent = d.Intent
	c.Priority = d.Priority
	c.Escalated = d.Escalated
	c.EscalationReason = d.EscalationReason
	c.UpdateTime = now
	c.LastMessageAt = now

	// 新消息到达已解决的对话时重新打开, 清空解决信息
	if c.Status == cst.StatusResolved {
		c.Status = cst.StatusActive
		c.ResolvedAt, c.ResolvedBy, c.ResolutionNotes = nil, "", ""
	}

	existing, err := s.mapper.FindById(ctx, c.ConversationId.Hex())
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.PersistenceErrCode)
	}
	if existing == nil { // 首轮
		c.CreateTime = now
		err = s.mapper.Insert(ctx, c)
	} else { // 整文档替换, 后写者完全胜出
		err = s.mapper.Replace(ctx, c)
	}
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.PersistenceErrCode)
	}

	s.rebuildCache(ctx, c)
	return c, nil
}

// Assign 分配人工客服, 仅active可流转
func (s *Store) Assign(ctx context.Context, cid, agent string) error {
	c, err := s.mapper.FindById(ctx, cid)
	if err != nil {
		return errorx.WrapByCode(err, errno.ConversationAssignErrCode)
	}
	if c == nil {
		return errorx.New(errno.ConversationNotFoundCode)
	}
	if c.Status != cst.StatusActive {
		return errorx.WrapByCode(ErrInvalidTransition, errno.ConversationAssignErrCode)
	}
	if err = s.mapper.Assign(ctx, cid, agent); err != nil {
		return errorx.WrapByCode(err, errno.ConversationAssignErrCode)
	}
	s.dropCache(ctx, cid)
	return nil
}

// Resolve 关闭对话, active与assigned均可直接关闭
// 对已关闭对话重复关闭会覆盖resolved_at/resolved_by, 按文档化行为保留
func (s *Store) Resolve(ctx context.Context, cid, by, notes string) error {
	c, err := s.mapper.FindById(ctx, cid)
	if err != nil {
		return errorx.WrapByCode(err, errno.ConversationResolveErrCode)
	}
	if c == nil {
		return errorx.New(errno.ConversationNotFoundCode)
	}
	if err = s.mapper.Resolve(ctx, cid, by, notes); err != nil {
		return errorx.WrapByCode(err, errno.ConversationResolveErrCode)
	}
	s.dropCache(ctx, cid)
	return nil
}

// getFromCache 从缓存取对话, 未命中时返回cache.Nil
func (s *Store) getFromCache(ctx context.Context, cid string) (*conversation.Conversation, error) {
	if s.cache == nil {
		return nil, cache.Nil
	}
	data, err := s.cache.Get(ctx, cachePrefix+cid).Result()
	if err != nil {
		return nil, err
	}
	c := new(conversation.Conversation)
	if err = sonic.Unmarshal([]byte(data), c); err != nil {
		return nil, err
	}
	return c, nil
}

// rebuildCache 重建对话缓存, 失败只记日志
func (s *Store) rebuildCache(ctx context.Context, c *conversation.Conversation) {
	if s.cache == nil {
		return
	}
	data, err := sonic.Marshal(c)
	if err != nil {
		logs.Errorf("[convo] marshal cache err:%s", errorx.ErrorWithoutStack(err))
		return
	}
	if err = s.cache.Set(ctx, cachePrefix+c.ConversationId.Hex(), string(data), cacheTTL).Err(); err != nil {
		logs.Errorf("[convo] rebuild cache err:%s", errorx.ErrorWithoutStack(err))
	}
}

func (s *Store) dropCache(ctx context.Context, cid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cachePrefix+cid).Err(); err != nil {
		logs.Errorf("[convo] drop cache err:%s", errorx.ErrorWithoutStack(err))
	}
}
