package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/xh-polaris/estate-support-api/biz/application/dto/basic"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/util"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "conversation"
	cacheKeyPrefix = "cache:conversation:"
)

type MongoMapper interface {
	FindByIdAndUser(ctx context.Context, cid, uid string) (c *Conversation, err error)
	FindById(ctx context.Context, cid string) (c *Conversation, err error)
	Insert(ctx context.Context, c *Conversation) (err error)
	Replace(ctx context.Context, c *Conversation) (err error)
	ListByUser(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
	Assign(ctx context.Context, cid, agent string) (err error)
	Resolve(ctx context.Context, cid, by, notes string) (err error)
	CountByStatus(ctx context.Context) (counts map[string]int64, err error)
	CountEscalated(ctx context.Context) (total int64, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewConversationMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// FindByIdAndUser 按(conversation_id, user_id)点查, 不存在时返回(nil, nil)
func (m *mongoMapper) FindByIdAndUser(ctx context.Context, cid, uid string) (c *Conversation, err error) {
	oids, err := util.ObjectIDsFromHex(cid, uid)
	if err != nil {
		logs.Errorf("[mapper] [conversation] [FindByIdAndUser] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	ocid, ouid := oids[0], oids[1]

	c = new(Conversation)
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+cid, c, bson.M{cst.Id: ocid, cst.UserId: ouid}); err != nil {
		if errors.Is(err, monc.ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// FindById 按conversation_id点查, 人工处理入口用
func (m *mongoMapper) FindById(ctx context.Context, cid string) (c *Conversation, err error) {
	ocid, err := primitive.ObjectIDFromHex(cid)
	if err != nil {
		return nil, err
	}
	c = new(Conversation)
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+cid, c, bson.M{cst.Id: ocid}); err != nil {
		if errors.Is(err, monc.ErrNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Insert 首轮写入, create_time由调用方设置
func (m *mongoMapper) Insert(ctx context.Context, c *Conversation) (err error) {
	_, err = m.conn.InsertOne(ctx, cacheKeyPrefix+c.ConversationId.Hex(), c)
	return err
}

// Replace 整文档替换, 后写者完全胜出
func (m *mongoMapper) Replace(ctx context.Context, c *Conversation) (err error) {
	_, err = m.conn.ReplaceOne(ctx, cacheKeyPrefix+c.ConversationId.Hex(), bson.M{cst.Id: c.ConversationId}, c)
	return err
}

// ListByUser 分页查询用户对话列表, 创建时间倒序
func (m *mongoMapper) ListByUser(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	ouid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[mapper] [conversation] [ListByUser] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	var total int64
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.CreateTime: -1})
	filter := bson.M{cst.UserId: ouid}
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, false, err
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, err
	}
	return cs, util.HasMore(total, page), err
}

// Assign 分配人工客服, active -> assigned
func (m *mongoMapper) Assign(ctx context.Context, cid, agent string) (err error) {
	ocid, err := primitive.ObjectIDFromHex(cid)
	if err != nil {
		return err
	}
	_, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, bson.M{cst.Id: ocid},
		bson.M{cst.Set: bson.M{cst.Status: cst.StatusAssigned, cst.AssignedTo: agent, cst.UpdateTime: time.Now()}})
	return err
}

// Resolve 关闭对话
// 已关闭的对话再次关闭会覆盖resolved_at/resolved_by, 当前按文档化行为处理
func (m *mongoMapper) Resolve(ctx context.Context, cid, by, notes string) (err error) {
	ocid, err := primitive.ObjectIDFromHex(cid)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, bson.M{cst.Id: ocid},
		bson.M{cst.Set: bson.M{
			cst.Status: cst.StatusResolved, cst.ResolvedAt: now, cst.ResolvedBy: by,
			cst.ResolutionNote: notes, cst.UpdateTime: now,
		}})
	return err
}

// CountByStatus 各状态对话数, 对外的分析口径
func (m *mongoMapper) CountByStatus(ctx context.Context) (counts map[string]int64, err error) {
	counts = make(map[string]int64, 3)
	for _, s := range []string{cst.StatusActive, cst.StatusAssigned, cst.StatusResolved} {
		var n int64
		if n, err = m.conn.CountDocuments(ctx, bson.M{cst.Status: s}); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, nil
}

// CountEscalated 升级对话总数
func (m *mongoMapper) CountEscalated(ctx context.Context) (total int64, err error) {
	return m.conn.CountDocuments(ctx, bson.M{cst.Escalated: true})
}
