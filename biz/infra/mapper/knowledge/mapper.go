package knowledge

import (
	"context"
	"errors"

	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const collection = "knowledge_chunk"

type MongoMapper interface {
	InsertMany(ctx context.Context, chunks []*Chunk) (err error)
	ListByCategory(ctx context.Context, category string, limit int64) (chunks []*Chunk, err error)
	DropAll(ctx context.Context) (err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewKnowledgeMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// InsertMany 批量写入知识块, 离线入库管道用
func (m *mongoMapper) InsertMany(ctx context.Context, chunks []*Chunk) (err error) {
	for _, c := range chunks {
		if _, err = m.conn.InsertOneNoCache(ctx, c); err != nil {
			logs.Errorf("[knowledge mapper] insert err:%s", errorx.ErrorWithoutStack(err))
			return err
		}
	}
	return nil
}

// ListByCategory 取出候选知识块, category为空时取全部
// 相似度计算在检索域内完成, mapper只负责取数
func (m *mongoMapper) ListByCategory(ctx context.Context, category string, limit int64) (chunks []*Chunk, err error) {
	filter := bson.M{}
	if category != "" {
		filter[cst.Category] = category
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if err = m.conn.Find(ctx, &chunks, filter, opts); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.Errorf("[knowledge mapper] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.KnowledgeSearchErrCode)
	}
	return chunks, nil
}

// DropAll 清空知识库, 仅全量重建时调用
func (m *mongoMapper) DropAll(ctx context.Context) (err error) {
	_, err = m.conn.DeleteMany(ctx, bson.M{})
	return err
}
