package service

import (
	"context"

	"github.com/google/wire"
	"github.com/xh-polaris/estate-support-api/biz/adaptor"
	"github.com/xh-polaris/estate-support-api/biz/application/dto/core_api"
	"github.com/xh-polaris/estate-support-api/biz/domain/retrieval"
	"github.com/xh-polaris/estate-support-api/biz/infra/util"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

type IKnowledgeService interface {
	Ingest(ctx context.Context, req *core_api.IngestReq) (*core_api.IngestResp, error)
}

type KnowledgeService struct {
	Retriever *retrieval.Retriever
}

var KnowledgeServiceSet = wire.NewSet(
	wire.Struct(new(KnowledgeService), "*"),
	wire.Bind(new(IKnowledgeService), new(*KnowledgeService)),
)

// Ingest 知识库离线入库, 切片后向量化写入
func (s *KnowledgeService) Ingest(ctx context.Context, req *core_api.IngestReq) (*core_api.IngestResp, error) {
	// 鉴权
	if _, err := adaptor.ExtractUserId(ctx); err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if len(req.Documents) == 0 {
		return nil, errorx.New(errno.KnowledgeIngestErrCode)
	}

	docs := make([]*retrieval.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = &retrieval.Document{Content: d.Content, Source: d.Source, Category: d.Category}
	}
	total, err := s.Retriever.Ingest(ctx, docs)
	if err != nil {
		logs.Errorf("ingest knowledge error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.KnowledgeIngestErrCode)
	}
	return &core_api.IngestResp{Resp: util.Success(), Chunks: total}, nil
}
