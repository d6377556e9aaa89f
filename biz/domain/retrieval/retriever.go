package retrieval

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/knowledge"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

// retrieval 知识库向量检索
// 检索失败只影响回复质量, 降级为无引用生成, 永远不让一轮对话失败

// Result 一条检索结果
type Result struct {
	Chunk      *knowledge.Chunk
	Similarity float64
}

// Retriever 将查询向量化后在知识库中做余弦相似度召回
type Retriever struct {
	embedder  embedding.Embedder
	mapper    knowledge.MongoMapper
	limit     int
	threshold float64
	timeout   time.Duration
}

// New 组装检索器, 测试可注入假embedder
func New(embedder embedding.Embedder, mapper knowledge.MongoMapper, limit int, threshold float64, timeout time.Duration) *Retriever {
	if limit <= 0 {
		limit = 3
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Retriever{embedder: embedder, mapper: mapper, limit: limit, threshold: threshold, timeout: timeout}
}

// NewRetriever 按配置构建基于Azure OpenAI向量化的检索器
func NewRetriever(ctx context.Context, c *config.Config, mapper knowledge.MongoMapper) (*Retriever, error) {
	dim := c.AzureOpenAI.EmbeddingDim
	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:     c.AzureOpenAI.APIKey,
		BaseURL:    c.AzureOpenAI.BaseURL,
		APIVersion: c.AzureOpenAI.APIVersion,
		Model:      c.AzureOpenAI.EmbeddingModel,
		Dimensions: &dim,
	})
	if err != nil {
		return nil, err
	}
	r := c.Support.Retrieval
	return New(embedder, mapper, r.Limit, r.Threshold, time.Duration(r.TimeoutSec)*time.Second), nil
}

// Search 返回相似度不低于threshold的前limit个知识块, 相似度降序
// 向量化或取数失败时返回空列表, 不返回错误
func (r *Retriever) Search(ctx context.Context, query string, limit int, threshold float64) []*Result {
	if limit <= 0 {
		limit = r.limit
	}
	if threshold <= 0 {
		threshold = r.threshold
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vectors, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		err = errorx.WrapByCode(err, errno.RetrievalErrCode)
		logs.CtxWarnf(ctx, "[retrieval] embed query err:%s", errorx.ErrorWithoutStack(err))
		return nil
	}
	qv := vectors[0]

	chunks, err := r.mapper.ListByCategory(ctx, "", 0)
	if err != nil {
		err = errorx.WrapByCode(err, errno.RetrievalErrCode)
		logs.CtxWarnf(ctx, "[retrieval] list chunks err:%s", errorx.ErrorWithoutStack(err))
		return nil
	}

	results := make([]*Result, 0, len(chunks))
	for _, c := range chunks {
		if sim := Cosine(qv, c.Embedding); sim >= threshold {
			results = append(results, &Result{Chunk: c, Similarity: sim})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Cosine 余弦相似度, 维度不一致或零向量时返回0
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
