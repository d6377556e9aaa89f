package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/knowledge"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 离线入库管道: 切片 -> 向量化 -> 写入
// 请求路径对知识库只读, 写入只经由这里

// Document 待入库的原始文档
type Document struct {
	Content  string
	Source   string
	Category string
}

// chunkSize 单个知识块的目标长度(rune)
const chunkSize = 500

// Ingest 将文档切片并向量化后写入知识库, 返回写入的切片数
func (r *Retriever) Ingest(ctx context.Context, docs []*Document) (total int64, err error) {
	now := time.Now()
	for _, doc := range docs {
		parts := SplitChunks(doc.Content, chunkSize)
		if len(parts) == 0 {
			continue
		}

		var vectors [][]float64
		if vectors, err = r.embedder.EmbedStrings(ctx, parts); err != nil {
			return total, errorx.WrapByCode(err, errno.EmbeddingErrCode)
		}
		if len(vectors) != len(parts) {
			return total, errorx.New(errno.EmbeddingErrCode)
		}

		chunks := make([]*knowledge.Chunk, len(parts))
		for i, p := range parts {
			chunks[i] = &knowledge.Chunk{
				ChunkId:   primitive.NewObjectID(),
				Content:   p,
				Embedding: vectors[i],
				Metadata: &knowledge.Metadata{
					Source:      doc.Source,
					Category:    doc.Category,
					ChunkIndex:  int32(i),
					TotalChunks: int32(len(parts)),
				},
				CreateTime: now,
			}
		}
		if err = r.mapper.InsertMany(ctx, chunks); err != nil {
			return total, errorx.WrapByCode(err, errno.KnowledgeIngestErrCode)
		}
		total += int64(len(chunks))
	}
	return total, nil
}

// SplitChunks 按段落组装不超过size的切片, 超长段落按size硬切
func SplitChunks(content string, size int) (parts []string) {
	if size <= 0 {
		size = chunkSize
	}
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
	}

	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		for len(runes) > size { // 超长段落硬切
			flush()
			parts = append(parts, string(runes[:size]))
			runes = runes[size:]
		}
		if cur.Len() > 0 && len([]rune(cur.String()))+len(runes) > size {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(string(runes))
	}
	flush()
	return parts
}
