package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/knowledge"
)

// fakeEmbedder 返回固定向量
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
	err    error
}

func (f *fakeKnowledgeMapper) InsertMany(_ context.Context, chunks []*knowledge.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeKnowledgeMapper) ListByCategory(_ context.Context, _ string, _ int64) ([]*knowledge.Chunk, error) {
	return f.chunks, f.err
}

func (f *fakeKnowledgeMapper) DropAll(_ context.Context) error {
	f.chunks = nil
	return nil
}

func chunk(content string, embedding []float64) *knowledge.Chunk {
	return &knowledge.Chunk{
		Content:   content,
		Embedding: embedding,
		Metadata:  &knowledge.Metadata{Source: "faq.md", Category: "faq"},
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	// 维度不一致或零向量
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestSearchFiltersAndSorts(t *testing.T) {
	m := &fakeKnowledgeMapper{chunks: []*knowledge.Chunk{
		chunk("exact", []float64{1, 0}),
		chunk("close", []float64{0.9, 0.1}),
		chunk("orthogonal", []float64{0, 1}),
	}}
	r := New(&fakeEmbedder{vector: []float64{1, 0}}, m, 3, 0.7, time.Second)

	results := r.Search(context.Background(), "query", 0, 0)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Chunk.Content)
	assert.Equal(t, "close", results[1].Chunk.Content)
	assert.GreaterOrEqual(t, results[1].Similarity, 0.7)
}

func TestSearchHonorsLimit(t *testing.T) {
	m := &fakeKnowledgeMapper{chunks: []*knowledge.Chunk{
		chunk("a", []float64{1, 0}),
		chunk("b", []float64{1, 0}),
		chunk("c", []float64{1, 0}),
	}}
	r := New(&fakeEmbedder{vector: []float64{1, 0}}, m, 2, 0.5, time.Second)

	results := r.Search(context.Background(), "query", 0, 0)
	assert.Len(t, results, 2)
}

func TestSearchDegradesOnEmbedderFailure(t *testing.T) {
	m := &fakeKnowledgeMapper{chunks: []*knowledge.Chunk{chunk("a", []float64{1, 0})}}
	r := New(&fakeEmbedder{err: errors.New("backend down")}, m, 3, 0.7, time.Second)

	assert.Nil(t, r.Search(context.Background(), "query", 0, 0))
}

func TestSearchDegradesOnMapperFailure(t *testing.T) {
	m := &fakeKnowledgeMapper{err: errors.New("mongo down")}
	r := New(&fakeEmbedder{vector: []float64{1, 0}}, m, 3, 0.7, time.Second)

	assert.Nil(t, r.Search(context.Background(), "query", 0, 0))
}

func TestSearchEmptyKnowledgeBase(t *testing.T) {
	r := New(&fakeEmbedder{vector: []float64{1, 0}}, &fakeKnowledgeMapper{}, 3, 0.7, time.Second)
	assert.Empty(t, r.Search(context.Background(), "query", 0, 0))
}

func TestIngestSplitsAndStores(t *testing.T) {
	m := &fakeKnowledgeMapper{}
	r := New(&fakeEmbedder{vector: []float64{1, 0}}, m, 3, 0.7, time.Second)

	total, err := r.Ingest(context.Background(), []*Document{
		{Content: "first paragraph\n\nsecond paragraph", Source: "guide.md", Category: "guide"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, m.chunks, 1)
	assert.Equal(t, "guide.md", m.chunks[0].Metadata.Source)
	assert.Equal(t, int32(1), m.chunks[0].Metadata.TotalChunks)
}

func TestIngestFailsOnEmbedderError(t *testing.T) {
	r := New(&fakeEmbedder{err: errors.New("backend down")}, &fakeKnowledgeMapper{}, 3, 0.7, time.Second)
	_, err := r.Ingest(context.Background(), []*Document{{Content: "text", Source: "s"}})
	assert.Error(t, err)
}

func TestSplitChunks(t *testing.T) {
	// 短段落合并进同一切片
	parts := SplitChunks("aa\n\nbb", 500)
	require.Len(t, parts, 1)

	// 超过size的段落被硬切
	long := make([]rune, 1200)
	for i := range long {
		long[i] = '字'
	}
	parts = SplitChunks(string(long), 500)
	require.Len(t, parts, 3)
	assert.Len(t, []rune(parts[0]), 500)

	// 空内容
	assert.Empty(t, SplitChunks("", 500))
	assert.Empty(t, SplitChunks("\n\n\n\n", 500))
}
