package knowledge

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metadata 知识块的来源信息
type Metadata struct {
	Source      string `json:"source" bson:"source"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	ChunkIndex  int32  `json:"chunk_index" bson:"chunk_index"`
	TotalChunks int32  `json:"total_chunks" bson:"total_chunks"`
}

// Chunk 知识库中的一个切片, 入库后不可变
// embedding维度与配置的向量化模型一致
type Chunk struct {
	ChunkId    primitive.ObjectID `json:"chunk_id" bson:"_id"`
	Content    string             `json:"content" bson:"content"`
	Embedding  []float64          `json:"embedding" bson:"embedding"`
	Metadata   *Metadata          `json:"metadata" bson:"metadata"`
	CreateTime time.Time          `json:"create_time" bson:"create_time"`
}
