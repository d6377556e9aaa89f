package signal

import (
	"context"

	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
)

var _ Classifier = (*fallbackClassifier)(nil)

// fallbackClassifier 主分类器失败时降级到词典分类器
// 信号提取只影响回复质量, 失败不向上传播
type fallbackClassifier struct {
	primary Classifier
	backup  *HeuristicClassifier
}

// WithFallback 包装主分类器, 失败时退回词典分类
func WithFallback(primary Classifier) Classifier {
	return &fallbackClassifier{primary: primary, backup: NewHeuristicClassifier()}
}

func (c *fallbackClassifier) Analyze(ctx context.Context, text string) (*Sentiment, error) {
	if c.primary != nil {
		if s, err := c.primary.Analyze(ctx, text); err == nil {
			return s, nil
		} else {
			logs.CtxWarnf(ctx, "[signal] remote analyze fallback: %s", errorx.ErrorWithoutStack(err))
		}
	}
	return c.backup.Analyze(ctx, text)
}

func (c *fallbackClassifier) Classify(ctx context.Context, text string) (*Intent, error) {
	if c.primary != nil {
		if in, err := c.primary.Classify(ctx, text); err == nil {
			return in, nil
		} else {
			logs.CtxWarnf(ctx, "[signal] remote classify fallback: %s", errorx.ErrorWithoutStack(err))
		}
	}
	return c.backup.Classify(ctx, text)
}
