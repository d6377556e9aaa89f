package signal

import (
	"context"

	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
)

var _ Classifier = (*HeuristicClassifier)(nil)

// HeuristicClassifier 基于词典命中次数的本地分类器
// 远端模型不可用时的兜底实现, 对任意输入都给出合法结果, 永不返回错误
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Analyze 统计正负词命中数并归一化为置信度分布
// 空输入返回低置信度的neutral
func (c *HeuristicClassifier) Analyze(_ context.Context, text string) (*Sentiment, error) {
	neg := negativeMatcher.Count(text)
	pos := positiveMatcher.Count(text)
	total := neg + pos

	if total == 0 { // 无命中, 近似均匀分布
		return &Sentiment{
			Label:      cst.SentimentNeutral,
			Confidence: 0.5,
			Scores:     &Scores{Positive: 0.25, Neutral: 0.5, Negative: 0.25},
		}, nil
	}

	// 正负都有且数量接近时判为mixed
	if neg > 0 && pos > 0 && abs(neg-pos) <= 1 {
		return &Sentiment{
			Label:      cst.SentimentMixed,
			Confidence: 0.6,
			Scores: &Scores{
				Positive: float64(pos) / float64(total) * 0.8,
				Neutral:  0.2,
				Negative: float64(neg) / float64(total) * 0.8,
			},
		}, nil
	}

	// 命中越多置信度越高, 单次命中即达到升级阈值0.75
	dominant := neg
	label := cst.SentimentNegative
	if pos > neg {
		dominant, label = pos, cst.SentimentPositive
	}
	confidence := 0.6 + 0.15*float64(dominant)
	if confidence > 0.95 {
		confidence = 0.95
	}

	rest := 1 - confidence
	s := &Scores{Neutral: rest * 0.7}
	if label == cst.SentimentNegative {
		s.Negative, s.Positive = confidence, rest*0.3
	} else {
		s.Positive, s.Negative = confidence, rest*0.3
	}
	return &Sentiment{Label: label, Confidence: confidence, Scores: s}, nil
}

// Classify 统计各意图关键词命中数, 取最多者
// 平局取先声明的意图, 零命中返回general
func (c *HeuristicClassifier) Classify(_ context.Context, text string) (*Intent, error) {
	best, bestHits := -1, 0
	for i := range Intents {
		hits := intentMatchers[i].Count(text)
		if hits > bestHits { // 仅严格大于才替换, 平局保持先声明者
			best, bestHits = i, hits
		}
	}

	if best < 0 {
		return &Intent{Label: cst.IntentGeneral, Confidence: 0.5, Priority: cst.PriorityLow}, nil
	}

	confidence := 0.5 + 0.15*float64(bestHits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	def := Intents[best]
	return &Intent{Label: def.Label, Confidence: confidence, Priority: def.Priority}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
