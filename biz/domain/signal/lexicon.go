package signal

import (
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/pkg/ac"
)

// 词典分类用的静态词表
// 词表按声明顺序参与意图平局判定, 顺序即优先声明者胜出

// IntentDef 一类意图的定义
type IntentDef struct {
	Label    string
	Priority string
	Keywords []string
}

// Intents 全部意图, 平局时取先声明者
var Intents = []*IntentDef{
	{
		Label:    cst.IntentTechnicalSupport,
		Priority: cst.PriorityHigh,
		Keywords: []string{
			"error", "bug", "broken", "crash", "not working", "doesn't work",
			"404", "500", "timeout", "slow", "stuck", "failed", "报错", "打不开", "崩溃",
		},
	},
	{
		Label:    cst.IntentBilling,
		Priority: cst.PriorityHigh,
		Keywords: []string{
			"bill", "invoice", "charge", "charged", "payment", "refund",
			"subscription", "card", "price", "overcharged", "账单", "扣费", "退款",
		},
	},
	{
		Label:    cst.IntentAccountManagement,
		Priority: cst.PriorityMedium,
		Keywords: []string{
			"password", "reset", "login", "log in", "sign in", "account",
			"email address", "profile", "delete my account", "密码", "登录", "账号",
		},
	},
	{
		Label:    cst.IntentFeatureQuestion,
		Priority: cst.PriorityMedium,
		Keywords: []string{
			"how do i", "how to", "can i", "feature", "report", "analysis",
			"export", "pdf", "property search", "怎么用", "功能",
		},
	},
	{
		Label:    cst.IntentSales,
		Priority: cst.PriorityMedium,
		Keywords: []string{
			"demo", "trial", "pricing", "purchase", "enterprise", "upgrade plan",
			"团队版", "购买",
		},
	},
	{
		Label:    cst.IntentFeedback,
		Priority: cst.PriorityLow,
		Keywords: []string{
			"suggestion", "suggest", "feedback", "would be nice", "improvement",
			"wish", "建议",
		},
	},
}

// 情感词表
var (
	NegativeWords = []string{
		"terrible", "awful", "horrible", "useless", "broken", "frustrated",
		"frustrating", "angry", "worst", "hate", "disappointed", "disappointing",
		"nothing works", "not working", "waste", "ridiculous", "unacceptable",
		"scam", "cancel", "垃圾", "太差", "生气", "失望",
	}
	PositiveWords = []string{
		"thanks", "thank you", "great", "awesome", "perfect", "love",
		"excellent", "helpful", "amazing", "good", "appreciate", "wonderful",
		"谢谢", "很好", "满意",
	}
)

// 预构建的自动机, 词表是静态的所以构建失败直接panic
var (
	negativeMatcher = ac.MustMatcher(NegativeWords)
	positiveMatcher = ac.MustMatcher(PositiveWords)
	intentMatchers  = buildIntentMatchers()
)

func buildIntentMatchers() []*ac.Matcher {
	ms := make([]*ac.Matcher, len(Intents))
	for i, def := range Intents {
		ms[i] = ac.MustMatcher(def.Keywords)
	}
	return ms
}
