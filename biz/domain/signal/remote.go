package signal

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

var _ Classifier = (*RemoteClassifier)(nil)

const (
	sentimentPrompt = "你是情感分析器. 对用户消息输出JSON: " +
		`{"label":"positive|neutral|negative|mixed","confidence":0-1,"scores":{"positive":x,"neutral":y,"negative":z}}, ` +
		"scores三项之和为1, 只输出JSON"
	intentPrompt = "你是客服意图分类器. 从technical_support/billing/feature_question/sales/feedback/account_management/general中选择一项, " +
		`输出JSON: {"label":"...","confidence":0-1}, 只输出JSON`
)

// RemoteClassifier 使用大模型做情感与意图分类
// 在openai模型基础上封装, 失败时由调用侧回退到词典分类器
type RemoteClassifier struct {
	cli *openai.ChatModel
}

func NewRemoteClassifier(ctx context.Context, config *config.Config) (*RemoteClassifier, error) {
	cli, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:     config.AzureOpenAI.APIKey,
		BaseURL:    config.AzureOpenAI.BaseURL,
		APIVersion: config.AzureOpenAI.APIVersion,
		Model:      config.AzureOpenAI.ChatModel,
	})
	if err != nil {
		return nil, err
	}
	return &RemoteClassifier{cli: cli}, nil
}

func (c *RemoteClassifier) Analyze(ctx context.Context, text string) (*Sentiment, error) {
	out, err := c.generate(ctx, sentimentPrompt, text)
	if err != nil {
		return nil, err
	}
	s := new(Sentiment)
	if err = sonic.Unmarshal([]byte(out), s); err != nil {
		return nil, errorx.WrapByCode(err, errno.SignalBackendCode)
	}
	if !validSentiment(s.Label) || s.Scores == nil {
		return nil, errorx.New(errno.SignalBackendCode)
	}
	return s, nil
}

func (c *RemoteClassifier) Classify(ctx context.Context, text string) (*Intent, error) {
	out, err := c.generate(ctx, intentPrompt, text)
	if err != nil {
		return nil, err
	}
	in := new(Intent)
	if err = sonic.Unmarshal([]byte(out), in); err != nil {
		return nil, errorx.WrapByCode(err, errno.SignalBackendCode)
	}
	// 优先级以静态表为准, 不信任模型输出
	in.Priority = cst.PriorityLow
	found := in.Label == cst.IntentGeneral
	for _, def := range Intents {
		if def.Label == in.Label {
			in.Priority, found = def.Priority, true
			break
		}
	}
	if !found {
		return nil, errorx.New(errno.SignalBackendCode)
	}
	return in, nil
}

func (c *RemoteClassifier) generate(ctx context.Context, system, text string) (string, error) {
	msg, err := c.cli.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(text),
	})
	if err != nil {
		// 模型访问失败与输出不合法分开计数
		return "", errorx.WrapByCode(err, errno.ChatModelErrCode)
	}
	return msg.Content, nil
}

func validSentiment(label string) bool {
	switch label {
	case cst.SentimentPositive, cst.SentimentNeutral, cst.SentimentNegative, cst.SentimentMixed:
		return true
	}
	return false
}
