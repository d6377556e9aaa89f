package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/xh-polaris/estate-support-api/biz/domain/retrieval"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

// generate 组装有据可依的提示词并调用大模型生成回复
// 生成失败向上传播: 宁可明确报错, 也不静默返回套话

const (
	// DefaultSystemPrompt 客服助手的默认系统提示词
	DefaultSystemPrompt = "你是一家房产投资SaaS平台的客服助手, 回答要简洁专业, " +
		"优先依据提供的参考资料作答, 资料不足时如实说明, 不要编造"
	// DefaultHandoffText 升级后追加的固定转接话术
	DefaultHandoffText = "\n\n已为您转接人工客服, 稍后将有专员跟进您的问题。"
)

// Generator 回复生成器
type Generator struct {
	cli          model.BaseChatModel
	systemPrompt string
	handoffText  string
	window       int
	temperature  float32
	maxTokens    int
}

// New 组装生成器, 测试可注入假模型
func New(cli model.BaseChatModel, c *config.Config) *Generator {
	s := c.Support
	g := &Generator{
		cli:          cli,
		systemPrompt: s.SystemPrompt,
		handoffText:  s.HandoffText,
		window:       s.HistoryWindow,
		temperature:  s.Temperature,
		maxTokens:    s.MaxTokens,
	}
	if g.systemPrompt == "" {
		g.systemPrompt = DefaultSystemPrompt
	}
	if g.handoffText == "" {
		g.handoffText = DefaultHandoffText
	}
	if g.window <= 0 || g.window > 10 {
		g.window = 10
	}
	if g.temperature <= 0 {
		g.temperature = 0.7
	}
	if g.maxTokens <= 0 {
		g.maxTokens = 500
	}
	return g
}

// NewGenerator 按配置构建基于Azure OpenAI的生成器
func NewGenerator(ctx context.Context, c *config.Config) (*Generator, error) {
	cli, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:     c.AzureOpenAI.APIKey,
		BaseURL:    c.AzureOpenAI.BaseURL,
		APIVersion: c.AzureOpenAI.APIVersion,
		Model:      c.AzureOpenAI.ChatModel,
	})
	if err != nil {
		return nil, err
	}
	return New(cli, c), nil
}

// Generate 生成一轮回复
// escalated为真时在生成结果之后追加一次转接话术, 不在生成前注入,
// 避免模型自己的文本与话术互相干扰
func (g *Generator) Generate(ctx context.Context, history []*conversation.Message, userMsg string,
	retrieved []*retrieval.Result, escalated bool) (text string, sources []*conversation.Source, err error) {

	in := g.buildMessages(history, userMsg, retrieved)
	out, err := g.cli.Generate(ctx, in,
		model.WithTemperature(g.temperature),
		model.WithMaxTokens(g.maxTokens))
	if err != nil {
		return "", nil, errorx.WrapByCode(err, errno.GenerationErrCode)
	}

	text = out.Content
	if escalated {
		text += g.handoffText
	}
	for _, r := range retrieved {
		sources = append(sources, &conversation.Source{
			Source:     r.Chunk.Metadata.Source,
			Category:   r.Chunk.Metadata.Category,
			Similarity: r.Similarity,
		})
	}
	return text, sources, nil
}

// buildMessages 系统提示词 + 引用块 + 历史窗口 + 新消息
func (g *Generator) buildMessages(history []*conversation.Message, userMsg string, retrieved []*retrieval.Result) []*schema.Message {
	system := g.systemPrompt
	if len(retrieved) > 0 {
		system += "\n\n" + FormatCitations(retrieved)
	}

	in := make([]*schema.Message, 0, len(history)+2)
	in = append(in, schema.SystemMessage(system))

	start := 0
	if len(history) > g.window {
		start = len(history) - g.window
	}
	for _, m := range history[start:] {
		switch m.Role {
		case cst.User:
			in = append(in, schema.UserMessage(m.Content))
		case cst.Assistant:
			in = append(in, schema.AssistantMessage(m.Content, nil))
		}
	}
	return append(in, schema.UserMessage(userMsg))
}

// FormatCitations 将检索结果格式化为参考资料块
func FormatCitations(retrieved []*retrieval.Result) string {
	var sb strings.Builder
	sb.WriteString("参考资料:")
	for i, r := range retrieved {
		sb.WriteString(fmt.Sprintf("\n[%d] %s (来源: %s)", i+1, strings.TrimSpace(r.Chunk.Content), r.Chunk.Metadata.Source))
	}
	return sb.String()
}
