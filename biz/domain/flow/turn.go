package flow

import (
	"context"
	"sync"
	"time"

	"github.com/xh-polaris/estate-support-api/biz/domain/convo"
	"github.com/xh-polaris/estate-support-api/biz/domain/escalate"
	"github.com/xh-polaris/estate-support-api/biz/domain/generate"
	"github.com/xh-polaris/estate-support-api/biz/domain/notify"
	"github.com/xh-polaris/estate-support-api/biz/domain/retrieval"
	"github.com/xh-polaris/estate-support-api/biz/domain/signal"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/cst"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/pkg/safego"
	"github.com/xh-polaris/estate-support-api/types/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flow 单轮客服对话的编排
// 一轮的步骤: 取对话 -> 检索+信号提取 -> 升级判定 -> 生成 -> 落库 -> 通知
// 错误策略: 检索与通知失败只降级不上抛, 取数/信号/生成/落库失败则整轮失败

// TurnInput 一轮对话的输入
type TurnInput struct {
	ConversationId string // 为空时新建对话
	UserId         primitive.ObjectID
	UserEmail      string
	Message        string
}

// TurnResult 一轮对话的结果
type TurnResult struct {
	Conversation *conversation.Conversation
	Response     string
	Sources      []*conversation.Source
	Sentiment    *signal.Sentiment
	Intent       *signal.Intent
	Decision     *escalate.Decision
}

// Orchestrator 串联检索/信号/升级/生成/存储/通知的单轮编排器
// 依赖全部显式注入, 便于测试替换
type Orchestrator struct {
	store        *convo.Store
	retriever    *retrieval.Retriever
	classifier   signal.Classifier
	policy       *escalate.Policy
	generator    *generate.Generator
	dispatcher   *notify.Dispatcher
	signalWindow int
}

func NewOrchestrator(c *config.Config, store *convo.Store, retriever *retrieval.Retriever,
	classifier signal.Classifier, policy *escalate.Policy, generator *generate.Generator,
	dispatcher *notify.Dispatcher) *Orchestrator {
	window := c.Support.SignalWindow
	if window <= 0 {
		window = signal.DefaultWindow
	}
	return &Orchestrator{
		store:        store,
		retriever:    retriever,
		classifier:   classifier,
		policy:       policy,
		generator:    generator,
		dispatcher:   dispatcher,
		signalWindow: window,
	}
}

// DoTurn 处理一条进入的用户消息
func (o *Orchestrator) DoTurn(ctx context.Context, in *TurnInput) (_ *TurnResult, err error) {
	// 1. 取出或新建对话
	var c *conversation.Conversation
	if in.ConversationId == "" {
		c = o.store.NewConversation(in.UserId, in.UserEmail)
	} else {
		if c, err = o.store.Get(ctx, in.ConversationId, in.UserId.Hex()); err != nil {
			return nil, errorx.WrapByCode(err, errno.ConversationGetErrCode)
		}
		if c == nil {
			return nil, errorx.New(errno.ConversationNotFoundCode)
		}
	}

	// 2&3. 检索与单条消息信号提取互不依赖, 并发执行
	// 检索失败降级为空列表; 信号提取经回退分类器, 失败才整轮失败
	var (
		retrieved []*retrieval.Result
		sent      *signal.Sentiment
		intent    *signal.Intent
		sigErr    error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer safego.Recovery(ctx)
		retrieved = o.retriever.Search(ctx, in.Message, 0, 0)
	}()
	go func() {
		defer wg.Done()
		defer safego.Recovery(ctx)
		if sent, sigErr = o.classifier.Analyze(ctx, in.Message); sigErr != nil {
			return
		}
		intent, sigErr = o.classifier.Classify(ctx, in.Message)
	}()
	wg.Wait()
	if sigErr != nil {
		return nil, errorx.WrapByCode(sigErr, errno.ChatTurnErrCode)
	}

	userMsg := &conversation.Message{
		Role:      cst.User,
		Content:   in.Message,
		Timestamp: time.Now(),
		Sentiment: sent.Label,
		Intent:    intent.Label,
	}

	// 对话级聚合包含本条消息
	working := append(append([]*conversation.Message{}, c.Messages...), userMsg)
	aggregate := signal.Aggregate(working, o.signalWindow)

	// 4. 升级判定, 纯函数
	decision := o.policy.Decide(&escalate.Input{
		Messages:  working,
		Sentiment: aggregate,
		Intent:    intent,
		Status:    c.Status,
	})

	// 5. 生成回复, 升级时在生成后追加转接话术
	text, sources, err := o.generator.Generate(ctx, c.Messages, in.Message, retrieved, decision.ShouldEscalate)
	if err != nil {
		return nil, err
	}
	assistantMsg := &conversation.Message{
		Role:      cst.Assistant,
		Content:   text,
		Timestamp: time.Now(),
		Sources:   sources,
	}

	// 6. 整轮落库, 不受调用方取消影响
	d := &convo.Derived{
		Sentiment: &conversation.Sentiment{
			Label:      aggregate.Overall,
			Confidence: aggregate.Confidence,
			Trajectory: aggregate.Trajectory,
			Frustrated: aggregate.Frustrated,
		},
		Intent:           intent.Label,
		Priority:         decision.Priority,
		Escalated:        c.Escalated || decision.ShouldEscalate,
		EscalationReason: c.EscalationReason,
	}
	if decision.ShouldEscalate {
		d.EscalationReason = decision.Reason
	}
	if c, err = o.store.UpsertTurn(context.WithoutCancel(ctx), c, userMsg, assistantMsg, d); err != nil {
		return nil, err
	}

	// 7. 升级通知, 后台尽力而为, 失败不影响本轮结果
	if decision.ShouldEscalate && o.dispatcher != nil {
		o.dispatchAlert(ctx, c, in.Message, aggregate, intent, decision)
	}

	return &TurnResult{
		Conversation: c,
		Response:     text,
		Sources:      sources,
		Sentiment:    sent,
		Intent:       intent,
		Decision:     decision,
	}, nil
}

// dispatchAlert 在独立goroutine中分发升级告警
func (o *Orchestrator) dispatchAlert(ctx context.Context, c *conversation.Conversation, lastMessage string,
	aggregate *signal.ConversationSentiment, intent *signal.Intent, decision *escalate.Decision) {
	bg := context.WithoutCancel(ctx)
	safego.Go(bg, func() {
		results := o.dispatcher.Dispatch(bg, &notify.Alert{
			ConversationId: c.ConversationId.Hex(),
			UserEmail:      c.UserEmail,
			Reason:         decision.Reason,
			Sentiment:      aggregate.Overall,
			Intent:         intent.Label,
			LastMessage:    lastMessage,
			Summary:        summarize(c),
			Priority:       decision.Priority,
		})
		if !notify.AnySuccess(results) {
			err := errorx.New(errno.NotificationErrCode)
			logs.Errorf("[flow] dispatch alert all channels failed, conversation=%s, err:%s",
				c.ConversationId.Hex(), errorx.ErrorWithoutStack(err))
		}
	})
}

// summarize 给告警拼一个简短的对话摘要
func summarize(c *conversation.Conversation) string {
	n := len(c.Messages)
	start := 0
	if n > 4 {
		start = n - 4
	}
	var s string
	for _, m := range c.Messages[start:] {
		s += m.Role + ": " + m.Content + "\n"
	}
	return s
}
