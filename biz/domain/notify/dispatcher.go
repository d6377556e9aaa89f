package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/util/httpx"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
	"github.com/xh-polaris/estate-support-api/types/errno"
)

// notify 升级通知的多渠道分发
// 尽力而为: 单渠道失败只记日志, 任一渠道成功即视为送达, 核心流程不重试

const (
	ChannelWebhook = "webhook"
	ChannelEmail   = "email"

	dispatchTimeout = 5 * time.Second
)

// Alert 一条升级告警
type Alert struct {
	AlertId        string `json:"alert_id"`
	ConversationId string `json:"conversation_id"`
	UserEmail      string `json:"user_email,omitempty"`
	Reason         string `json:"reason"`
	Sentiment      string `json:"sentiment,omitempty"`
	Intent         string `json:"intent,omitempty"`
	LastMessage    string `json:"last_message,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Priority       string `json:"priority"`
}

// Dispatcher 多渠道告警分发器
type Dispatcher struct {
	webhookURL    string
	emailRelayURL string
	emailFrom     string
	emailTo       string
}

func NewDispatcher(c *config.Config) *Dispatcher {
	return &Dispatcher{
		webhookURL:    c.Notify.WebhookURL,
		emailRelayURL: c.Notify.EmailRelayURL,
		emailFrom:     c.Notify.EmailFrom,
		emailTo:       c.Notify.EmailTo,
	}
}

// Dispatch 向所有已配置渠道发送告警, 返回各渠道是否成功
func (d *Dispatcher) Dispatch(ctx context.Context, alert *Alert) map[string]bool {
	if alert.AlertId == "" {
		alert.AlertId = uuid.NewString()
	}
	results := make(map[string]bool, 2)

	if d.webhookURL != "" {
		results[ChannelWebhook] = d.sendWebhook(ctx, alert)
	}
	if d.emailRelayURL != "" && d.emailTo != "" {
		results[ChannelEmail] = d.sendEmail(ctx, alert)
	}
	return results
}

// AnySuccess 任一渠道成功即视为送达
func AnySuccess(results map[string]bool) bool {
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

type webhookReq struct {
	Text string `json:"text"`
}

// sendWebhook 发送Slack风格的webhook消息
func (d *Dispatcher) sendWebhook(ctx context.Context, alert *Alert) bool {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	header := http.Header{}
	header.Add("Content-Type", "application/json")
	body := &webhookReq{Text: fmt.Sprintf(
		"对话升级 [%s] 优先级=%s 原因=%s 情感=%s 意图=%s\n最近消息: %s",
		alert.ConversationId, alert.Priority, alert.Reason, alert.Sentiment, alert.Intent, alert.LastMessage)}
	// 2xx即视为送达, 响应体不做解析
	if err := httpx.PostOnly(ctx, d.webhookURL, header, body); err != nil {
		err = errorx.WrapByCode(err, errno.WebhookErrCode, errorx.KV("url", d.webhookURL))
		logs.CtxWarnf(ctx, "[notify] webhook err:%s", errorx.ErrorWithoutStack(err))
		return false
	}
	return true
}

type emailReq struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	UserEmail string `json:"user_email,omitempty"`
}

// sendEmail 经由邮件中转服务通知客服团队, 用户邮箱仅随正文附带
func (d *Dispatcher) sendEmail(ctx context.Context, alert *Alert) bool {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	header := http.Header{}
	header.Add("Content-Type", "application/json")
	body := &emailReq{
		From:      d.emailFrom,
		To:        d.emailTo,
		Subject:   fmt.Sprintf("[%s] 客服对话升级: %s", alert.Priority, alert.ConversationId),
		Body:      alert.Summary,
		UserEmail: alert.UserEmail,
	}
	if err := httpx.PostOnly(ctx, d.emailRelayURL, header, body); err != nil {
		logs.CtxWarnf(ctx, "[notify] email relay err:%s", errorx.ErrorWithoutStack(err))
		return false
	}
	return true
}
