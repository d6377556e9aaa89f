package provider

import (
	"context"

	"github.com/google/wire"
	"github.com/xh-polaris/estate-support-api/biz/application/service"
	"github.com/xh-polaris/estate-support-api/biz/domain/convo"
	"github.com/xh-polaris/estate-support-api/biz/domain/escalate"
	"github.com/xh-polaris/estate-support-api/biz/domain/flow"
	"github.com/xh-polaris/estate-support-api/biz/domain/generate"
	"github.com/xh-polaris/estate-support-api/biz/domain/notify"
	"github.com/xh-polaris/estate-support-api/biz/domain/retrieval"
	"github.com/xh-polaris/estate-support-api/biz/domain/signal"
	"github.com/xh-polaris/estate-support-api/biz/infra/cache"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/conversation"
	"github.com/xh-polaris/estate-support-api/biz/infra/mapper/knowledge"
	"github.com/xh-polaris/estate-support-api/pkg/errorx"
	"github.com/xh-polaris/estate-support-api/pkg/logs"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config              *config.Config
	SupportService      service.ISupportService
	ConversationService service.IConversationService
	KnowledgeService    service.IKnowledgeService
}

func Get() *Provider {
	return provider
}

// NewClassifier 远端分类器, 构建失败时直接退化为纯词典分类
func NewClassifier(c *config.Config) signal.Classifier {
	remote, err := signal.NewRemoteClassifier(context.Background(), c)
	if err != nil {
		logs.Errorf("[provider] build remote classifier err:%s", errorx.ErrorWithoutStack(err))
		return signal.WithFallback(nil)
	}
	return signal.WithFallback(remote)
}

func NewRetriever(c *config.Config, mapper knowledge.MongoMapper) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(context.Background(), c, mapper)
}

func NewGenerator(c *config.Config) (*generate.Generator, error) {
	return generate.NewGenerator(context.Background(), c)
}

var ApplicationSet = wire.NewSet(
	service.SupportServiceSet,
	service.ConversationServiceSet,
	service.KnowledgeServiceSet,
)

var DomainSet = wire.NewSet(
	convo.New,
	NewClassifier,
	NewRetriever,
	NewGenerator,
	escalate.NewPolicy,
	notify.NewDispatcher,
	flow.NewOrchestrator,
)

var InfraSet = wire.NewSet(
	config.NewConfig,
	cache.NewRedis,
	conversation.NewConversationMongoMapper,
	knowledge.NewKnowledgeMongoMapper,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfraSet,
)
