package config

import (
	"os"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/cache"
)

var config *Config

type Auth struct {
	SecretKey    string
	PublicKey    string
	AccessExpire int64
}

type Mongo struct {
	URL string
	DB  string
}

type Redis struct {
	Addr     string
	Password string `json:",optional"`
}

// AzureOpenAI 对话与向量化共用的模型后端
type AzureOpenAI struct {
	APIKey         string
	BaseURL        string
	APIVersion     string `json:",default=2024-02-01"`
	ChatModel      string `json:",default=gpt-4o-mini"`
	EmbeddingModel string `json:",default=text-embedding-3-small"`
	EmbeddingDim   int    `json:",default=1536"`
}

// Notify 升级通知的各渠道配置, 为空的渠道不启用
type Notify struct {
	WebhookURL    string `json:",optional"`
	EmailRelayURL string `json:",optional"`
	EmailFrom     string `json:",default=support@estate-ai.cn"`
	EmailTo       string `json:",optional"`
}

// Retrieval 知识库检索参数
type Retrieval struct {
	Limit      int     `json:",default=3"`
	Threshold  float64 `json:",default=0.7"`
	TimeoutSec int     `json:",default=5"`
}

// Escalation 升级策略阈值
type Escalation struct {
	NegativeConfidence  float64  `json:",default=0.75"`
	MaxAssistantTurns   int      `json:",default=4"`
	HighPriorityIntents []string `json:",optional"`
	Phrases             []string `json:",optional"`
}

// Support 客服对话参数
type Support struct {
	SystemPrompt  string  `json:",optional"`
	HandoffText   string  `json:",optional"`
	HistoryWindow int     `json:",default=10"`
	SignalWindow  int     `json:",default=5"`
	Temperature   float32 `json:",default=0.7"`
	MaxTokens     int     `json:",default=500"`
	Retrieval     Retrieval
	Escalation    Escalation
}

type Config struct {
	service.ServiceConf
	ListenOn    string
	Auth        Auth
	Mongo       Mongo
	Redis       Redis
	Cache       cache.CacheConf
	AzureOpenAI AzureOpenAI
	Notify      Notify
	Support     Support
}

func NewConfig() (*Config, error) {
	c := new(Config)
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "etc/config.yaml"
	}
	err := conf.Load(path, c)
	if err != nil {
		return nil, err
	}
	err = c.SetUp()
	if err != nil {
		return nil, err
	}
	config = c
	return config, nil
}

func GetConfig() *Config {
	return config
}
