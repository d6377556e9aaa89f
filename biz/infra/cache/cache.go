package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/xh-polaris/estate-support-api/biz/infra/config"
)

// cache 封装redis客户端, 对话历史缓存用

type Cmdable = redis.Cmdable

var Nil = redis.Nil

// NewRedis 根据配置创建redis客户端
func NewRedis(c *config.Config) Cmdable {
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
	})
}
