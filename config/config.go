package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App      *App            `json:"app" yaml:"app"`
	Redis    *Redis          `json:"redis" yaml:"redis"`
	MySQL    *MySQL          `json:"mysql" yaml:"mysql"`
	Jwt      *Jwt            `json:"jwt" yaml:"jwt"`
	Server   *Server         `json:"server" yaml:"server"`
	RocketMQ *RocketMQConfig `json:"rocketmq" yaml:"rocketmq"`
	Kafka    *KafkaConfig    `json:"kafka" yaml:"kafka"`
	Feed     *Feed           `json:"feed" yaml:"feed"`
	Trace    *Trace          `json:"trace" yaml:"trace"`
}

type Server struct {
	Http int `json:"http" yaml:"http"`
}

func New(filename string) *Config {

	content, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	// 支持 ${VAR} 引用环境变量，.env 在 main 里先加载
	content = []byte(os.ExpandEnv(string(content)))

	var conf Config
	if err := yaml.Unmarshal(content, &conf); err != nil {
		panic(fmt.Sprintf("解析 %s 读取错误: %v", filename, err))
	}
	conf.fillDefaults()

	return &conf
}

// fillDefaults 缺省段落补齐，保证下游不会拿到 nil
func (c *Config) fillDefaults() {
	if c.App == nil {
		c.App = &App{Env: "dev"}
	}
	if c.Server == nil {
		c.Server = &Server{Http: 8080}
	}
	if c.Jwt == nil {
		c.Jwt = &Jwt{}
	}
	if c.Feed == nil {
		c.Feed = &Feed{}
	}
	c.Feed.normalize()
	if c.Trace == nil {
		c.Trace = &Trace{}
	}
	if c.RocketMQ == nil {
		c.RocketMQ = &RocketMQConfig{}
	}
	if c.RocketMQ.NotificationTopic == "" {
		c.RocketMQ.NotificationTopic = "image_notification"
	}
	if c.Kafka == nil {
		c.Kafka = &KafkaConfig{}
	}
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}
