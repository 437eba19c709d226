package config

type RocketMQConfig struct {
	NameServer []string `yaml:"nameserver"`

	Producer Producer `yaml:"producer"`

	// NotificationTopic 通知事件投递的 topic
	NotificationTopic string `yaml:"notification_topic"`
}

type Producer struct {
	Group string `yaml:"group"`
	Retry int    `yaml:"retry"`
}

func ProvideRocketMQConfig(cfg *Config) *RocketMQConfig {
	return cfg.RocketMQ
}
