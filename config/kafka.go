package config

// KafkaConfig 埋点事件使用的 kafka
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func ProvideKafkaConfig(cfg *Config) *KafkaConfig {
	return cfg.Kafka
}
