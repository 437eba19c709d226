package rocketmq

import (
	"Perish/config"
	"Perish/pkg/log"
	"context"
	"errors"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"go.uber.org/zap"
)

var ErrDisabled = errors.New("rocketmq producer disabled")

type Rocketmq struct {
	RocketmqProducer rocketmq.Producer
}

func init() {
	rlog.SetLogLevel("error")
}

// InitProducer 未配置 nameserver 或启动失败时返回空壳，发送直接报 ErrDisabled
func InitProducer(cfg *config.RocketMQConfig) *Rocketmq {
	if cfg == nil || len(cfg.NameServer) == 0 {
		log.L.Warn("rocketmq not configured, notifications disabled")
		return &Rocketmq{}
	}
	retry := cfg.Producer.Retry
	if retry <= 0 {
		retry = 2
	}
	p, err := rocketmq.NewProducer(
		producer.WithNameServer(cfg.NameServer),
		producer.WithGroupName(cfg.Producer.Group),
		producer.WithRetry(retry),
	)
	if err != nil {
		log.L.Error("init producer", zap.Error(err))
		return &Rocketmq{}
	}
	if err = p.Start(); err != nil {
		log.L.Error("start producer", zap.Error(err))
		return &Rocketmq{}
	}
	log.L.Info("init producer success")

	return &Rocketmq{RocketmqProducer: p}
}

// SendMsg 同步发送，key 用于消费端幂等
func (p *Rocketmq) SendMsg(ctx context.Context, topic, key string, body []byte) error {
	if p == nil || p.RocketmqProducer == nil {
		return ErrDisabled
	}
	msg := primitive.NewMessage(topic, body)
	if key != "" {
		msg.WithKeys([]string{key})
	}

	res, err := p.RocketmqProducer.SendSync(ctx, msg)
	if err != nil {
		return err
	}
	log.L.Debug("send message success", zap.String("topic", topic), zap.String("msg_id", res.MsgID))
	return nil
}

func (p *Rocketmq) Shutdown() error {
	if p == nil || p.RocketmqProducer == nil {
		return nil
	}
	return p.RocketmqProducer.Shutdown()
}
