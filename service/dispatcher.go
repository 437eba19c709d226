package service

import (
	"Perish/config"
	"Perish/pkg/log"
	"Perish/pkg/taskqueue"
	"Perish/types"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// EventDispatcher 任务队列的消费端：通知走 rocketmq，埋点走 kafka
type EventDispatcher struct {
	Notifier   NotificationPublisher
	Analytics  AnalyticsPublisher
	Milestones MilestoneGuard
	Topic      string
}

func NewEventDispatcher(notifier NotificationPublisher, analytics AnalyticsPublisher, milestones MilestoneGuard, conf *config.RocketMQConfig) *EventDispatcher {
	return &EventDispatcher{
		Notifier:   notifier,
		Analytics:  analytics,
		Milestones: milestones,
		Topic:      conf.NotificationTopic,
	}
}

func (d *EventDispatcher) Handle(ctx context.Context, t taskqueue.Task) error {
	switch ev := t.Payload.(type) {
	case *types.NotificationEvent:
		return d.notify(ctx, ev)
	case *types.AnalyticsEvent:
		body, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return d.Analytics.Publish(ctx, strconv.FormatUint(ev.ImageID, 10), body)
	default:
		return fmt.Errorf("unknown task payload %T", t.Payload)
	}
}

func (d *EventDispatcher) notify(ctx context.Context, ev *types.NotificationEvent) error {
	if ev.Type == types.NotificationLikeMilestone && d.Milestones != nil {
		ok, err := d.Milestones.Claim(ctx, ev.ImageID, ev.Threshold)
		if err != nil {
			log.L.Warn("claim milestone failed", zap.Uint64("image_id", ev.ImageID), zap.Error(err))
		}
		if !ok {
			// 取消再点回来的不重复通知
			return nil
		}
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return d.Notifier.SendMsg(ctx, d.Topic, strconv.FormatInt(ev.ID, 10), body)
}
