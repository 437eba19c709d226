package server

import (
	"Perish/config"
	"Perish/pkg/cursor"
	"Perish/pkg/taskqueue"
	"Perish/service"
)

func NewCursorCodec(conf *config.Feed) (*cursor.Codec, error) {
	return cursor.NewCodec(conf.CursorSalt)
}

// NewTaskPool 投票的旁路副作用都走这个队列
func NewTaskPool(conf *config.Feed, d *service.EventDispatcher) *taskqueue.Pool {
	return taskqueue.New(conf.TaskQueueSize, conf.TaskWorkers, d.Handle)
}
