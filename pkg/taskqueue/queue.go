// Package taskqueue 进程内有界任务队列，用来承载通知、埋点这类旁路副作用。
// 投递永远不阻塞调用方，队列满了直接丢弃并计数。
package taskqueue

import (
	"Perish/pkg/log"
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

var droppedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "perish_task_queue_dropped_total",
		Help: "Tasks dropped because the queue was full or closed",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(droppedTotal)
}

type Task struct {
	Kind    string
	Payload any
}

type Handler func(ctx context.Context, t Task) error

// Queue 调用方只依赖投递能力，测试里可以换成记录器
type Queue interface {
	Enqueue(t Task) bool
}

type Pool struct {
	ch      chan Task
	handler Handler
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

var _ Queue = (*Pool)(nil)

func New(size, workers int, h Handler) *Pool {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		ch:      make(chan Task, size),
		handler: h,
		workers: workers,
		timeout: 5 * time.Second,
	}
}

// Start 启动 worker，ctx 取消后不再影响正在排队的任务，由 Close 负责排空
func (p *Pool) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Go(func() {
			for t := range p.ch {
				p.run(base, t)
			}
		})
	}
}

func (p *Pool) run(base context.Context, t Task) {
	ctx, cancel := context.WithTimeout(base, p.timeout)
	defer cancel()

	var pc panics.Catcher
	pc.Try(func() {
		if err := p.handler(ctx, t); err != nil {
			log.L.Warn("task failed", zap.String("kind", t.Kind), zap.Error(err))
		}
	})
	if r := pc.Recovered(); r != nil {
		log.L.Error("task panic", zap.String("kind", t.Kind), zap.Any("panic", r.Value))
	}
}

func (p *Pool) Enqueue(t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		droppedTotal.WithLabelValues(t.Kind).Inc()
		return false
	}
	select {
	case p.ch <- t:
		return true
	default:
		droppedTotal.WithLabelValues(t.Kind).Inc()
		log.L.Warn("task queue full, dropped", zap.String("kind", t.Kind))
		return false
	}
}

// Close 停止接收新任务并等待已排队任务执行完
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()
	p.wg.Wait()
}
