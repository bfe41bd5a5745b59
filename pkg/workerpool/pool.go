// Package workerpool 提供 goroutine 生命周期管理的 Worker Pool 实现
// 用于限制并发 goroutine 数量，防止资源泄漏
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrWorkerPoolFull 当任务队列已满时返回
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed 当 Worker Pool 已关闭时返回
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskPanicked 当任务 panic 时返回
	ErrTaskPanicked = errors.New("worker pool task panicked")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 20
	MaxWorkers int
	// QueueSize 任务队列大小，默认 200
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 20,
		QueueSize:  200,
	}
}

// taskWrapper 任务包装器
type taskWrapper struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 管理 goroutine 生命周期的 Worker Pool
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh   chan taskWrapper
	workerWg sync.WaitGroup

	activeCount    atomic.Int64
	submittedCount atomic.Int64
	failedCount    atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建新的 Worker Pool
// cfg: 配置，如果为 nil 则使用默认配置
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Pool {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig().MaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: *cfg,
		logger: logger,
		taskCh: make(chan taskWrapper, cfg.QueueSize),
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker(i)
	}

	return p
}

func (p *Pool) worker(id int) {
	defer p.workerWg.Done()

	for task := range p.taskCh {
		p.executeTask(task)
	}
	_ = id
}

func (p *Pool) executeTask(task taskWrapper) {
	p.activeCount.Add(1)
	defer p.activeCount.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.failedCount.Add(1)
			p.logger.Error("worker pool task panic", zap.Any("panic", r), zap.Stack("stack"))
			if task.done != nil {
				task.done <- ErrTaskPanicked
			}
		}
	}()

	select {
	case <-task.ctx.Done():
		if task.done != nil {
			task.done <- task.ctx.Err()
		}
		return
	default:
	}

	err := task.fn(task.ctx)
	if err != nil {
		p.failedCount.Add(1)
	}
	if task.done != nil {
		task.done <- err
	}
}

// Submit 提交任务并等待其完成，返回任务错误
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrWorkerPoolClosed
	}
	p.mu.RUnlock()

	done := make(chan error, 1)
	task := taskWrapper{ctx: ctx, fn: fn, done: done}

	select {
	case p.taskCh <- task:
		p.submittedCount.Add(1)
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrWorkerPoolFull
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 异步提交任务（不等待结果）
// 返回错误如果池已满或已关闭
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrWorkerPoolClosed
	}
	p.mu.RUnlock()

	task := taskWrapper{ctx: ctx, fn: fn}

	select {
	case p.taskCh <- task:
		p.submittedCount.Add(1)
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// ActiveCount 当前执行中的任务数
func (p *Pool) ActiveCount() int64 {
	return p.activeCount.Load()
}

// QueuedCount 排队中的任务数
func (p *Pool) QueuedCount() int {
	return len(p.taskCh)
}

// IsClosed 池是否已关闭
func (p *Pool) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Shutdown 关闭池：停止接受新任务，等待已提交任务完成
// ctx 控制等待超时
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.taskCh)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Metrics 池运行指标
type Metrics struct {
	ActiveWorkers  int64 `json:"activeWorkers"`
	QueuedTasks    int   `json:"queuedTasks"`
	SubmittedTasks int64 `json:"submittedTasks"`
	FailedTasks    int64 `json:"failedTasks"`
}

// GetMetrics 返回池运行指标
func (p *Pool) GetMetrics() Metrics {
	return Metrics{
		ActiveWorkers:  p.activeCount.Load(),
		QueuedTasks:    len(p.taskCh),
		SubmittedTasks: p.submittedCount.Load(),
		FailedTasks:    p.failedCount.Load(),
	}
}
