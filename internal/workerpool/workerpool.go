package workerpool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Task represents a unit of work to be processed by the pool
type Task func(ctx context.Context) error

// Pool runs tasks on a fixed number of goroutines and collects their errors.
type Pool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.Logger

	closeMux sync.Mutex
	closed   bool

	errMux sync.Mutex
	errs   []error
}

// New creates a pool bound to ctx. Cancelling ctx stops workers after their current task.
func New(ctx context.Context, workerCount int, logger *zap.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debug("Worker pool started", zap.Int("workers", p.workerCount))
}

// Submit queues a task, blocking while the queue is full.
func (p *Pool) Submit(task Task) error {
	p.closeMux.Lock()
	defer p.closeMux.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.taskQueue <- task:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Wait closes the queue, blocks until every worker exits and returns the joined task errors.
func (p *Pool) Wait() error {
	p.closeMux.Lock()
	if !p.closed {
		close(p.taskQueue)
		p.closed = true
	}
	p.closeMux.Unlock()

	p.wg.Wait()
	p.cancel()

	p.errMux.Lock()
	defer p.errMux.Unlock()
	return errors.Join(p.errs...)
}

// Shutdown cancels in-flight work and waits for the workers.
func (p *Pool) Shutdown() error {
	p.cancel()
	return p.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.taskQueue {
		select {
		case <-p.ctx.Done():
			p.record(p.ctx.Err())
			continue
		default:
		}

		if err := task(p.ctx); err != nil {
			p.logger.Warn("Task failed", zap.Int("worker", id), zap.Error(err))
			p.record(err)
		}
	}
}

func (p *Pool) record(err error) {
	p.errMux.Lock()
	p.errs = append(p.errs, err)
	p.errMux.Unlock()
}
