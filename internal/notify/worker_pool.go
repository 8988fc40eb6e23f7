package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Task represents a unit of work to be processed by the worker pool
type Task func(ctx context.Context) error

// WorkerPool runs tasks on a fixed number of goroutines over a bounded queue.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.RWMutex
	logger      *slog.Logger
}

// NewWorkerPool creates a pool with workerCount workers and room for queueSize pending tasks.
func NewWorkerPool(ctx context.Context, workerCount, queueSize int, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, queueSize),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.logger.Debug("worker pool started", "workers", wp.workerCount, "queue", cap(wp.taskQueue))
}

// TrySubmit queues the task without blocking. It reports false when the
// queue is full or the pool is closed.
func (wp *WorkerPool) TrySubmit(task Task) bool {
	wp.closeMux.RLock()
	defer wp.closeMux.RUnlock()
	if wp.closed {
		return false
	}

	select {
	case wp.taskQueue <- task:
		return true
	default:
		return false
	}
}

// Wait stops accepting tasks and blocks until the queued ones are done.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
}

// Shutdown cancels running tasks, drops the queue and waits for the workers.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("worker stopping", "worker", id)
			return
		default:
		}

		if err := task(wp.ctx); err != nil {
			wp.logger.Warn("task failed", "worker", id, "error", err)
		}
	}
}
