package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Worker is a long-running component. Run blocks until ctx is cancelled or
// the worker fails; a nil return after cancellation is a clean stop.
type Worker interface {
	Run(ctx context.Context) error
	Name() string
}

// WorkerManager runs every registered worker and stops all of them when one fails
type WorkerManager struct {
	workers []Worker
	logger  *zap.Logger

	mu        sync.RWMutex
	isRunning bool
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{
		workers: make([]Worker, 0),
		logger:  logger,
	}
}

// Register adds a worker to be managed
func (m *WorkerManager) Register(worker Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, worker)
	m.logger.Info("Worker registered",
		zap.String("worker_name", worker.Name()),
		zap.Int("total_workers", len(m.workers)))
}

// Run starts all workers and blocks until they have all returned.
// It returns the first worker error.
func (m *WorkerManager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return fmt.Errorf("workers already running")
	}
	m.isRunning = true
	workers := append([]Worker(nil), m.workers...)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.isRunning = false
		m.mu.Unlock()
	}()

	m.logger.Info("Starting all workers", zap.Int("count", len(workers)))

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			m.logger.Info("Worker started", zap.String("worker_name", w.Name()))
			if err := w.Run(gctx); err != nil {
				m.logger.Error("Worker failed",
					zap.String("worker_name", w.Name()),
					zap.Error(err))
				return fmt.Errorf("worker %s: %w", w.Name(), err)
			}
			m.logger.Info("Worker stopped", zap.String("worker_name", w.Name()))
			return nil
		})
	}

	return g.Wait()
}

// GetWorkerCount returns the number of registered workers
func (m *WorkerManager) GetWorkerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers)
}

// IsRunning returns whether workers are running
func (m *WorkerManager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}
