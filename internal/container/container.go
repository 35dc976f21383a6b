package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/dispatcher"
	"github.com/garyjia/purchase-bot/internal/config"
	"github.com/garyjia/purchase-bot/internal/infrastructure/worker"
	"github.com/garyjia/purchase-bot/internal/metrics"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *config.Config
	debug  bool
	logger *zap.Logger

	store   *StoreBundle
	journal *JournalBundle
	lark    *LarkBundle
	metrics *metrics.Recorder

	services   *ServiceBundle
	dispatcher dispatcher.Dispatcher

	workers   *worker.WorkerManager
	eventLoop *worker.EventLoop

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start.
func NewContainer(cfg *config.Config, debug bool, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		debug:  debug,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Request store and message journal
// 2. Lark clients
// 3. Application services
// 4. Event dispatcher
// 5. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	store, err := ProvideRequestStore(ctx, &c.config.Redis, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize request store: %w", err)
	}
	c.store = store

	journal, err := ProvideJournal(ctx, &c.config.Journal, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize message journal: %w", err)
	}
	c.journal = journal
	c.logger.Info("Storage initialized")

	larkBundle, err := ProvideLark(c.config, c.journal.Journal, c.debug, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize lark clients: %w", err)
	}
	c.lark = larkBundle
	c.logger.Info("Lark clients initialized")

	c.metrics = metrics.NewRecorder()
	services, err := ProvideServices(&ServiceDeps{
		Requests: c.store.Requests,
		Gateway:  c.lark.Messenger,
		Metrics:  c.metrics,
		Bot:      &c.config.Bot,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services

	// Seed the pending gauge; failures only delay it until the next change
	if n, err := services.Lifecycle.PendingCount(ctx); err == nil {
		c.metrics.SetPending(n)
	}

	c.dispatcher = ProvideDispatcher(c.config.Lark.ChannelID, services, c.lark.Messenger, c.metrics, c.logger)
	c.logger.Info("Dispatcher initialized")

	c.workers, c.eventLoop, err = ProvideWorkers(&WorkerDeps{
		Config:     c.config,
		Source:     c.lark.Adapter,
		Dispatcher: c.dispatcher,
		Lifecycle:  services.Lifecycle,
		Health:     c,
		Metrics:    c.metrics,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully",
		zap.Int("workers", c.workers.GetWorkerCount()))
	return nil
}

// Run blocks in the workers until ctx is cancelled or one of them fails
func (c *Container) Run(ctx context.Context) error {
	if !c.ready.Load() {
		return fmt.Errorf("container not started")
	}
	return c.workers.Run(ctx)
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.journal != nil {
		if err := c.journal.DB.Close(); err != nil {
			c.logger.Error("Failed to close journal database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}

	if c.store != nil {
		if err := c.store.Store.Close(); err != nil {
			c.logger.Error("Failed to close request store", zap.Error(err))
			errs = append(errs, fmt.Errorf("close request store: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return errors.Join(errs...)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Ping returns the first unhealthy storage component
func (c *Container) Ping(ctx context.Context) error {
	status := c.Health(ctx)
	for _, name := range []string{"request_store", "journal"} {
		if h := status.Components[name]; !h.Healthy {
			return fmt.Errorf("%s: %s", name, h.Message)
		}
	}
	return nil
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	set := func(name string, err error) {
		if err != nil {
			status.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
			return
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	if c.store != nil {
		set("request_store", c.store.Requests.Ping(ctx))
	} else {
		set("request_store", errors.New("not initialized"))
	}

	if c.journal != nil {
		set("journal", c.journal.DB.PingContext(ctx))
	} else {
		set("journal", errors.New("not initialized"))
	}

	if c.eventLoop != nil {
		stats := c.eventLoop.Stats()
		status.Components["event_loop"] = ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("processed: %d, failed: %d", stats.Processed, stats.Failed),
		}
	}

	if c.workers != nil {
		status.Components["workers"] = ComponentHealth{
			Healthy: c.workers.IsRunning(),
			Message: fmt.Sprintf("worker count: %d", c.workers.GetWorkerCount()),
		}
	}

	return status
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
