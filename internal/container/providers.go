// Package container wires the purchase bot's components and manages their lifecycle.
package container

import (
	"context"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	"go.uber.org/zap"

	"github.com/garyjia/purchase-bot/internal/application/command"
	"github.com/garyjia/purchase-bot/internal/application/dispatcher"
	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/application/watcher"
	"github.com/garyjia/purchase-bot/internal/config"
	"github.com/garyjia/purchase-bot/internal/domain/event"
	infraLark "github.com/garyjia/purchase-bot/internal/infrastructure/external/lark"
	"github.com/garyjia/purchase-bot/internal/infrastructure/persistence/redisstore"
	"github.com/garyjia/purchase-bot/internal/infrastructure/persistence/repository"
	"github.com/garyjia/purchase-bot/internal/infrastructure/worker"
	httpapi "github.com/garyjia/purchase-bot/internal/interfaces/http"
	"github.com/garyjia/purchase-bot/internal/interfaces/websocket"
	"github.com/garyjia/purchase-bot/internal/metrics"
	"github.com/garyjia/purchase-bot/migrations"
	"github.com/garyjia/purchase-bot/pkg/database"
	"github.com/garyjia/purchase-bot/pkg/utils"
)

// StoreBundle holds the Redis-backed request store.
type StoreBundle struct {
	Store    *redisstore.Store
	Requests *repository.RequestRepository
}

// JournalBundle holds the SQLite message journal.
type JournalBundle struct {
	DB      *database.DB
	Journal port.MessageJournal
}

// LarkBundle holds all Lark-related components.
type LarkBundle struct {
	Client    *lark.Client
	Messenger *infraLark.Messenger
	Adapter   *websocket.LarkAdapter
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Lifecycle    service.LifecycleService
	Approvers    service.ApproverService
	Notification service.NotificationService
}

// ProvideRequestStore connects to Redis and creates the request repository.
func ProvideRequestStore(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	store, err := redisstore.New(ctx, redisstore.Config{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, err
	}

	requests, err := repository.NewRequestRepository(ctx, store, cfg.KeyPrefix, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("Request store connected",
		zap.String("addr", cfg.Addr),
		zap.String("key_prefix", cfg.KeyPrefix))
	return &StoreBundle{Store: store, Requests: requests}, nil
}

// ProvideJournal opens the journal database and applies pending migrations.
func ProvideJournal(ctx context.Context, cfg *config.JournalConfig, logger *zap.Logger) (*JournalBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("journal config is required")
	}

	db, err := database.New(ctx, database.Config{
		Path:         cfg.Path,
		MaxOpenConns: cfg.MaxOpenConns,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &JournalBundle{
		DB:      db,
		Journal: repository.NewJournalRepository(db.DB, logger),
	}, nil
}

// ProvideLark creates the REST client, the outbound messenger and the event adapter.
func ProvideLark(cfg *config.Config, journal port.MessageJournal, debug bool, logger *zap.Logger) (*LarkBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if journal == nil {
		return nil, fmt.Errorf("message journal is required")
	}

	larkCfg := infraLark.Config{
		AppID:      cfg.Lark.AppID,
		AppSecret:  cfg.Lark.AppSecret,
		ChannelID:  cfg.Lark.ChannelID,
		Reaction:   cfg.Lark.Reaction,
		APITimeout: cfg.Lark.APITimeout,
		Debug:      debug,
	}

	client := infraLark.NewSDKClient(larkCfg)
	adapter := websocket.NewLarkAdapter(websocket.LarkAdapterConfig{
		AppID:      cfg.Lark.AppID,
		AppSecret:  cfg.Lark.AppSecret,
		ChannelID:  cfg.Lark.ChannelID,
		BufferSize: cfg.Bot.EventBuffer,
	}, journal, logger.Named("lark"))

	return &LarkBundle{
		Client:    client,
		Messenger: infraLark.NewMessenger(client, larkCfg, logger.Named("lark")),
		Adapter:   adapter,
	}, nil
}

// ServiceDeps holds dependencies for application services.
type ServiceDeps struct {
	Requests *repository.RequestRepository
	Gateway  port.ChatGateway
	Metrics  port.MetricsRecorder
	Bot      *config.BotConfig
	Logger   *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Requests == nil {
		return nil, fmt.Errorf("request repository is required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("chat gateway is required")
	}

	log := utils.NewKVLogger(deps.Logger)
	lifecycle := service.NewLifecycleService(deps.Requests, deps.Metrics, log)
	approvers := service.NewApproverService(deps.Requests, log)

	var opts []service.NotificationOption
	if deps.Bot != nil && deps.Bot.NotifyInterval > 0 {
		opts = append(opts, service.WithNotifyInterval(deps.Bot.NotifyInterval))
	}
	notifier := service.NewNotificationService(lifecycle, approvers, deps.Gateway, deps.Metrics, log, opts...)

	return &ServiceBundle{
		Lifecycle:    lifecycle,
		Approvers:    approvers,
		Notification: notifier,
	}, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the channel
// watcher and the command router.
func ProvideDispatcher(channelID string, services *ServiceBundle, gateway port.ChatGateway, m port.MetricsRecorder, logger *zap.Logger) dispatcher.Dispatcher {
	log := utils.NewKVLogger(logger)
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(log))

	w := watcher.NewChannelWatcher(channelID, services.Lifecycle, services.Approvers, services.Notification, gateway, log)
	for _, t := range []event.Type{event.TypeMessagePosted, event.TypeMessageEdited, event.TypeMessageDeleted} {
		d.SubscribeNamed(t, "channel-watcher", w.HandleEvent)
	}

	r := command.NewRouter(services.Lifecycle, services.Approvers, services.Notification, gateway, m, log)
	d.SubscribeNamed(event.TypeMessagePosted, "command-router", r.HandleEvent)

	return d
}

// WorkerDeps holds dependencies for the background workers.
type WorkerDeps struct {
	Config     *config.Config
	Source     *websocket.LarkAdapter
	Dispatcher dispatcher.Dispatcher
	Lifecycle  service.LifecycleService
	Health     httpapi.HealthChecker
	Metrics    *metrics.Recorder
	Logger     *zap.Logger
}

// ProvideWorkers registers the event adapter, the event loop and, when
// enabled, the HTTP server.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, *worker.EventLoop, error) {
	if deps == nil || deps.Config == nil {
		return nil, nil, fmt.Errorf("worker dependencies are required")
	}

	manager := worker.NewWorkerManager(deps.Logger)
	manager.Register(deps.Source)

	loop := worker.NewEventLoop(deps.Source, deps.Dispatcher, deps.Config.Bot.PollInterval, deps.Logger)
	manager.Register(loop)

	if deps.Config.Server.Enabled {
		srv := httpapi.NewServer(httpapi.ServerConfig{
			Host:         deps.Config.Server.Host,
			Port:         deps.Config.Server.Port,
			ReadTimeout:  deps.Config.Server.ReadTimeout,
			WriteTimeout: deps.Config.Server.WriteTimeout,
		}, deps.Lifecycle, deps.Health, deps.Metrics.Handler(), utils.NewKVLogger(deps.Logger.Named("http")))
		manager.Register(srv)
	}

	return manager, loop, nil
}
