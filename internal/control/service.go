package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/core/worker"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
	redisstore "github.com/TAKIS21345/techsteps-sub005/internal/infra/redis"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage/memory"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage/postgres"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/handler"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/health"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/progress"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/queue"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/session"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/strategy"

	"github.com/pressly/goose/v3"
)

// Config holds the application configuration.
type Config struct {
	Port         int
	Redis        redisstore.Config
	Database     postgres.Config
	Connectivity connectivity.Config
	Session      session.Config
	Queue        queue.Config
	Strategy     strategy.Config

	MemoryLimitBytes    uint64
	MemoryCheckInterval time.Duration

	// Optional application hooks. Nil values fall back to no-ops.
	Provider       session.StateProvider
	Tutorial       session.Snapshotter
	Conversation   session.Snapshotter
	TokenRefresh   strategy.TokenRefresher
	OnAuthRequired func()
	Cleaners       []func()
	Executors      map[string]queue.Executor
}

// Service wires the recovery components together and manages their lifecycle.
type Service struct {
	cfg          Config
	store        storage.Store
	db           *postgres.DB
	monitor      *connectivity.Monitor
	sessions     *session.Manager
	queue        *queue.Queue
	registry     *strategy.Registry
	handler      *handler.Handler
	progress     *progress.Store
	healthMon    *health.Monitor
	healthServer *health.Server
	pruner       *worker.Pruner
	log          *slog.Logger

	cancel context.CancelFunc
}

// NewService creates a Service with all dependencies initialized. The storage
// backend is chosen by configuration: PostgreSQL when a database URL is set,
// Redis when a Redis URL is set, and an in-process store otherwise.
func NewService(cfg Config) (*Service, error) {
	var store storage.Store
	var db *postgres.DB

	switch {
	case cfg.Database.URL != "":
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		store = postgres.NewStore(db)
		slog.Info("Using PostgreSQL storage")
	case cfg.Redis.URL != "":
		var err error
		store, err = redisstore.NewStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		slog.Info("Using Redis storage")
	default:
		store = memory.NewMemoryStore()
		slog.Info("Using Memory storage")
	}

	adapter := storage.NewAdapter(store)
	monitor := connectivity.NewMonitor(cfg.Connectivity)

	sessions := session.NewManager(cfg.Session, adapter, cfg.Provider, cfg.Tutorial, cfg.Conversation)

	q := queue.New(cfg.Queue, adapter, monitor)
	for actionType, fn := range cfg.Executors {
		q.RegisterExecutor(actionType, fn)
	}

	registry := strategy.NewRegistry(cfg.Strategy)
	registry.Register(strategy.NetworkRetry(monitor))
	if cfg.TokenRefresh != nil {
		registry.Register(strategy.AuthRefresh(cfg.TokenRefresh, cfg.OnAuthRequired))
	}
	registry.Register(strategy.ResourceCleanup(cfg.Cleaners...))

	h := handler.New(registry, handler.NewNotifier())

	healthMon := health.NewMonitor(monitor, q)
	h.OnError(healthMon.RecordError)
	healthServer := health.NewServer(healthMon, cfg.Port)

	var pruner *worker.Pruner
	if db != nil {
		pruner = worker.NewPruner(postgres.NewStore(db), time.Hour)
	}

	return &Service{
		cfg:          cfg,
		store:        store,
		db:           db,
		monitor:      monitor,
		sessions:     sessions,
		queue:        q,
		registry:     registry,
		handler:      h,
		progress:     progress.NewStore(adapter),
		healthMon:    healthMon,
		healthServer: healthServer,
		pruner:       pruner,
		log:          slog.Default(),
	}, nil
}

// Connectivity exposes the connectivity monitor.
func (s *Service) Connectivity() *connectivity.Monitor { return s.monitor }

// Handler exposes the error handler for application code.
func (s *Service) Handler() *handler.Handler { return s.handler }

// Sessions exposes the session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Queue exposes the offline action queue.
func (s *Service) Queue() *queue.Queue { return s.queue }

// Registry exposes the recovery strategy registry.
func (s *Service) Registry() *strategy.Registry { return s.registry }

// Progress exposes the long-flow progress store.
func (s *Service) Progress() *progress.Store { return s.progress }

// Start starts all background components. It returns once startup work is
// done; components run until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		if err := s.healthServer.Start(); err != nil {
			s.log.Error("Health server failed", "error", err)
		}
	}()

	go s.monitor.Start(ctx)
	go s.handler.Notifier().Start(ctx)
	if s.pruner != nil {
		go s.pruner.Start(ctx)
	}
	go s.handler.WatchConnectivity(ctx, s.monitor)
	if s.cfg.MemoryLimitBytes > 0 {
		go s.handler.WatchMemory(ctx, s.cfg.MemoryLimitBytes, s.cfg.MemoryCheckInterval)
	}

	// Replay any actions persisted by a previous run, then watch for
	// reconnects.
	if err := s.queue.Load(ctx); err != nil {
		s.log.Warn("Failed to load persisted queue", "error", err)
	}
	go s.queue.Start(ctx)

	if restored := s.sessions.Restore(ctx); restored {
		s.log.Info("Restored previous session")
	}
	go s.sessions.Start(ctx)

	return nil
}

// Status is a point-in-time snapshot of the service state, for surfaces that
// render connectivity and pending work to the user.
type Status struct {
	Online              bool
	QueuedActions       int
	LastError           string
	ActiveNotifications []domain.Notification
}

// Status reports the current service state.
func (s *Service) Status() Status {
	return Status{
		Online:              s.monitor.Online(),
		QueuedActions:       s.queue.Len(),
		LastError:           s.healthMon.LastError(),
		ActiveNotifications: s.handler.Notifier().Active(),
	}
}

// Stop stops the service and releases storage connections.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if s.cancel != nil {
		s.cancel()
	}

	// Deterministic final snapshot before the store goes away; the save
	// loop's own shutdown flush may lose the race against Close.
	if err := s.sessions.Save(ctx); err != nil {
		s.log.Warn("Final session save failed", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.log.Warn("Failed to close store", "error", err)
	}

	return s.healthServer.Stop(ctx)
}
