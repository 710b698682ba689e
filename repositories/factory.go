package repositories

import (
	"context"
	"fmt"
	"time"

	"bnta-demo/microservices/tasks-service/config"
	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	"github.com/eapache/go-resiliency/retrier"
	"go.opentelemetry.io/otel/trace"
)

const connectBackoff = 200 * time.Millisecond

// Closer releases a backend's connections.
type Closer func(ctx context.Context) error

// New opens the configured backend, retrying the connection with exponential
// backoff, and wraps network backends in a circuit breaker.
func New(ctx context.Context, cfg config.StoreConfig, logger *log.Logger, tracer trace.Tracer) (domain.TaskRepository, Closer, error) {
	if cfg.Backend == config.BackendMemory {
		logger.Info("using in-memory task store")
		return NewTaskInMem(tracer), func(context.Context) error { return nil }, nil
	}

	var (
		repo   domain.TaskRepository
		closer Closer
	)
	r := retrier.New(retrier.ExponentialBackoff(cfg.ConnectAttempts-1, connectBackoff), nil)
	attempt := 0
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		repo, closer, err = open(ctx, cfg, logger, tracer)
		if err != nil {
			logger.Warn("store connection failed", "backend", cfg.Backend, "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s store: %w", cfg.Backend, err)
	}

	logger.Info("task store ready", "backend", cfg.Backend)
	return WithBreaker(repo, logger), closer, nil
}

func open(ctx context.Context, cfg config.StoreConfig, logger *log.Logger, tracer trace.Tracer) (domain.TaskRepository, Closer, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		repo, err := NewTaskPostgresRepo(ctx, cfg.PostgresURL, logger, tracer)
		if err != nil {
			return nil, nil, err
		}
		return repo, func(context.Context) error { return repo.Close() }, nil
	case config.BackendMongo:
		repo, err := NewTaskMongoRepo(ctx, cfg.MongoURI, logger, tracer)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Disconnect, nil
	case config.BackendCassandra:
		repo, err := NewTaskCassandraRepo(ctx, cfg.CassandraHosts, cfg.CassandraKeyspace, logger, tracer)
		if err != nil {
			return nil, nil, err
		}
		return repo, func(context.Context) error { repo.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidBackend(), cfg.Backend)
	}
}
