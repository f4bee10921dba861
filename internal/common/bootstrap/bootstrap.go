package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/bloglist/backend/internal/common/config"
	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/bloglist/backend/internal/common/crypto"
	"github.com/AlibekovAA/bloglist/backend/internal/common/db"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	postrepo "github.com/AlibekovAA/bloglist/backend/internal/post/repository"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

// App holds the process-wide dependencies shared by the server and the
// seeding command.
type App struct {
	Log         *logger.Logger
	Config      config.BlogConfig
	Pool        *pgxpool.Pool
	UserRepo    *userrepo.PgRepository
	PostRepo    *postrepo.PgRepository
	Hasher      *commoncrypto.BcryptHasher
	IDGenerator *commoncrypto.UUIDGenerator

	stopMetrics context.CancelFunc
}

func NewApp(ctx context.Context, serviceName string) (*App, error) {
	log, err := initializeLogger(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadBlogConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	// The config file may name a log directory or level the environment did not.
	if log, err = logger.New(cfg.LogDir, serviceName, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.EnsureSchema {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database schema ensured")
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	return &App{
		Log:         log,
		Config:      cfg,
		Pool:        pool,
		UserRepo:    userrepo.NewPgRepository(pool, log),
		PostRepo:    postrepo.NewPgRepository(pool, log),
		Hasher:      commoncrypto.NewBcryptHasher(0),
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		stopMetrics: stopMetrics,
	}, nil
}

func (a *App) Close() {
	a.stopMetrics()
	a.Pool.Close()
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
