// Package server wires storage, the auth engine and both transports, and
// runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/audit"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/config"
	"github.com/dmitrijs2005/credvault/internal/server/httpapi"
	"github.com/dmitrijs2005/credvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	gs "github.com/dmitrijs2005/credvault/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	sync   func() error

	db    *sql.DB
	redis *redis.Client
	mongo *mongo.Client

	engine *services.AuthEngine
	deps   map[string]dbx.Pinger
}

// NewApp connects every configured backend and builds the engine. On error
// whatever was already opened is closed again.
func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {
	zl, err := logging.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{
		config: c,
		logger: zl.With("module", "app"),
		sync:   zl.Sync,
		deps:   map[string]dbx.Pinger{},
	}
	defer func() {
		if err != nil {
			app.Close(ctx)
		}
	}()

	db, m, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.deps["database"] = db

	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migrate error: %w", err)
	}

	auditRepo, err := app.auditRepository(ctx, m)
	if err != nil {
		return nil, err
	}

	var opts []services.Option
	if c.RedisAddr != "" {
		limiter, err := app.loginLimiter(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithLimiter(limiter))
	}

	hasher, err := cryptox.NewArgon2Hasher(cryptox.Params{
		MemoryKiB: c.Argon2MemoryKiB,
		Time:      c.Argon2Time,
		Threads:   c.Argon2Threads,
		KeyLength: c.Argon2KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenTTL, c.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}

	auditor := audit.NewLog(auditRepo, zl.With("module", "audit"))
	app.engine, err = services.NewAuthEngine(db, m, hasher, tokens, auditor, zl.With("module", "engine"), opts...)
	if err != nil {
		return nil, fmt.Errorf("engine init error: %w", err)
	}

	return app, nil
}

func (app *App) auditRepository(ctx context.Context, m repomanager.RepositoryManager) (auditlog.Repository, error) {
	if app.config.AuditBackend != config.AuditBackendMongo {
		return m.AuditLog(app.db), nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(app.config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo init error: %w", err)
	}
	app.mongo = client

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	app.deps["mongo"] = dbx.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})

	repo := auditlog.NewMongoRepository(client.Database(app.config.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (app *App) loginLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	app.redis = client

	// the limiter fails open, so an unreachable redis only warns
	if err := client.Ping(ctx).Err(); err != nil {
		app.logger.Warn(ctx, "redis unreachable at startup", "addr", app.config.RedisAddr, "error", err)
	}
	app.deps["redis"] = dbx.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	limiter, err := ratelimit.NewRedisLimiter(client, ratelimit.Config{
		MaxAttempts: app.config.LoginMaxAttempts,
		Cooldown:    app.config.LoginCooldown,
		PerAddress:  app.config.LoginPerAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("limiter init error: %w", err)
	}
	return limiter, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	router := httpapi.NewRouter(app.engine, app.deps, app.logger.With("module", "http_server"))
	s := httpapi.NewServer(app.config.HTTPAddr, router, app.logger.With("module", "http_server"))

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.engine)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, a signal arrives or a listener fails,
// then closes every backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(start func(context.Context, context.CancelFunc) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := start(ctx, cancelFunc); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	if app.config.HTTPAddr != "" {
		run(app.startHTTPServer)
	}
	if app.config.GRPCAddr != "" {
		run(app.startGRPCServer)
	}

	wg.Wait()
	app.Close(context.Background())

	return errors.Join(errs...)
}

// Close releases every opened backend. It is safe to call more than once.
func (app *App) Close(ctx context.Context) {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close failed", "error", err)
		}
		app.db = nil
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close failed", "error", err)
		}
		app.redis = nil
	}
	if app.mongo != nil {
		if err := app.mongo.Disconnect(ctx); err != nil {
			app.logger.Error(ctx, "mongo disconnect failed", "error", err)
		}
		app.mongo = nil
	}
	if app.sync != nil {
		_ = app.sync()
		app.sync = nil
	}
}
