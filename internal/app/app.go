package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/boostmart/boostmart/internal/config"
	"github.com/boostmart/boostmart/internal/handlers"
	"github.com/boostmart/boostmart/internal/janitor"
	"github.com/boostmart/boostmart/internal/notify"
	"github.com/boostmart/boostmart/internal/pg"
	"github.com/boostmart/boostmart/internal/repo"
	"github.com/boostmart/boostmart/internal/service"
	"github.com/boostmart/boostmart/internal/service/orderservice"
	"github.com/boostmart/boostmart/internal/ws"
	pkgauth "github.com/boostmart/boostmart/pkg/auth"
	"github.com/boostmart/boostmart/pkg/clients"
	"github.com/boostmart/boostmart/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	hub     *ws.Hub
	janitor *janitor.Service
	jwt     *pkgauth.JWTService

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)
	conn := pg.New(pool)

	a.cfg = cfg
	a.repo = repo.New(conn)
	a.hub = ws.NewHub()
	a.jwt = pkgauth.NewJWTService(cfg.JWTSecret)

	sinks := []orderservice.EventSink{a.hub}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.New(cfg.WebhookURL, clients.NewHTTPClient()))
	}

	a.srv = service.New(a.repo, txManager, a.jwt, sinks...)
	a.api = handlers.New(a.srv, a.hub)
	a.janitor = janitor.New(cfg, a.repo.OrderRepo, a.srv.OrderService)

	if err := a.seedAdmin(ctx); err != nil {
		zap.L().Error("admin seeding failed: ", zap.Error(err))
		return fmt.Errorf("can't seed admin: %w", err)
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.janitor.Start(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func (a *Application) seedAdmin(ctx context.Context) error {
	if a.cfg.AdminPassword == "" {
		zap.L().Warn("ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}
	return a.srv.AuthService.EnsureAdmin(ctx, a.cfg.AdminEmail, a.cfg.AdminPassword)
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router, a.jwt, a.cfg)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
