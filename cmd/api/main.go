package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dealeros/dealeros-backend/api/routes"
	"github.com/dealeros/dealeros-backend/internal/admins"
	"github.com/dealeros/dealeros-backend/internal/auth"
	"github.com/dealeros/dealeros-backend/internal/dealers"
	"github.com/dealeros/dealeros-backend/internal/exports"
	"github.com/dealeros/dealeros-backend/internal/leads"
	"github.com/dealeros/dealeros-backend/internal/memberships"
	"github.com/dealeros/dealeros-backend/internal/team"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/internal/users"
	"github.com/dealeros/dealeros-backend/internal/vehicles"
	"github.com/dealeros/dealeros-backend/pkg/auth/session"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/instance"
	"github.com/dealeros/dealeros-backend/pkg/db"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/metrics"
	"github.com/dealeros/dealeros-backend/pkg/migrate"
	"github.com/dealeros/dealeros-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.NewDomainMetrics(registry)

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	tenancyRepo := tenancy.NewRepository(conn)

	resolver, err := tenancy.NewResolver(tenancyRepo, logg)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        usersRepo,
		MembershipsRepo: memberships.NewRepository(conn),
		Resolver:        resolver,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
		PasswordConfig:  cfg.Password,
		Logger:          logg,
	})
	if err != nil {
		return err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	leadsRepo := leads.NewRepository(conn)
	leadService, err := leads.NewService(leadsRepo, leadsRepo, domainMetrics)
	if err != nil {
		return err
	}

	teamService, err := team.NewService(dbClient, cfg.Team)
	if err != nil {
		return err
	}

	vehiclesRepo := vehicles.NewRepository(conn)
	vehicleService, err := vehicles.NewService(vehiclesRepo)
	if err != nil {
		return err
	}

	exportService, err := exports.NewService(vehiclesRepo, cfg.Export, domainMetrics)
	if err != nil {
		return err
	}

	adminService, err := admins.NewService(admins.ServiceParams{
		Admins:        tenancyRepo,
		Dealers:       dealers.NewRepository(conn),
		Audit:         admins.NewAuditRepository(conn),
		JWTConfig:     cfg.JWT,
		Impersonation: cfg.Impersonation,
		Metrics:       domainMetrics,
		Logger:        logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Registry:    registry,
		Metrics:     metrics.NewHTTPMetrics(registry),
		DB:          dbClient,
		Redis:       redisClient,
		RateLimiter: redisClient,
		Idempotency: redisClient,
		Sessions:    sessionManager,
		Resolver:    resolver,
		Users:       usersRepo,
		Auth:        authService,
		Register:    registerService,
		Leads:       leadService,
		Team:        teamService,
		Exports:     exportService,
		Vehicles:    vehicleService,
		Admins:      adminService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
