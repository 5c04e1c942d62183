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

	"github.com/agromart/agromart-backend/api/routes"
	"github.com/agromart/agromart-backend/internal/address"
	"github.com/agromart/agromart-backend/internal/auth"
	"github.com/agromart/agromart-backend/internal/cart"
	"github.com/agromart/agromart-backend/internal/notifications"
	"github.com/agromart/agromart-backend/internal/orders"
	product "github.com/agromart/agromart-backend/internal/products"
	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/auth/session"
	"github.com/agromart/agromart-backend/pkg/config"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/metrics"
	"github.com/agromart/agromart-backend/pkg/migrate"
	"github.com/agromart/agromart-backend/pkg/redis"
	"github.com/agromart/agromart-backend/pkg/security"
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
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDeps(cfg, logg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func buildDeps(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	registry *prometheus.Registry,
) (routes.Deps, error) {
	conn := dbClient.DB()

	usersRepo := users.NewRepository(conn)
	notificationsRepo := notifications.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	addressRepo := address.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	notificationService, err := notifications.NewService(notificationsRepo, cfg.Notifications.DefaultPageSize)
	if err != nil {
		return routes.Deps{}, err
	}
	dispatcher, err := notifications.NewDispatcher(notificationService, notificationsRepo, usersRepo, metrics.NewNotificationMetrics(registry))
	if err != nil {
		return routes.Deps{}, err
	}

	usersService, err := users.NewService(usersRepo, sessionManager)
	if err != nil {
		return routes.Deps{}, err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Hasher:         security.NewHasher(cfg.Password),
		Welcome:        dispatcher,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	cartService, err := cart.NewService(cartRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	addressService, err := address.NewService(addressRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	productService, err := product.NewService(productRepo, dbClient, dispatcher, usersRepo, cfg.Notifications.LowStockThreshold, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	ordersService, err := orders.NewService(orders.Deps{
		Orders:            ordersRepo,
		Carts:             cartRepo,
		Products:          productRepo,
		Addresses:         addressRepo,
		Tx:                dbClient,
		Notify:            dispatcher,
		LowStockThreshold: cfg.Notifications.LowStockThreshold,
		Logger:            logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessionManager,
		Metrics:       metrics.NewHTTPMetrics(registry),
		Gatherer:      registry,
		Auth:          authService,
		Users:         usersService,
		Notifications: notificationService,
		Announcer:     dispatcher,
		Cart:          cartService,
		Addresses:     addressService,
		Products:      productService,
		Orders:        ordersService,
	}, nil
}
