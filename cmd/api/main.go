package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/centavohq/centavo-backend/api/routes"
	"github.com/centavohq/centavo-backend/internal/inventory"
	"github.com/centavohq/centavo-backend/internal/production"
	"github.com/centavohq/centavo-backend/internal/products"
	"github.com/centavohq/centavo-backend/pkg/config"
	"github.com/centavohq/centavo-backend/pkg/db"
	"github.com/centavohq/centavo-backend/pkg/logger"
	"github.com/centavohq/centavo-backend/pkg/metrics"
	"github.com/centavohq/centavo-backend/pkg/migrate"
	"github.com/centavohq/centavo-backend/pkg/redis"
	"github.com/joho/godotenv"
)

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

	materialRepo := inventory.NewMaterialRepository(dbClient.DB())
	ledger := inventory.NewLotLedger(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	recordRepo := production.NewRecordRepository(dbClient.DB())

	inventorySvc, err := inventory.NewService(materialRepo, ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	productSvc, err := products.NewService(productRepo, materialRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	var productionMetrics *metrics.ProductionMetrics
	if cfg.Metrics.Enabled {
		productionMetrics = metrics.NewProductionMetrics(prometheus.DefaultRegisterer)
	}

	productionSvc, err := production.NewService(production.ServiceParams{
		DB:          dbClient.DB(),
		Resolver:    productSvc,
		Products:    productRepo,
		Ledger:      ledger,
		Records:     recordRepo,
		Metrics:     productionMetrics,
		Logger:      logg,
		LockTimeout: cfg.DB.LockTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create production service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, inventorySvc, productSvc, productionSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
