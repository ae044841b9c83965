package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/centavohq/centavo-backend/api/controllers"
	"github.com/centavohq/centavo-backend/api/middleware"
	"github.com/centavohq/centavo-backend/internal/inventory"
	"github.com/centavohq/centavo-backend/internal/production"
	"github.com/centavohq/centavo-backend/internal/products"
	"github.com/centavohq/centavo-backend/pkg/config"
	"github.com/centavohq/centavo-backend/pkg/db"
	"github.com/centavohq/centavo-backend/pkg/logger"
	pkgredis "github.com/centavohq/centavo-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	inventoryService inventory.Service,
	productService products.Service,
	productionService production.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger pkgredis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/materials", controllers.CreateMaterial(inventoryService, logg))
		r.Get("/materials", controllers.ListMaterials(inventoryService, logg))
		r.Get("/materials/{materialID}", controllers.GetMaterial(inventoryService, logg))
		r.Delete("/materials/{materialID}", controllers.DeleteMaterial(inventoryService, logg))
		r.Post("/materials/{materialID}/lots", controllers.CreateLot(inventoryService, logg))
		r.Get("/materials/{materialID}/lots", controllers.ListLots(inventoryService, logg))

		r.Post("/products", controllers.CreateProduct(productService, logg))
		r.Get("/products", controllers.ListProducts(productService, logg))
		r.Get("/products/{productID}", controllers.GetProduct(productService, logg))
		r.Put("/products/{productID}/recipe", controllers.ReplaceRecipe(productService, logg))

		r.Post("/production", controllers.Produce(productionService, logg))
		r.Get("/production", controllers.ListProduction(productionService, logg))
	})

	return r
}
