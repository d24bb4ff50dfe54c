package router

import (
	"time"

	"famorders/internal/config"
	"famorders/internal/handler"
	"famorders/internal/middleware"
	"famorders/internal/repository"
	"famorders/internal/service"
	"famorders/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer shared by the HTTP API and the worker pool.
type Services struct {
	Orders       service.OrderService
	Plans        service.PlanService
	Materializer service.MaterializerService
	Production   service.ProductionService
}

// NewServices wires repositories into services. With a nil rdb, payment
// notices are skipped and ScheduleMonth materializes inline.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	orderRepo := repository.NewOrderRepository(db)
	historyRepo := repository.NewOrderStatusHistoryRepository(db)
	planRepo := repository.NewRecurringPlanRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productionRepo := repository.NewProductionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var (
		notifier service.Notifier
		queue    service.MaterializeQueue
	)
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
		notifier = dispatcher
	}
	materializer := service.NewMaterializerService(planRepo, orderRepo, historyRepo, customerRepo, notifier, cfg.BusinessName)
	if dispatcher != nil {
		queue = dispatcher
	} else {
		queue = worker.NewInlineQueue(materializer)
	}

	return &Services{
		Orders:       service.NewOrderService(orderRepo, historyRepo, productRepo, customerRepo),
		Plans:        service.NewPlanService(planRepo, productRepo, customerRepo, queue),
		Materializer: materializer,
		Production:   service.NewProductionService(productionRepo, cfg.BusinessName),
	}
}

// New returns a configured Gin engine. stop ends background middleware goroutines.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services, stop <-chan struct{}) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute, stop)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(svcs.Orders)
	plansH := handler.NewPlansHandler(svcs.Plans, svcs.Materializer)
	productionH := handler.NewProductionHandler(svcs.Production)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.GET("", ordersH.List)
			orders.POST("", ordersH.Create)
			orders.GET("/:id", ordersH.Get)
			orders.PUT("/:id", ordersH.Update)
			orders.DELETE("/:id", ordersH.Delete)
			orders.PATCH("/:id/status", ordersH.SetStatus)
			orders.GET("/:id/history", ordersH.History)
		}

		recurring := v1.Group("/recurring")
		{
			recurring.GET("/plans", plansH.List)
			recurring.POST("/plans", plansH.Create)
			recurring.GET("/plans/:id", plansH.Get)
			recurring.PUT("/plans/:id", plansH.Update)
			recurring.DELETE("/plans/:id", plansH.Delete)
			recurring.POST("/plans/:id/deliveries", plansH.GenerateDeliveries)
			recurring.POST("/plans/:id/monthly-payment", plansH.MonthlyPayment)
			recurring.POST("/schedule", plansH.Schedule)
		}

		v1.GET("/production", productionH.Needs)
		v1.GET("/production/sheet", productionH.Sheet)
	}

	// Swagger UI only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
