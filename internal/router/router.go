package router

import (
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/config"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/handler"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New returns a configured Gin engine serving app.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, app *App) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(app.Cache, cfg.RateLimitPerMinute, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(app.Sales)
	installmentsH := handler.NewInstallmentsHandler(app.Installments)
	inventoryH := handler.NewInventoryHandler(app.Inventory)
	notificationsH := handler.NewNotificationsHandler(app.Notifications)
	reportsH := handler.NewReportsHandler(app.Reports)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var redisCheck redis.Cmdable
	if rdb != nil {
		redisCheck = rdb
	}
	r.GET("/health", handler.Health(db, redisCheck, app.Mailer.Breaker()))

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	Register(v1, salesH, installmentsH, inventoryH, notificationsH, reportsH)

	return r
}

// Register mounts the API routes on g. Split out so handler tests can mount
// them behind a stub auth middleware.
func Register(
	g *gin.RouterGroup,
	salesH *handler.SalesHandler,
	installmentsH *handler.InstallmentsHandler,
	inventoryH *handler.InventoryHandler,
	notificationsH *handler.NotificationsHandler,
	reportsH *handler.ReportsHandler,
) {
	sales := g.Group("/sales")
	{
		sales.POST("", salesH.CreateSale)
		sales.GET("", salesH.ListSales)
		sales.GET("/:id", salesH.GetSale)
	}

	inst := g.Group("/installments")
	{
		inst.GET("/plans", installmentsH.ListPlans)
		inst.GET("/plans/:id", installmentsH.GetPlan)
		inst.POST("/payments/:id/pay", installmentsH.PayInstallment)
		inst.GET("/payments/:id/receipt", installmentsH.GetReceipt)
	}
	g.GET("/customers/:id/installment-plans", installmentsH.ListCustomerPlans)

	inv := g.Group("/inventory")
	{
		inv.POST("/adjustments", inventoryH.AdjustStock)
		inv.POST("/variants/:id/restock", inventoryH.Restock)
		inv.GET("/movements", inventoryH.ListMovements)
	}

	notif := g.Group("/notifications")
	{
		notif.GET("", notificationsH.ListUnread)
		notif.GET("/stats", notificationsH.Stats)
		notif.POST("/scan", notificationsH.Scan)
		notif.PATCH("/:id/read", notificationsH.MarkAsRead)
	}

	reports := g.Group("/reports")
	{
		reports.GET("/sales", reportsH.SalesReport)
		reports.GET("/:id", reportsH.Status)
		reports.GET("/:id/download", reportsH.Download)
	}
}
