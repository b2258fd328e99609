package router

import (
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/cache"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/config"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/worker"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the composition root shared by the HTTP router, the worker pool and
// the scheduler. Dispatcher is nil when Redis is not configured.
type App struct {
	Sales         service.SaleService
	Installments  service.InstallmentService
	Inventory     service.InventoryService
	Notifications service.NotificationService
	Reports       service.ReportService

	Mailer     *infra.Mailer
	Dispatcher *worker.Dispatcher
	Cache      cache.Store
}

// Wire builds every service. With Redis, stock checks and emails go through
// the job queue; without it they run inline after commit.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func Wire(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store cache.Store) *App {
	// ── Repositories ─────────────────────────────────────────────────────────
	variantRepo := repository.NewVariantRepository(db)
	logRepo := repository.NewInventoryLogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	creditRepo := repository.NewCreditAccountRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	notificationRepo := repository.NewStockNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	var dispatcher *worker.Dispatcher
	var emails service.EmailSender = mailer
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
		emails = worker.NewQueuedMailer(dispatcher, mailer)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	notificationSvc := service.NewNotificationService(variantRepo, notificationRepo, adminRepo, store, emails,
		service.NotificationConfig{
			DefaultThreshold: cfg.StockDefaultThreshold,
			RecipientTTL:     cfg.AdminEmailCacheTTL,
		})

	var watcher service.StockWatcher = notificationSvc
	if dispatcher != nil {
		watcher = worker.NewStockCheckPublisher(dispatcher, notificationSvc)
	}

	return &App{
		Sales:         service.NewSaleService(orderRepo, customerRepo, creditRepo, installmentRepo, variantRepo, logRepo, watcher),
		Installments:  service.NewInstallmentService(installmentRepo, orderRepo, variantRepo, logRepo, watcher),
		Inventory:     service.NewInventoryService(variantRepo, logRepo, watcher),
		Notifications: notificationSvc,
		Reports:       service.NewReportService(reportRepo, cfg.ReportStoragePath),
		Mailer:        mailer,
		Dispatcher:    dispatcher,
		Cache:         store,
	}
}

// WorkerHandlers routes queued jobs to their processors.
func (a *App) WorkerHandlers(rdb *redis.Client) worker.Handlers {
	return worker.Handlers{
		worker.JobEmail:      worker.NewEmailWorker(a.Mailer, rdb).Process,
		worker.JobStockCheck: worker.NewStockCheckWorker(a.Notifications).Process,
	}
}

// Tasks returns the periodic background jobs.
func (a *App) Tasks(cfg *config.Config) []worker.Task {
	return []worker.Task{
		worker.StockScanTask(a.Notifications, cfg.StockScanInterval),
		worker.ReportTask(a.Reports, cfg.ReportPollInterval, cfg.ReportBatchSize),
		worker.OverdueTask(a.Installments, cfg.OverdueSweepInterval),
	}
}
