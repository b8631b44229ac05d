package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minedesk/minedesk/internal/billing"
	"github.com/minedesk/minedesk/internal/config"
	"github.com/minedesk/minedesk/internal/customer"
	"github.com/minedesk/minedesk/internal/earnings"
	"github.com/minedesk/minedesk/internal/hardware"
	"github.com/minedesk/minedesk/internal/invoice"
	"github.com/minedesk/minedesk/internal/middleware"
	"github.com/minedesk/minedesk/internal/notification"
	"github.com/minedesk/minedesk/internal/pool"
	"github.com/minedesk/minedesk/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories fall back to memory stores in dev mode.
	var customerRepo customer.Repository
	var hardwareRepo hardware.Repository
	var invoiceRepo invoice.Repository
	var ledger billing.Ledger
	if d.DB != nil {
		customerRepo = customer.NewPostgresRepository(d.DB)
		hardwareRepo = hardware.NewPostgresRepository(d.DB)
		invoiceRepo = invoice.NewPostgresRepository(d.DB)
		ledger = billing.NewPostgresLedger(d.DB)
	} else {
		customerRepo = customer.NewMemoryRepository()
		hardwareRepo = hardware.NewMemoryRepository()
		invoiceRepo = invoice.NewMemoryRepository()
		ledger = billing.NewInMemory()
	}

	poolClient, err := pool.New(d.Cfg)
	if err != nil {
		return err
	}

	customerSvc := customer.NewService(customerRepo)
	hardwareSvc := hardware.NewService(hardwareRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	invoiceSvc := invoice.NewService(invoiceRepo, ledger, hardwareSvc, notifier, invoice.Rates{
		HostingFeeCentsPerDay: d.Cfg.HostingFeeCentsPerDay,
		PowerRateCentsPerKWh:  d.Cfg.PowerRateCentsPerKWh,
	})
	earningsSvc := earnings.NewService(customerSvc, poolClient)
	gateway := wallet.NewGateway(customerSvc, poolClient, d.Logger, wallet.WithTTL(d.Cfg.WalletCacheTTL))

	customerHandler := customer.NewHandler(customerSvc)
	hardwareHandler := hardware.NewHandler(hardwareSvc)
	invoiceHandler := invoice.NewHandler(invoiceSvc)
	earningsHandler := earnings.NewHandler(earningsSvc)
	walletHandler := wallet.NewHandler(gateway)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	adminGuard := middleware.AdminToken(d.Cfg.AdminToken)
	portalGuard := middleware.PortalAuth(customerSvc, d.Cfg.AdminToken)
	poolLimit := middleware.UpstreamRateLimit(d.Cache, 30)

	RegisterCustomerRoutes(api, customerHandler, adminGuard)
	RegisterHardwareRoutes(api, hardwareHandler, adminGuard)
	RegisterInvoiceRoutes(api, invoiceHandler, adminGuard, portalGuard, d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	RegisterWalletRoutes(api, walletHandler, adminGuard, portalGuard, poolLimit)
	RegisterEarningsRoutes(api, earningsHandler, portalGuard, poolLimit)

	return nil
}
