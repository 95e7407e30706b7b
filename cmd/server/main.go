package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/cache"
	"bizup-dashboard/internal/config"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/database"
	"bizup-dashboard/internal/inventory"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/menu"
	"bizup-dashboard/internal/orders"
	"bizup-dashboard/internal/outofstock"
	"bizup-dashboard/internal/settings"
	"bizup-dashboard/internal/toast"
)

const shutdownTimeout = 10 * time.Second

type snapshotStore interface {
	loader.SnapshotStore
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:        logger.LogLevel(cfg.Log.Level),
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: true,
		Environment:  cfg.Environment,
	})
	defer appLog.Close()

	for _, w := range cfg.Warnings() {
		appLog.Warn(w)
	}

	ctx := context.Background()

	// Activity log: postgres when configured, otherwise in memory.
	var activity audit.Store = audit.NewMemoryRecorder(0)
	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		appLog.Error("database unavailable, keeping activity log in memory", "error", err)
	} else if db != nil {
		activity = audit.NewGormRecorder(db, appLog)
		defer database.Close(db)
	}

	var snapshots snapshotStore = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisAddr, appLog)
		if err != nil {
			appLog.Error("redis unavailable, keeping snapshots in memory", "error", err)
		} else {
			snapshots = rs
		}
	}
	defer snapshots.Close()

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(appLog),
	)

	feed := toast.NewFeed()
	deps := dashboard.Deps{
		Toasts:    feed,
		Audit:     activity,
		Snapshots: snapshots,
		Logger:    appLog,
	}

	shell := dashboard.NewShell(feed, appLog)
	shell.Register(dashboard.TabInventory, func() dashboard.Tab {
		return inventory.New(inventory.NewAPI(client), deps)
	})
	shell.Register(dashboard.TabMenu, func() dashboard.Tab {
		return menu.New(menu.NewAPI(client), deps, menu.Options{RefreshInterval: cfg.Tabs.MenuRefreshInterval})
	})
	shell.Register(dashboard.TabOrder, func() dashboard.Tab {
		return orders.New(orders.NewAPI(client), deps)
	})
	shell.Register(dashboard.TabOutOfStock, func() dashboard.Tab {
		return outofstock.New(outofstock.NewAPI(client), deps, outofstock.Options{RestockQuantity: cfg.Tabs.RestockQuantity})
	})
	shell.Register(dashboard.TabSettings, func() dashboard.Tab {
		return settings.New(settings.NewEmployeeAPI(client), settings.NewStoreAPI(client), deps)
	})
	defer shell.Close()

	app := fiber.New(fiber.Config{
		AppName:   "bizup-dashboard",
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			appLog.WithRequestID(c.UserContext()).Error("unexpected error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unexpected server error"})
		},
	})

	app.Use(recover.New())
	app.Use(appLog.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins(),
		AllowHeaders:  "Origin, Content-Type, Accept, " + logger.RequestIDHeader,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: logger.RequestIDHeader,
	}))

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "active_tab": shell.Active()})
	})

	dashboard.RegisterRoutes(api, shell)
	api.Get("/activity", audit.ListHandler(activity))
	inventory.RegisterRoutes(api, shell)
	menu.RegisterRoutes(api, shell)
	orders.RegisterRoutes(api, shell)
	outofstock.RegisterRoutes(api, shell)
	settings.RegisterRoutes(api, shell)

	if err := shell.Activate(ctx, dashboard.DefaultTab); err != nil {
		appLog.Error("default tab could not be mounted", "tab", dashboard.DefaultTab, "error", err)
	}

	go func() {
		appLog.Info("server listening", "port", cfg.HTTPPort, "api", cfg.API.BaseURL)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			appLog.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		appLog.Error("shutdown", "error", err)
	}
}

// openDatabase returns nil without error when no DSN is configured.
func openDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	return database.Open(dsn)
}
