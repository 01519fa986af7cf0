package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/config"
	"github.com/fenilmodi00/cse-site/handlers"
	"github.com/fenilmodi00/cse-site/jobs"
	"github.com/fenilmodi00/cse-site/services"
	"github.com/fenilmodi00/cse-site/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()

	site, err := config.LoadSite(cfg.SiteManifest)
	if err != nil {
		logrus.Fatalf("Failed to load site manifest: %v", err)
	}

	clock := shared.SystemClock{}
	httpClientFactory := shared.NewHTTPClientFactory(cfg.HTTPTimeout)
	defer httpClientFactory.CleanupAllClients()

	// One client, cache and region store for the lifetime of the server
	client := services.NewMarketDataClient(services.MarketDataClientConfig{
		BaseURL:      cfg.MarketAPIBaseURL,
		HTTPTimeout:  cfg.HTTPTimeout,
		CacheTimeout: cfg.CacheTimeout,
		Clock:        clock,
	}, httpClientFactory)
	regions := services.NewRegionStore(clock)
	controller := services.NewViewController(client, regions, clock)

	renderer, err := services.NewPageRenderer(site.Pages, regions)
	if err != nil {
		logrus.Fatalf("Failed to load pages: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"api_base_url":     cfg.MarketAPIBaseURL,
		"cache_timeout":    cfg.CacheTimeout,
		"refresh_interval": cfg.RefreshInterval,
		"http_timeout":     cfg.HTTPTimeout,
		"pages":            len(site.Pages),
		"live_pages":       len(site.LivePages()),
	}).Info("Market site services initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial render, then the fixed-period refresh
	go controller.Initialize(ctx)

	refreshJob := jobs.NewMarketRefreshJob(controller, cfg.RefreshInterval, clock)
	refreshJob.Start(ctx)

	metricsJob := jobs.NewMetricsReportJob(client)
	metricsJob.Start(ctx, jobs.DefaultMetricsReportInterval)

	app := newApp(site, cfg, handlers.NewPageHandler(renderer),
		handlers.NewMarketHandler(controller), handlers.NewMetricsHandler(client))

	go func() {
		logrus.Infof("Server starting on port %s", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logrus.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()
	refreshJob.Stop()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}
	client.LogSummary()
}

func newApp(site *config.Site, cfg *config.Config, pageHandler *handlers.PageHandler,
	marketHandler *handlers.MarketHandler, metricsHandler *handlers.MetricsHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               site.Name,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Static("/static", cfg.StaticDir)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Pages
	for _, page := range site.Pages {
		app.Get(page.Path, pageHandler.Serve(page.Slug))
	}

	// Routes
	api := app.Group("/api/v1")

	// Market Routes
	market := api.Group("/market")
	market.Get("/regions", marketHandler.GetRegions)
	market.Get("/regions/:id", marketHandler.GetRegion)
	market.Post("/refresh", marketHandler.TriggerRefresh)
	market.Get("/metrics", metricsHandler.GetMetrics)

	return app
}
