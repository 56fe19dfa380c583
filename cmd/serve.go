package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/config"
	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/handlers"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/service"
	"github.com/jjenkins/globeguru/internal/session"
	"github.com/jjenkins/globeguru/internal/store"
	"github.com/jjenkins/globeguru/internal/task"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GlobeGuru web server",
	Long: `Start the web server with the country catalog, chat assistant and offline downloads.

The catalog is embedded in the binary. When database.url (or DATABASE_URL) is
set and the database has been seeded, the catalog is read from PostgreSQL instead.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to run the server on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	bundle, err := i18n.Load(logger)
	if err != nil {
		return err
	}

	chatCfg := chat.AssistantConfig()
	chatCfg.ReplyDelay = cfg.Chat.ReplyDelay
	widgetCfg := chat.WidgetConfig()
	widgetCfg.ReplyDelay = cfg.Chat.WidgetDelay

	sessions := session.NewRegistry(cfg.Session.Max, cfg.Session.TTL, session.Options{
		Scheduler: task.Real{},
		Catalog:   cat,
		Chat:      chatCfg,
		Widget:    widgetCfg,
		Offline:   offline.Config{TickInterval: cfg.Offline.TickInterval, Step: cfg.Offline.Step},
		Logger:    logger,
	})
	defer sessions.Close()

	locator := geo.NewLocator(cfg.Geo.Timeout, logger.Named("geo"),
		geo.NewDeviceProvider(cat.Countries()),
		geo.NewIPProvider(service.NewIPAPIClient(cfg.Geo.IPAPIURL), cfg.Geo.CacheSize, cfg.Geo.CacheTTL),
	)

	app := fiber.New(fiber.Config{
		AppName:               "GlobeGuru",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	handlers.Register(app, handlers.Deps{
		Catalog:  cat,
		Bundle:   bundle,
		Sessions: sessions,
		Locator:  locator,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("starting server", zap.String("addr", addr), zap.Int("countries", len(cat.Countries())))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// loadCatalog prefers a seeded database and falls back to the embedded data
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	embedded, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return embedded, nil
	}

	db, err := store.NewDB(cfg.Database.URL)
	if err != nil {
		logger.Warn("database unavailable, using embedded catalog", zap.Error(err))
		return embedded, nil
	}
	defer db.Close()

	cat, err := store.LoadCatalog(ctx, db, embedded)
	if err != nil {
		if errors.Is(err, store.ErrEmptyCatalog) {
			logger.Warn("database catalog is empty, run `globeguru seed`; using embedded catalog")
		} else {
			logger.Warn("failed to load catalog from database, using embedded catalog", zap.Error(err))
		}
		return embedded, nil
	}
	logger.Info("catalog loaded from database", zap.Int("countries", len(cat.Countries())))
	return cat, nil
}
