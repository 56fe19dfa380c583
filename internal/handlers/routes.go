package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/logging"
	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/session"
)

// Deps are the shared services behind the routes
type Deps struct {
	Catalog  *catalog.Catalog
	Bundle   *i18n.Bundle
	Sessions *session.Registry
	Locator  *geo.Locator
	Logger   *zap.Logger
}

// Register mounts the middleware, pages and JSON API on app
func Register(app *fiber.App, d Deps) {
	app.Use(logging.AccessLog(d.Logger.Named("http")))
	app.Use(metrics.Middleware())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(i18n.Middleware())
	app.Use(d.Sessions.Middleware())

	cat, bundle, logger := d.Catalog, d.Bundle, d.Logger

	// Pages
	app.Get("/", HomeHandler(cat, bundle))
	app.Post("/lang", LanguageHandler())

	app.Get("/countries", CountriesHandler(cat, bundle))
	app.Get("/countries/:code", CountryDetailHandler(cat, bundle))
	app.Get("/countries/:code/laws", CountryLawsHandler(cat, bundle))
	app.Get("/search", SearchHandler(cat, bundle))

	app.Get("/chat", ChatHandler(cat, bundle))
	app.Post("/chat", ChatSendHandler(bundle, logger))
	app.Get("/chat/messages", ChatMessagesHandler(bundle))
	app.Get("/widget", WidgetHandler(bundle))
	app.Post("/widget", WidgetSendHandler(bundle, logger))
	app.Get("/widget/messages", WidgetMessagesHandler(bundle))

	app.Get("/offline", OfflineHandler(bundle))
	app.Post("/offline/network", OfflineNetworkHandler(bundle))
	app.Post("/offline/:code/download", OfflineDownloadHandler(bundle, logger))
	app.Post("/offline/:code/update", OfflineUpdateHandler(bundle, logger))
	app.Delete("/offline/:code", OfflineDeleteHandler(bundle, logger))

	app.Get("/location", LocationHandler(d.Locator, bundle, logger))

	app.Get("/profile", ProfileHandler(cat, bundle))
	app.Post("/profile", ProfileSaveHandler(cat, bundle, logger))
	app.Get("/premium", PremiumHandler(cat, bundle))
	app.Get("/about", AboutHandler(cat, bundle))
	app.Get("/signup", SignupHandler(bundle))
	app.Post("/signup", SignupSubmitHandler(bundle, logger))

	// JSON API
	api := app.Group("/api")
	api.Get("/countries", APICountriesHandler(cat))
	api.Get("/countries/:code", APICountryHandler(cat))
	api.Get("/countries/:code/laws", APICountryLawsHandler(cat))
	api.Get("/search", APISearchHandler(cat))
	api.Get("/law-of-the-day", APILawOfTheDayHandler(cat))

	api.Get("/chat", APIChatHandler(assistant))
	api.Post("/chat", APIChatSendHandler(assistant))
	api.Delete("/chat", APIChatResetHandler())
	api.Get("/widget/chat", APIChatHandler(widget))
	api.Post("/widget/chat", APIChatSendHandler(widget))

	api.Get("/offline", APIOfflineHandler())
	api.Post("/offline/network", APIOfflineNetworkHandler())
	api.Post("/offline/:code/download", APIOfflineDownloadHandler())
	api.Post("/offline/:code/update", APIOfflineUpdateHandler())
	api.Delete("/offline/:code", APIOfflineDeleteHandler())

	api.Get("/location", APILocationHandler(d.Locator, logger))

	api.Post("/signup", APISignupHandler())
	api.Get("/profile", APIProfileHandler())
	api.Post("/profile", APIProfileUpdateHandler())
	api.Delete("/session", APISessionDeleteHandler(d.Sessions))
}
