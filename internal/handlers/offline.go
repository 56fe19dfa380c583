package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/session"
	"github.com/jjenkins/globeguru/internal/templates"
)

func offlinePanel(c *fiber.Ctx, bundle *i18n.Bundle, mgr *offline.Manager, errMsg string) error {
	m := pageMeta(c, bundle, "offline.title", "")
	return render(c, templates.OfflinePanel(m, templates.OfflineData{
		Tasks:   mgr.Snapshot(),
		Online:  mgr.Online(),
		Notices: mgr.Notices(),
		Error:   errMsg,
	}))
}

func OfflineHandler(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return offlinePanel(c, bundle, session.From(c).Offline, "")
	}
}

// offlineAction runs one manager operation and re-renders the panel with
// the rejection message, if any
func offlineAction(bundle *i18n.Bundle, logger *zap.Logger, op func(*offline.Manager, string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mgr := session.From(c).Offline
		var errMsg string
		if err := op(mgr, c.Params("code")); err != nil {
			logger.Debug("offline action rejected", zap.String("code", c.Params("code")), zap.Error(err))
			errMsg = err.Error()
		}
		return offlinePanel(c, bundle, mgr, errMsg)
	}
}

func OfflineDownloadHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return offlineAction(bundle, logger, (*offline.Manager).Start)
}

func OfflineDeleteHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return offlineAction(bundle, logger, (*offline.Manager).Delete)
}

func OfflineUpdateHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return offlineAction(bundle, logger, func(m *offline.Manager, code string) error {
		_, err := m.Update(code)
		return err
	})
}

// OfflineNetworkHandler records the connectivity reported by the page
func OfflineNetworkHandler(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mgr := session.From(c).Offline
		mgr.SetOnline(c.FormValue("online") == "true")
		return offlinePanel(c, bundle, mgr, "")
	}
}
