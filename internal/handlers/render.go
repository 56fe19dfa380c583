package handlers

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/globeguru/internal/account"
	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/templates"
)

func render(c *fiber.Ctx, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page))
	return handler(c)
}

func renderStatus(c *fiber.Ctx, status int, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, templ.WithStatus(status)))
	return handler(c)
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// pageMeta builds the shared page context in the request language
func pageMeta(c *fiber.Ctx, bundle *i18n.Bundle, titleKey, active string) templates.Meta {
	lang := i18n.Lang(c)
	return templates.Meta{
		Title:  bundle.T(lang, titleKey),
		Lang:   lang,
		Active: active,
		T:      func(key string) string { return bundle.T(lang, key) },
	}
}

// criteriaFromQuery reads the filter state of a list screen. region is an
// alias of category on the country list.
func criteriaFromQuery(c *fiber.Ctx, defaultSort string) model.FilterCriteria {
	var fc model.FilterCriteria
	_ = c.QueryParser(&fc)
	if region := c.Query("region"); region != "" {
		fc.Category = region
	}
	if fc.SortKey == "" {
		fc.SortKey = defaultSort
	}
	return fc
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownCountry):
		return fiber.StatusNotFound
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, account.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, offline.ErrOffline), errors.Is(err, offline.ErrBusy),
		errors.Is(err, offline.ErrNotDownloaded):
		return fiber.StatusConflict
	case errors.Is(err, chat.ErrClosed), errors.Is(err, offline.ErrClosed):
		return fiber.StatusGone
	default:
		return fiber.StatusInternalServerError
	}
}

// apiError writes err as a JSON error body with its mapped status
func apiError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}
	if status == fiber.StatusInternalServerError {
		body["error"] = http.StatusText(status)
	}
	var verr *account.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	return c.Status(status).JSON(body)
}

// pageError renders an error page with the mapped status
func pageError(c *fiber.Ctx, bundle *i18n.Bundle, err error) error {
	status := statusFor(err)
	m := pageMeta(c, bundle, "app.name", "")
	m.Title = http.StatusText(status)
	return renderStatus(c, status, templates.ErrorPage(m, err.Error()))
}
