package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/templates"
)

// locationRequest collects the caller address and the optional lat/lon
// reported by the browser
func locationRequest(c *fiber.Ctx) geo.Request {
	req := geo.Request{IP: c.IP()}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat == nil && errLon == nil && geo.ValidPosition(lat, lon) {
		req.Position = &model.Position{Latitude: lat, Longitude: lon}
	}
	return req
}

func locate(c *fiber.Ctx, locator *geo.Locator, logger *zap.Logger) *model.Location {
	loc, err := locator.Locate(c.UserContext(), locationRequest(c))
	if err != nil {
		if !errors.Is(err, geo.ErrNotDetected) {
			logger.Warn("location lookup failed", zap.Error(err))
		}
		return nil
	}
	return loc
}

// LocationHandler renders the country suggestion banner, or nothing when
// the location is unknown
func LocationHandler(locator *geo.Locator, bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := pageMeta(c, bundle, "location.yourLocation", "")
		return render(c, templates.LocationSuggestion(m, locate(c, locator, logger)))
	}
}
