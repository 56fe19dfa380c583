package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/account"
	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/session"
	"github.com/jjenkins/globeguru/internal/templates"
)

func profileData(cat *catalog.Catalog, p model.Profile) templates.ProfileData {
	return templates.ProfileData{
		Profile:        p,
		Favorites:      account.Favorites,
		RecentSearches: account.RecentSearches,
		Activity:       account.RecentActivity,
		Countries:      cat.Countries(),
	}
}

func ProfileHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := pageMeta(c, bundle, "profile.title", "/profile")
		return render(c, templates.Profile(m, profileData(cat, session.From(c).Profile.Profile())))
	}
}

func ProfileSaveHandler(cat *catalog.Catalog, bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.Profile
		if err := c.BodyParser(&p); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid profile form")
		}

		updated, err := session.From(c).Profile.Update(p)
		d := profileData(cat, updated)
		var verr *account.ValidationError
		switch {
		case errors.As(err, &verr):
			d.Profile = p
			d.Errors = verr.Fields
		case err != nil:
			logger.Error("profile update failed", zap.Error(err))
			return pageError(c, bundle, err)
		default:
			d.Saved = true
		}

		m := pageMeta(c, bundle, "profile.title", "/profile")
		if isHTMX(c) {
			return render(c, templates.ProfileForm(m, d))
		}
		return render(c, templates.Profile(m, d))
	}
}

func SignupHandler(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, templates.Signup(pageMeta(c, bundle, "auth.signupTitle", "/signup"), templates.SignupData{}))
	}
}

// SignupSubmitHandler validates the form; a valid form only shows the
// confirmation since no account is stored
func SignupSubmitHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form model.SignupForm
		if err := c.BodyParser(&form); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid signup form")
		}

		d := templates.SignupData{Form: form}
		err := account.ValidateSignup(form)
		var verr *account.ValidationError
		switch {
		case errors.As(err, &verr):
			d.Errors = verr.Fields
		case err != nil:
			logger.Error("signup validation failed", zap.Error(err))
			return pageError(c, bundle, err)
		default:
			d.Created = true
		}

		m := pageMeta(c, bundle, "auth.signupTitle", "/signup")
		if isHTMX(c) {
			return render(c, templates.SignupForm(m, d))
		}
		return render(c, templates.Signup(m, d))
	}
}
