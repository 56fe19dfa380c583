package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/filter"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/service"
	"github.com/jjenkins/globeguru/internal/templates"
)

// featuredCount is the size of the home page country grid
const featuredCount = 6

func HomeHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := templates.Home(pageMeta(c, bundle, "app.tagline", "/"), templates.HomeData{
			Featured:    cat.Featured(featuredCount),
			LawOfTheDay: cat.LawOfTheDay(),
			Trending:    cat.TrendingTopics(),
		})
		return render(c, page)
	}
}

func CountriesHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c, filter.SortAlphabetical)
		m := pageMeta(c, bundle, "countries.title", "/countries")
		result := filter.Apply(cat.Countries(), criteria, i18n.Tag(m.Lang))

		// Check if this is an HTMX request for just the grid
		if isHTMX(c) {
			return render(c, templates.CountryGrid(m, result))
		}

		return render(c, templates.Countries(m, templates.CountriesData{
			Result:   result,
			Criteria: criteria,
			Regions:  cat.Regions(),
			Risks:    cat.RiskLevels(),
		}))
	}
}

// CountryDetailHandler shows a country; unknown codes show the default country
func CountryDetailHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country := cat.CountryOrDefault(c.Params("code"))
		m := pageMeta(c, bundle, "country.overview", "/countries")
		m.Title = country.Name
		return render(c, templates.CountryDetail(m, country))
	}
}

// CountryLawsHandler lists the laws of a country; unknown codes show the default country
func CountryLawsHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country := cat.CountryOrDefault(c.Params("code"))
		laws, err := cat.Laws(country.Code)
		if err != nil {
			return pageError(c, bundle, err)
		}

		criteria := criteriaFromQuery(c, "")
		m := pageMeta(c, bundle, "laws.title", "/countries")
		result := filter.Apply(laws, criteria, i18n.Tag(m.Lang))

		if isHTMX(c) {
			return render(c, templates.LawList(m, result))
		}

		m.Title = country.Name + " · " + m.Title
		return render(c, templates.Laws(m, templates.LawsData{
			Country:    country,
			Result:     result,
			Criteria:   criteria,
			Categories: lawCategories(laws),
			Risks:      cat.RiskLevels(),
		}))
	}
}

// lawCategories lists the distinct categories of laws in first-seen order
func lawCategories(laws []model.Law) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range laws {
		if !seen[l.Category] {
			seen[l.Category] = true
			out = append(out, l.Category)
		}
	}
	return out
}

func SearchHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c, filter.SortRelevance)
		m := pageMeta(c, bundle, "search.title", "/search")
		result := filter.Apply(cat.AllLaws(), criteria, i18n.Tag(m.Lang))

		if isHTMX(c) {
			return render(c, templates.SearchResults(m, result))
		}

		return render(c, templates.Search(m, templates.SearchData{
			Result:     result,
			Criteria:   criteria,
			Countries:  cat.Countries(),
			Categories: cat.Categories(),
			Risks:      cat.RiskLevels(),
		}))
	}
}

func PremiumHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, templates.Premium(pageMeta(c, bundle, "premium.title", "/premium"), cat.PlanFeatures()))
	}
}

func AboutHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats := service.Summarize(cat)
		return render(c, templates.About(pageMeta(c, bundle, "about.title", "/about"), templates.AboutData{
			Countries:     stats.TotalCountries,
			PublishedLaws: stats.PublishedLaws,
		}))
	}
}

// LanguageHandler stores the picked language and returns to the previous page
func LanguageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := i18n.Match(c.FormValue("lang"))
		c.Cookie(&fiber.Cookie{
			Name:     i18n.CookieName,
			Value:    lang,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		back := c.Get(fiber.HeaderReferer)
		if back == "" {
			back = "/"
		}
		return c.Redirect(back, fiber.StatusSeeOther)
	}
}
