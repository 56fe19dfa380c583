package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/account"
	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/filter"
	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/session"
)

// listResponse is the envelope of filtered collections
type listResponse[T any] struct {
	Items    []T                  `json:"items"`
	Count    int                  `json:"count"`
	Criteria model.FilterCriteria `json:"criteria"`
}

func newList[T any](result filter.Result[T], criteria model.FilterCriteria) listResponse[T] {
	items := result.Items()
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items), Criteria: criteria}
}

func APICountriesHandler(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c, filter.SortAlphabetical)
		result := filter.Apply(cat.Countries(), criteria, i18n.Tag(i18n.Lang(c)))
		return c.JSON(newList(result, criteria))
	}
}

func APICountryHandler(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		country, err := cat.Country(c.Params("code"))
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(country)
	}
}

func APICountryLawsHandler(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		laws, err := cat.Laws(c.Params("code"))
		if err != nil {
			return apiError(c, err)
		}
		criteria := criteriaFromQuery(c, "")
		return c.JSON(newList(filter.Apply(laws, criteria, i18n.Tag(i18n.Lang(c))), criteria))
	}
}

func APISearchHandler(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c, filter.SortRelevance)
		return c.JSON(newList(filter.Apply(cat.AllLaws(), criteria, i18n.Tag(i18n.Lang(c))), criteria))
	}
}

func APILawOfTheDayHandler(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(cat.LawOfTheDay())
	}
}

// chatState is the transcript of a chat session
type chatState struct {
	Messages []model.ChatMessage `json:"messages"`
	Typing   bool                `json:"typing"`
}

type chatRequest struct {
	Text string `json:"text" form:"text"`
}

func chatStateOf(cs *chat.Session, since int) chatState {
	msgs := cs.Messages()
	if since > 0 {
		msgs = cs.Since(since)
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return chatState{Messages: msgs, Typing: cs.Typing()}
}

// APIChatHandler returns the transcript; ?since=N limits it to messages after seq N
func APIChatHandler(pick func(*session.Session) *chat.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(chatStateOf(pick(session.From(c)), c.QueryInt("since")))
	}
}

func APIChatSendHandler(pick func(*session.Session) *chat.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		cs := pick(session.From(c))
		msg, err := cs.Send(req.Text)
		if err != nil {
			return apiError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": msg, "typing": cs.Typing()})
	}
}

func APIChatResetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cs := session.From(c).Chat
		if err := cs.Reset(); err != nil {
			return apiError(c, err)
		}
		return c.JSON(chatStateOf(cs, 0))
	}
}

// offlineState is the download list with the connectivity flag
type offlineState struct {
	Online  bool                 `json:"online"`
	Tasks   []model.DownloadTask `json:"tasks"`
	Notices []model.Notice       `json:"notices"`
}

func offlineStateOf(s *session.Session) offlineState {
	notices := s.Offline.Notices()
	if notices == nil {
		notices = []model.Notice{}
	}
	return offlineState{Online: s.Offline.Online(), Tasks: s.Offline.Snapshot(), Notices: notices}
}

func APIOfflineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(offlineStateOf(session.From(c)))
	}
}

func APIOfflineDownloadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session.From(c)
		if err := s.Offline.Start(c.Params("code")); err != nil {
			return apiError(c, err)
		}
		task, _ := s.Offline.Task(c.Params("code"))
		return c.Status(fiber.StatusAccepted).JSON(task)
	}
}

func APIOfflineUpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		notice, err := session.From(c).Offline.Update(c.Params("code"))
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(notice)
	}
}

func APIOfflineDeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session.From(c)
		if err := s.Offline.Delete(c.Params("code")); err != nil {
			return apiError(c, err)
		}
		task, _ := s.Offline.Task(c.Params("code"))
		return c.JSON(task)
	}
}

type networkRequest struct {
	Online bool `json:"online" form:"online"`
}

func APIOfflineNetworkHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req networkRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		s := session.From(c)
		s.Offline.SetOnline(req.Online)
		return c.JSON(offlineStateOf(s))
	}
}

// APILocationHandler reports the detected country; detected is false when
// every lookup failed
func APILocationHandler(locator *geo.Locator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc := locate(c, locator, logger)
		if loc == nil {
			return c.JSON(fiber.Map{"detected": false})
		}
		return c.JSON(fiber.Map{"detected": true, "location": loc})
	}
}

func APISignupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form model.SignupForm
		if err := c.BodyParser(&form); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := account.ValidateSignup(form); err != nil {
			return apiError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": form.Name, "email": form.Email})
	}
}

func APIProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"profile":        session.From(c).Profile.Profile(),
			"favorites":      account.Favorites,
			"recentSearches": account.RecentSearches,
			"activity":       account.RecentActivity,
		})
	}
}

func APIProfileUpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.Profile
		if err := c.BodyParser(&p); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		updated, err := session.From(c).Profile.Update(p)
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(updated)
	}
}

// APISessionDeleteHandler ends the visitor session, cancelling its timers
func APISessionDeleteHandler(sessions *session.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions.Remove(session.From(c).ID)
		c.ClearCookie(session.CookieName)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
