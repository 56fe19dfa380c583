package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/session"
	"github.com/jjenkins/globeguru/internal/templates"
)

func ChatHandler(cat *catalog.Catalog, bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session.From(c)
		m := pageMeta(c, bundle, "chat.title", "/chat")

		actions := make([]templates.QuickAction, 0, len(chat.QuickActions))
		for _, a := range chat.QuickActions {
			actions = append(actions, templates.QuickAction{Icon: a.Icon, Text: m.T(a.Key)})
		}

		return render(c, templates.Chat(m, templates.ChatData{
			Messages:       s.Chat.Messages(),
			Typing:         s.Chat.Typing(),
			QuickQuestions: cat.QuickQuestions(),
			QuickActions:   actions,
		}))
	}
}

// sendMessage posts the form text to a chat session and answers with the
// refreshed transcript; plain form posts are redirected back to the page
func sendMessage(bundle *i18n.Bundle, logger *zap.Logger, pick func(*session.Session) *chat.Session, surface templates.ChatSurface, page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cs := pick(session.From(c))
		_, err := cs.Send(c.FormValue("text"))

		var errMsg string
		if err != nil {
			if !errors.Is(err, chat.ErrEmptyMessage) {
				logger.Warn("chat send failed", zap.Error(err))
			}
			errMsg = err.Error()
		}

		if !isHTMX(c) {
			return c.Redirect(page, fiber.StatusSeeOther)
		}
		m := pageMeta(c, bundle, "chat.title", "")
		return render(c, templates.ChatTranscript(m, surface, cs.Messages(), cs.Typing(), errMsg))
	}
}

func transcript(bundle *i18n.Bundle, pick func(*session.Session) *chat.Session, surface templates.ChatSurface) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cs := pick(session.From(c))
		m := pageMeta(c, bundle, "chat.title", "")
		return render(c, templates.ChatTranscript(m, surface, cs.Messages(), cs.Typing(), ""))
	}
}

func assistant(s *session.Session) *chat.Session { return s.Chat }

func widget(s *session.Session) *chat.Session { return s.Widget }

func ChatSendHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return sendMessage(bundle, logger, assistant, templates.AssistantChat, "/chat")
}

func ChatMessagesHandler(bundle *i18n.Bundle) fiber.Handler {
	return transcript(bundle, assistant, templates.AssistantChat)
}

func WidgetHandler(bundle *i18n.Bundle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w := session.From(c).Widget
		m := pageMeta(c, bundle, "chat.title", "")
		return render(c, templates.Widget(m, w.Messages(), w.Typing()))
	}
}

func WidgetSendHandler(bundle *i18n.Bundle, logger *zap.Logger) fiber.Handler {
	return sendMessage(bundle, logger, widget, templates.WidgetChat, "/")
}

func WidgetMessagesHandler(bundle *i18n.Bundle) fiber.Handler {
	return transcript(bundle, widget, templates.WidgetChat)
}
