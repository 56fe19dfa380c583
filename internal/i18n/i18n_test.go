package i18n

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func TestTranslateFallbacks(t *testing.T) {
	b, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Accueil", b.T("fr", "nav.home"))
	assert.Equal(t, "Home", b.T("en", "nav.home"))
	// missing in French, present in English
	assert.Equal(t, "GlobeGuru", b.T("fr", "app.name"))
	// unknown language
	assert.Equal(t, "Home", b.T("de", "nav.home"))
	// unknown key
	assert.Equal(t, "no.such.key", b.T("fr", "no.such.key"))
}

func TestLoadMessagesRejectsInvalidJSON(t *testing.T) {
	assert.Error(t, NewBundle().LoadMessages("en", []byte(`{"a":`)))
}

func TestMatch(t *testing.T) {
	assert.Equal(t, "fr", Match("fr-CA,fr;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", Match("en-GB"))
	assert.Equal(t, "en", Match("de-DE"))
	assert.Equal(t, "en", Match(""))
}

func TestTag(t *testing.T) {
	assert.Equal(t, language.French, Tag("fr"))
	assert.Equal(t, language.English, Tag("xx"))
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Lang(c))
	})

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "en"},
		{"header", "", "fr-FR,fr;q=0.9", "fr"},
		{"cookie wins", "en", "fr-FR", "en"},
		{"unsupported cookie ignored", "ru", "fr", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
