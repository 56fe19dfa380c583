// Package i18n translates UI strings. Catalogs are flat JSON objects embedded
// in the binary, one per language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// CookieName holds the language explicitly picked by the visitor
const CookieName = "lang"

const localsKey = "i18n_lang"

//go:embed locales/*.json
var localeFS embed.FS

// Supported lists the languages with a catalog; the first one is the fallback
var Supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(Supported)

// Bundle holds the loaded catalogs
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
}

// NewBundle creates an empty bundle
func NewBundle() *Bundle {
	return &Bundle{catalogs: make(map[string]map[string]string)}
}

// Load parses the embedded catalogs of every supported language
func Load(logger *zap.Logger) (*Bundle, error) {
	b := NewBundle()
	for _, tag := range Supported {
		lang := tag.String()
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := localeFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := b.LoadMessages(lang, data); err != nil {
			return nil, err
		}
		logger.Debug("locale loaded", zap.String("lang", lang))
	}
	return b, nil
}

// LoadMessages registers the catalog of one language
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("failed to parse %s catalog: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages
	return nil
}

// T translates key, falling back to English and then to the key itself
func (b *Bundle) T(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs["en"][key]; ok {
		return msg
	}
	return key
}

// Match picks the best supported language for an Accept-Language header
func Match(acceptLanguage string) string {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	return base.String()
}

// Tag returns the language tag of a supported language code
func Tag(lang string) language.Tag {
	for _, t := range Supported {
		if t.String() == lang {
			return t
		}
	}
	return language.English
}

func supported(lang string) bool {
	for _, t := range Supported {
		if t.String() == lang {
			return true
		}
	}
	return false
}

// Middleware stores the request language: lang cookie, then Accept-Language, then English
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := "en"
		if cookie := c.Cookies(CookieName); supported(cookie) {
			lang = cookie
		} else if accept := c.Get(fiber.HeaderAcceptLanguage); accept != "" {
			lang = Match(accept)
		}
		c.Locals(localsKey, lang)
		return c.Next()
	}
}

// Lang returns the language chosen by Middleware
func Lang(c *fiber.Ctx) string {
	if lang, ok := c.Locals(localsKey).(string); ok && lang != "" {
		return lang
	}
	return "en"
}
