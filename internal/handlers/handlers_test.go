package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/geo"
	"github.com/jjenkins/globeguru/internal/i18n"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/session"
	"github.com/jjenkins/globeguru/internal/task"
)

type testServer struct {
	app      *fiber.App
	clock    *task.Manual
	sessions *session.Registry
	cookie   *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cat := catalog.MustDefault()
	bundle, err := i18n.Load(logger)
	require.NoError(t, err)

	clock := task.NewManual()
	sessions := session.NewRegistry(10, time.Hour, session.Options{
		Scheduler: clock,
		Catalog:   cat,
		Chat:      chat.AssistantConfig(),
		Widget:    chat.WidgetConfig(),
		Offline:   offline.DefaultConfig(),
		Logger:    logger,
	})
	t.Cleanup(sessions.Close)

	app := fiber.New()
	Register(app, Deps{
		Catalog:  cat,
		Bundle:   bundle,
		Sessions: sessions,
		Locator:  geo.NewLocator(time.Second, logger, geo.NewDeviceProvider(cat.Countries())),
		Logger:   logger,
	})

	return &testServer{app: app, clock: clock, sessions: sessions}
}

// do sends a request, keeping the session cookie between calls
func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	} else if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			s.cookie = ck
		}
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "globeguru_http_requests_total")
}

func TestAPICountriesFilter(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/countries?risk=High&sort=lawCount", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	list := decode[listResponse[model.Country]](t, body)
	require.Equal(t, 3, list.Count)
	assert.Equal(t, "China", list.Items[0].Name)
	for _, c := range list.Items {
		assert.Equal(t, model.RiskHigh, c.RiskLevel)
	}
}

func TestAPIUnknownCountryIs404(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/countries/zz", "/api/countries/zz/laws"} {
		resp, body := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, body, "unknown country")
	}
}

func TestAPISearchCannabis(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/api/search?q=cannabis", "")
	list := decode[listResponse[model.LawWithCountry]](t, body)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "State-Specific Cannabis Laws", list.Items[0].Title)
	assert.Equal(t, "United States", list.Items[0].CountryName)
}

func TestAPIChatFlow(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/chat", `{"text":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/chat", `{"text":"What are the alcohol laws in UAE?"}`)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Contains(t, body, `"typing":true`)

	s.clock.Advance(1500 * time.Millisecond)

	_, body = s.do(t, http.MethodGet, "/api/chat", "")
	state := decode[chatState](t, body)
	assert.False(t, state.Typing)
	require.Len(t, state.Messages, 3)
	reply := state.Messages[2]
	assert.Equal(t, model.SenderBot, reply.Sender)
	require.NotNil(t, reply.LawCard)
	assert.Equal(t, model.RiskHigh, reply.LawCard.RiskLevel)

	_, body = s.do(t, http.MethodGet, "/api/chat?since="+jsonInt(reply.Seq-1), "")
	assert.Len(t, decode[chatState](t, body).Messages, 1)

	_, body = s.do(t, http.MethodDelete, "/api/chat", "")
	assert.Len(t, decode[chatState](t, body).Messages, 1, "reset keeps only the greeting")
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestAPIOfflineFlow(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/offline/network", `{"online":false}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/offline/JP/download", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "offline")

	s.do(t, http.MethodPost, "/api/offline/network", `{"online":true}`)
	resp, _ = s.do(t, http.MethodPost, "/api/offline/JP/download", "")
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/offline/FR/download", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "already downloaded")

	resp, _ = s.do(t, http.MethodPost, "/api/offline/ZZ/download", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.clock.Advance(2 * time.Second)

	_, body = s.do(t, http.MethodGet, "/api/offline", "")
	state := decode[offlineState](t, body)
	var jp model.DownloadTask
	for _, dt := range state.Tasks {
		if dt.CountryCode == "JP" {
			jp = dt
		}
	}
	assert.True(t, jp.IsDownloaded)
	assert.Equal(t, 100, jp.Progress)
	require.NotEmpty(t, state.Notices)
	assert.Equal(t, "Download Complete", state.Notices[len(state.Notices)-1].Title)

	resp, body = s.do(t, http.MethodPost, "/api/offline/JP/update", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Checking for latest legal updates.")

	resp, body = s.do(t, http.MethodDelete, "/api/offline/JP", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, decode[model.DownloadTask](t, body).IsDownloaded)

	resp, _ = s.do(t, http.MethodPost, "/api/offline/JP/update", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/offline/JP", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAPISignupValidation(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/signup",
		`{"name":"Ann","email":"ann@example.com","password":"longenough","confirmPassword":"different","agreeToTerms":true}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errBody := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, body)
	assert.Equal(t, "passwords do not match", errBody.Fields["confirmPassword"])

	resp, _ = s.do(t, http.MethodPost, "/api/signup",
		`{"name":"Ann","email":"ann@example.com","password":"longenough","confirmPassword":"longenough","agreeToTerms":true}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestAPIProfileUpdate(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/profile", `{"name":"","email":"nope"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/profile", `{"name":"Jane Roamer","email":"jane@example.com","language":"French"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := s.do(t, http.MethodGet, "/api/profile", "")
	assert.Contains(t, body, "Jane Roamer")
}

func TestAPILocation(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/api/location?lat=48.85&lon=2.35", "")
	assert.Contains(t, body, `"detected":true`)
	assert.Contains(t, body, `"countryCode":"FR"`)

	_, body = s.do(t, http.MethodGet, "/api/location", "")
	assert.JSONEq(t, `{"detected":false}`, body)
}

func TestAPISessionDelete(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/api/chat", "")
	require.Equal(t, 1, s.sessions.Len())

	resp, _ := s.do(t, http.MethodDelete, "/api/session", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestPagesRender(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/", "/countries", "/countries/jp", "/countries/jp/laws", "/search?q=alcohol",
		"/chat", "/profile", "/premium", "/about", "/signup", "/offline", "/widget",
	} {
		resp, body := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, body, path)
	}
}

func TestUnknownCountryPageFallsBackToDefault(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/countries/zz/laws", "")
	assert.Contains(t, body, "United States")
	assert.Contains(t, body, "State-Specific Cannabis Laws")
}

func TestHTMXReturnsPartial(t *testing.T) {
	s := newTestServer(t)

	_, full := s.do(t, http.MethodGet, "/countries?q=japan", "")
	assert.Contains(t, full, "<!doctype html>")

	_, partial := s.do(t, http.MethodGet, "/countries?q=japan", "", "HX-Request", "true")
	assert.NotContains(t, partial, "<!doctype html>")
	assert.Contains(t, partial, "Japan")
	assert.NotContains(t, partial, "France")
}

func TestPagesFollowLanguage(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodGet, "/about", "", "Accept-Language", "fr-FR,fr;q=0.9")
	assert.Contains(t, body, "À propos de GlobeGuru")
	assert.Contains(t, body, `lang="fr"`)
}

func TestChatFormSendShowsTyping(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodPost, "/chat", "text=camera+rules", "HX-Request", "true")
	assert.Contains(t, body, "camera rules")
	assert.Contains(t, body, `hx-get="/chat/messages"`)

	s.clock.Advance(1500 * time.Millisecond)
	_, body = s.do(t, http.MethodGet, "/chat/messages", "", "HX-Request", "true")
	assert.NotContains(t, body, `hx-get="/chat/messages"`)
}

func TestSignupFormMismatch(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, http.MethodPost, "/signup",
		"name=Ann&email=ann%40example.com&password=longenough&confirmPassword=other&agreeToTerms=true",
		"HX-Request", "true")
	assert.Contains(t, body, "passwords do not match")
}
