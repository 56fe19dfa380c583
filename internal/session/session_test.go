package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/task"
)

func testOptions(clock task.Scheduler) Options {
	return Options{
		Scheduler: clock,
		Catalog:   catalog.MustDefault(),
		Chat:      chat.AssistantConfig(),
		Widget:    chat.WidgetConfig(),
		Offline:   offline.DefaultConfig(),
		Logger:    zap.NewNop(),
	}
}

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(10, time.Minute, testOptions(task.NewManual()))
	defer r.Close()

	s := r.Create()
	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRemoveClosesSessionTimers(t *testing.T) {
	clock := task.NewManual()
	r := NewRegistry(10, time.Minute, testOptions(clock))

	s := r.Create()
	_, err := s.Chat.Send("hello")
	require.NoError(t, err)
	require.NoError(t, s.Offline.Start("JP"))
	require.Equal(t, 2, clock.Pending())

	assert.True(t, r.Remove(s.ID))
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Hour)
	assert.Len(t, s.Chat.Messages(), 2)
	jp, _ := s.Offline.Task("JP")
	assert.Zero(t, jp.Progress)
}

func TestClosedSessionIsNotRevived(t *testing.T) {
	r := NewRegistry(10, time.Minute, testOptions(task.NewManual()))
	defer r.Close()

	before := testutil.ToFloat64(metrics.ActiveSessions)
	s := r.Create()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ActiveSessions))

	s.Close()
	_, ok := r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveSessions))

	_, ok = r.Get(s.ID)
	assert.False(t, ok)
	assert.False(t, r.Remove(s.ID))
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveSessions))
}

func TestEvictionBySizeClosesOldest(t *testing.T) {
	clock := task.NewManual()
	r := NewRegistry(1, time.Minute, testOptions(clock))
	defer r.Close()

	first := r.Create()
	_, err := first.Chat.Send("hello")
	require.NoError(t, err)

	r.Create()
	_, ok := r.Get(first.ID)
	assert.False(t, ok)

	_, err = first.Chat.Send("again")
	assert.ErrorIs(t, err, chat.ErrClosed)
}

func TestMiddlewareIssuesAndReusesCookie(t *testing.T) {
	r := NewRegistry(10, time.Minute, testOptions(task.NewManual()))
	defer r.Close()

	app := fiber.New()
	app.Use(r.Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(From(c).ID)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	id := string(body)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, id, string(body))
	assert.Equal(t, 1, r.Len())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.NotEqual(t, "not-a-uuid", string(body))
	assert.Equal(t, 2, r.Len())
}
