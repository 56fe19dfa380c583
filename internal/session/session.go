// Package session keeps the per-visitor screen state in memory.
//
// A visitor is identified by a cookie. Its session owns the chat transcripts,
// the offline download manager and the demo profile; evicting the session
// stops every timer those components scheduled.
package session

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/account"
	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/chat"
	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/offline"
	"github.com/jjenkins/globeguru/internal/task"
)

// CookieName identifies the visitor session
const CookieName = "gg_session"

const localsKey = "session"

// Session is the state of one visitor
type Session struct {
	ID        string
	CreatedAt time.Time
	Chat      *chat.Session
	Widget    *chat.Session
	Offline   *offline.Manager
	Profile   *account.Store

	mu     sync.Mutex
	closed bool
}

// Close stops every pending reply and download of the session
func (s *Session) Close() {
	s.close()
}

// close reports whether this call closed the session
func (s *Session) close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.mu.Unlock()

	s.Chat.Close()
	s.Widget.Close()
	s.Offline.Close()
	metrics.ActiveSessions.Dec()
	return true
}

// Closed reports whether the session has been closed
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Options configures the components of new sessions
type Options struct {
	Scheduler task.Scheduler
	Catalog   *catalog.Catalog
	Chat      chat.Config
	Widget    chat.Config
	Offline   offline.Config
	Logger    *zap.Logger
}

// New builds a session with fresh components
func New(id string, opts Options) *Session {
	metrics.ActiveSessions.Inc()
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Chat:      chat.NewSession(opts.Scheduler, chat.DefaultResponder(), opts.Chat, opts.Logger.Named("chat")),
		Widget:    chat.NewSession(opts.Scheduler, chat.WidgetResponder(), opts.Widget, opts.Logger.Named("widget")),
		Offline:   offline.NewManager(opts.Scheduler, opts.Catalog, opts.Offline, opts.Logger.Named("offline")),
		Profile:   account.NewStore(),
	}
}

// Registry holds the live sessions in an LRU bounded by size and idle time
type Registry struct {
	cache  *expirable.LRU[string, *Session]
	opts   Options
	logger *zap.Logger
}

// NewRegistry creates a registry of at most size sessions, each expiring after ttl without use
func NewRegistry(size int, ttl time.Duration, opts Options) *Registry {
	r := &Registry{opts: opts, logger: opts.Logger.Named("session")}
	r.cache = expirable.NewLRU[string, *Session](size, r.onEvict, ttl)
	return r
}

func (r *Registry) onEvict(id string, s *Session) {
	if !s.close() {
		return
	}
	r.logger.Debug("session closed", zap.String("id", id))
}

// Create starts and registers a new session
func (r *Registry) Create() *Session {
	s := New(uuid.NewString(), r.opts)
	r.cache.Add(s.ID, s)
	r.logger.Debug("session created", zap.String("id", s.ID))
	return s
}

// Get returns a live session and extends its lifetime. A session closed
// concurrently with the lookup is dropped again rather than revived.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	if s.Closed() {
		r.cache.Remove(id)
		return nil, false
	}
	r.cache.Add(id, s)
	if s.Closed() {
		r.cache.Remove(id)
		return nil, false
	}
	return s, true
}

// Remove closes and forgets a session
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close closes every session
func (r *Registry) Close() {
	r.cache.Purge()
}

// Middleware attaches the visitor session to the request, creating one when
// the cookie is missing, malformed or refers to an expired session.
func (r *Registry) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(CookieName)
		var s *Session
		if _, err := uuid.Parse(id); err == nil {
			s, _ = r.Get(id)
		}
		if s == nil {
			s = r.Create()
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    s.ID,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localsKey, s)
		return c.Next()
	}
}

// From returns the session attached by Middleware
func From(c *fiber.Ctx) *Session {
	s, _ := c.Locals(localsKey).(*Session)
	return s
}
