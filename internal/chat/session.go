package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/task"
)

var (
	// ErrEmptyMessage is returned for blank user input
	ErrEmptyMessage = errors.New("message is empty")
	// ErrClosed is returned after the session has been closed
	ErrClosed = errors.New("chat session closed")
)

// Config describes the greeting and pacing of a session
type Config struct {
	ReplyDelay          time.Duration
	Greeting            string
	GreetingSuggestions []string
}

// AssistantConfig is the full-page assistant: 1.5s typing delay
func AssistantConfig() Config {
	return Config{
		ReplyDelay: 1500 * time.Millisecond,
		Greeting:   "Hello! I'm your AI legal assistant. I can help you understand laws and regulations for any country. What would you like to know?",
		GreetingSuggestions: []string{
			"Ask about a specific country",
			"Search by legal topic",
			"Get travel safety tips",
			"Emergency procedures",
		},
	}
}

// WidgetConfig is the floating widget: 1s delay, no suggestions
func WidgetConfig() Config {
	return Config{
		ReplyDelay: time.Second,
		Greeting:   "Hello! I'm your legal assistant. Ask me about laws in any country!",
	}
}

// Session is an append-only conversation. Replies are queued: each one is
// delivered ReplyDelay after the previous delivery, in the order the user
// messages were sent.
type Session struct {
	responder *Responder
	cfg       Config
	group     *task.Group
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	messages []model.ChatMessage
	seq      int
	queue    []string
	handle   task.Handle
	gen      int
	closed   bool
}

// NewSession starts a conversation with the greeting message
func NewSession(sched task.Scheduler, responder *Responder, cfg Config, logger *zap.Logger) *Session {
	if cfg.ReplyDelay <= 0 {
		cfg.ReplyDelay = AssistantConfig().ReplyDelay
	}
	s := &Session{
		responder: responder,
		cfg:       cfg,
		group:     task.NewGroup(sched),
		logger:    logger,
		now:       time.Now,
	}
	s.greet()
	return s
}

// greet must be called with s.mu held or before the session is shared
func (s *Session) greet() {
	s.append(model.ChatMessage{
		Text:        s.cfg.Greeting,
		Sender:      model.SenderBot,
		Suggestions: append([]string(nil), s.cfg.GreetingSuggestions...),
	})
}

// append must be called with s.mu held
func (s *Session) append(msg model.ChatMessage) model.ChatMessage {
	s.seq++
	msg.ID = uuid.NewString()
	msg.Seq = s.seq
	msg.Timestamp = s.now()
	s.messages = append(s.messages, msg)
	return msg
}

// Send appends the user message and queues the bot reply
func (s *Session) Send(text string) (model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.ChatMessage{}, ErrClosed
	}

	msg := s.append(model.ChatMessage{Text: text, Sender: model.SenderUser})
	s.queue = append(s.queue, text)
	if s.handle == nil {
		s.schedule()
	}
	return msg, nil
}

// schedule must be called with s.mu held and a non-empty queue
func (s *Session) schedule() {
	gen := s.gen
	s.handle = s.group.After(s.cfg.ReplyDelay, func() { s.deliver(gen) })
}

func (s *Session) deliver(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen || len(s.queue) == 0 {
		return
	}

	text := s.queue[0]
	s.queue = s.queue[1:]

	reply := s.responder.Respond(text)
	msg := model.ChatMessage{
		Text:        reply.Text,
		Sender:      model.SenderBot,
		Suggestions: append([]string(nil), reply.Suggestions...),
	}
	if reply.LawCard != nil {
		card := *reply.LawCard
		msg.LawCard = &card
	}
	s.append(msg)
	metrics.ChatRepliesTotal.WithLabelValues(reply.Rule).Inc()
	s.logger.Debug("chat reply delivered", zap.String("rule", reply.Rule), zap.Int("pending", len(s.queue)))

	s.handle = nil
	if len(s.queue) > 0 {
		s.schedule()
	}
}

// Typing reports whether a reply is still pending
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []model.ChatMessage {
	return s.Since(0)
}

// Since returns the messages with a sequence number greater than seq
func (s *Session) Since(seq int) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ChatMessage
	for _, m := range s.messages {
		if m.Seq > seq {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops pending replies and restarts the conversation from the greeting
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.gen++
	s.queue = nil
	s.messages = nil
	s.greet()
	return nil
}

// Close cancels pending replies; later sends fail with ErrClosed
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.handle = nil
	s.mu.Unlock()

	s.group.Close()
}
