package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/task"
)

func TestResponderRules(t *testing.T) {
	r := DefaultResponder()

	tests := []struct {
		name     string
		input    string
		rule     string
		withCard bool
	}{
		{"uae alcohol", "What are the alcohol laws in UAE?", "uae-alcohol", true},
		{"case insensitive", "ALCOHOL in the uae", "uae-alcohol", true},
		{"alcohol without uae", "alcohol in France", "default", false},
		{"photo", "Can I take photos in Qatar?", "photography", false},
		{"camera", "bringing a camera", "photography", false},
		{"customs", "What should I declare at US customs?", "customs", false},
		{"fallback", "random unrelated text", "default", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := r.Respond(tt.input)
			assert.Equal(t, tt.rule, reply.Rule)
			assert.Equal(t, tt.withCard, reply.LawCard != nil)
			assert.NotEmpty(t, reply.Suggestions)
		})
	}
}

func TestFirstMatchingRuleWins(t *testing.T) {
	// matches both the alcohol and the photography rule
	reply := DefaultResponder().Respond("photo of alcohol in uae")
	assert.Equal(t, "uae-alcohol", reply.Rule)
}

func TestUAEAlcoholCard(t *testing.T) {
	reply := DefaultResponder().Respond("What are the alcohol laws in UAE?")
	require.NotNil(t, reply.LawCard)
	assert.Equal(t, model.RiskHigh, reply.LawCard.RiskLevel)
	assert.Equal(t, "Alcohol Consumption Laws", reply.LawCard.Title)
	assert.Len(t, reply.Suggestions, 4)
}

func TestRuleWithoutKeywordsNeverMatches(t *testing.T) {
	assert.False(t, Rule{Name: "empty"}.Matches("anything"))
}

func newTestSession(t *testing.T) (*Session, *task.Manual) {
	t.Helper()
	clock := task.NewManual()
	s := NewSession(clock, DefaultResponder(), AssistantConfig(), zap.NewNop())
	t.Cleanup(s.Close)
	return s, clock
}

func TestSessionStartsWithGreeting(t *testing.T) {
	s, _ := newTestSession(t)
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.SenderBot, msgs[0].Sender)
	assert.Len(t, msgs[0].Suggestions, 4)
	assert.False(t, s.Typing())
}

func TestSendRejectsBlankInput(t *testing.T) {
	s, _ := newTestSession(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Typing())
}

func TestReplyArrivesAfterDelay(t *testing.T) {
	s, clock := newTestSession(t)

	msg, err := s.Send("What are the alcohol laws in UAE?")
	require.NoError(t, err)
	assert.Equal(t, model.SenderUser, msg.Sender)
	assert.Len(t, s.Messages(), 2)
	assert.True(t, s.Typing())

	clock.Advance(1499 * time.Millisecond)
	assert.Len(t, s.Messages(), 2)
	assert.True(t, s.Typing())

	clock.Advance(time.Millisecond)
	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.False(t, s.Typing())
	require.NotNil(t, msgs[2].LawCard)
	assert.Equal(t, model.RiskHigh, msgs[2].LawCard.RiskLevel)
}

func TestOverlappingSendsAreSerialized(t *testing.T) {
	s, clock := newTestSession(t)

	_, err := s.Send("random unrelated text")
	require.NoError(t, err)
	clock.Advance(500 * time.Millisecond)
	_, err = s.Send("Can I take photos?")
	require.NoError(t, err)

	// first reply at 1.5s, second at 3.0s
	clock.Advance(1000 * time.Millisecond)
	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, model.SenderBot, msgs[3].Sender)
	assert.Nil(t, msgs[3].LawCard)
	assert.True(t, s.Typing(), "second reply still pending")

	clock.Advance(1499 * time.Millisecond)
	assert.Len(t, s.Messages(), 4)

	clock.Advance(time.Millisecond)
	msgs = s.Messages()
	require.Len(t, msgs, 5)
	assert.Contains(t, msgs[4].Text, "Photography")
	assert.False(t, s.Typing())

	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].Seq, msgs[i-1].Seq)
	}
}

func TestCloseCancelsPendingReplies(t *testing.T) {
	s, clock := newTestSession(t)
	_, err := s.Send("hello")
	require.NoError(t, err)

	s.Close()
	clock.Advance(time.Minute)
	assert.Len(t, s.Messages(), 2)
	assert.False(t, s.Typing())
	assert.Equal(t, 0, clock.Pending())

	_, err = s.Send("again")
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, s.Reset(), ErrClosed)
	assert.Len(t, s.Messages(), 2)
}

func TestResetDropsPendingReplies(t *testing.T) {
	s, clock := newTestSession(t)
	_, err := s.Send("hello")
	require.NoError(t, err)
	before := s.Messages()

	require.NoError(t, s.Reset())
	clock.Advance(time.Minute)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Greater(t, msgs[0].Seq, before[len(before)-1].Seq)

	_, err = s.Send("Can I use my camera?")
	require.NoError(t, err)
	clock.Advance(1500 * time.Millisecond)
	assert.Len(t, s.Messages(), 3)
}

func TestSince(t *testing.T) {
	s, clock := newTestSession(t)
	first := s.Messages()[0]
	_, err := s.Send("customs")
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	newer := s.Since(first.Seq)
	require.Len(t, newer, 2)
	assert.Equal(t, model.SenderUser, newer[0].Sender)
	assert.Equal(t, model.SenderBot, newer[1].Sender)
}

func TestWidgetSession(t *testing.T) {
	clock := task.NewManual()
	s := NewSession(clock, WidgetResponder(), WidgetConfig(), zap.NewNop())
	defer s.Close()

	assert.Empty(t, s.Messages()[0].Suggestions)
	_, err := s.Send("What are the alcohol laws in UAE?")
	require.NoError(t, err)

	clock.Advance(time.Second)
	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Nil(t, msgs[2].LawCard)
	assert.Contains(t, msgs[2].Text, "demo response")
}

func TestRealTimeReply(t *testing.T) {
	cfg := AssistantConfig()
	cfg.ReplyDelay = 5 * time.Millisecond
	s := NewSession(task.Real{}, DefaultResponder(), cfg, zap.NewNop())
	defer s.Close()

	_, err := s.Send("declare")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return len(s.Messages()) == 3 && !s.Typing() }, time.Second, time.Millisecond)
}
