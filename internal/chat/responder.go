// Package chat implements the scripted legal assistant: a keyword responder
// and the chat sessions that deliver its replies after a typing delay.
package chat

import (
	"strings"

	"github.com/jjenkins/globeguru/internal/model"
)

// Reply is the canned bot answer produced by a rule
type Reply struct {
	Rule        string
	Text        string
	LawCard     *model.LawCard
	Suggestions []string
}

// Rule matches a user message by keywords. Every All keyword must occur and,
// when Any is not empty, at least one Any keyword must occur. Matching is a
// case-insensitive substring test.
type Rule struct {
	Name  string
	All   []string
	Any   []string
	Reply Reply
}

// Matches reports whether the lower-cased text satisfies the rule
func (r Rule) Matches(lower string) bool {
	if len(r.All) == 0 && len(r.Any) == 0 {
		return false
	}
	for _, kw := range r.All {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, kw := range r.Any {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Responder picks the reply of the first matching rule
type Responder struct {
	rules    []Rule
	fallback Reply
}

// NewResponder creates a responder evaluating rules in order
func NewResponder(rules []Rule, fallback Reply) *Responder {
	return &Responder{rules: rules, fallback: fallback}
}

// Respond returns the reply for a user message
func (r *Responder) Respond(text string) Reply {
	lower := strings.ToLower(text)
	for _, rule := range r.rules {
		if rule.Matches(lower) {
			reply := rule.Reply
			reply.Rule = rule.Name
			return reply
		}
	}
	return r.fallback
}

// DefaultResponder answers like the full-page assistant
func DefaultResponder() *Responder {
	return NewResponder(defaultRules, Reply{
		Rule: "default",
		Text: "I understand you're asking about travel laws. Could you be more specific about which country or legal topic you're interested in? I can provide detailed information about customs, cultural laws, substance regulations, and more.",
		Suggestions: []string{
			"Ask about a specific country",
			"Browse by legal category",
			"Get emergency contact info",
			"Learn about common violations",
		},
	})
}

// WidgetResponder answers every message with the floating widget's demo reply
func WidgetResponder() *Responder {
	return NewResponder(nil, Reply{
		Rule: "demo",
		Text: "Thank you for your question! This is a demo response. In the full version, I would provide detailed legal information based on your query.",
	})
}

var defaultRules = []Rule{
	{
		Name: "uae-alcohol",
		All:  []string{"alcohol", "uae"},
		Reply: Reply{
			Text: "Here's what you need to know about alcohol laws in the UAE:",
			LawCard: &model.LawCard{
				Title:     "Alcohol Consumption Laws",
				Country:   "United Arab Emirates",
				Flag:      "🇦🇪",
				RiskLevel: model.RiskHigh,
				Summary:   "Alcohol consumption is strictly regulated. Only licensed venues can serve alcohol, and public intoxication is illegal. Non-Muslims over 21 can purchase alcohol with a license.",
			},
			Suggestions: []string{
				"Where can I buy alcohol in UAE?",
				"What are the penalties for public drinking?",
				"Can tourists drink alcohol?",
				"Tell me about other UAE laws",
			},
		},
	},
	{
		Name: "photography",
		Any:  []string{"photo", "camera"},
		Reply: Reply{
			Text: "Photography laws vary by country. Here are some general guidelines:",
			Suggestions: []string{
				"Photography laws in Qatar",
				"Can I photograph government buildings?",
				"Social media posting restrictions",
				"Privacy laws for photography",
			},
		},
	},
	{
		Name: "customs",
		Any:  []string{"customs", "declare"},
		Reply: Reply{
			Text: "Customs declarations are important for international travel. Here's what you typically need to declare:",
			Suggestions: []string{
				"US customs declaration limits",
				"What items are prohibited?",
				"Duty-free allowances",
				"Medication declaration rules",
			},
		},
	},
}

// QuickAction is a one-click prompt; Key names the i18n string sent as the message
type QuickAction struct {
	Icon string
	Key  string
}

// QuickActions are the prompts shown under the quick questions
var QuickActions = []QuickAction{
	{Icon: "🌍", Key: "chat.askCountry"},
	{Icon: "📚", Key: "chat.searchTopic"},
	{Icon: "🛡️", Key: "chat.safetyTips"},
	{Icon: "🚨", Key: "chat.emergency"},
}
