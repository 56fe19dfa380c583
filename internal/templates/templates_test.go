package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/filter"
	"github.com/jjenkins/globeguru/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

var meta = Meta{Title: "Test", Lang: "en", Active: "/countries"}

func TestLayoutEscapesTitleAndMarksActive(t *testing.T) {
	m := meta
	m.Title = "<script>"
	ctx := templ.WithChildren(context.Background(), templ.Raw("<p>body</p>"))
	var buf bytes.Buffer
	require.NoError(t, Layout(m).Render(ctx, &buf))
	out := buf.String()

	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<title><script>")
	assert.Contains(t, out, `href="/countries" class="active"`)
	assert.Contains(t, out, "<p>body</p>")
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
}

func TestLayoutReportsReachability(t *testing.T) {
	out := render(t, About(meta, AboutData{Countries: 8, PublishedLaws: 42}))

	assert.Contains(t, out, `window.addEventListener("online", report)`)
	assert.Contains(t, out, `window.addEventListener("offline", report)`)
	assert.Contains(t, out, "online: navigator.onLine")
	assert.Contains(t, out, `"/offline/network"`)
	assert.Equal(t, 1, strings.Count(out, "report();"))
}

func TestHomeRequestsLocationOnce(t *testing.T) {
	out := render(t, Home(meta, HomeData{}))

	assert.NotContains(t, out, `hx-get="/location"`)
	assert.Equal(t, 1, strings.Count(out, `htmx.ajax("GET"`))
	assert.Contains(t, out, "if (asked)")
	assert.Contains(t, out, `<div id="location"></div>`)
}

func TestHomeFeatureHighlights(t *testing.T) {
	out := render(t, Home(meta, HomeData{}))

	assert.Contains(t, out, "features.subtitle")
	for _, key := range []string{"offline", "multilingual", "updated", "expert"} {
		assert.Contains(t, out, "<h3>features."+key+"</h3>")
		assert.Contains(t, out, "<p>features."+key+"Desc</p>")
	}
	assert.Equal(t, 4, strings.Count(out, `<div class="feature">`))
}

func TestCountryGridEmptyState(t *testing.T) {
	c := catalog.MustDefault()
	none := filter.Apply(c.Countries(), model.FilterCriteria{SearchText: "atlantis"}, language.English)
	assert.Contains(t, render(t, CountryGrid(meta, none)), "countries.noResults")

	some := filter.Apply(c.Countries(), model.FilterCriteria{SearchText: "japan"}, language.English)
	out := render(t, CountryGrid(meta, some))
	assert.Contains(t, out, "Japan")
	assert.Contains(t, out, `href="/countries/jp/laws"`)
}

func TestSearchResultsStates(t *testing.T) {
	var unapplied filter.Result[model.LawWithCountry]
	assert.Contains(t, render(t, SearchResults(meta, unapplied)), "search.prompt")

	laws := catalog.MustDefault().AllLaws()
	hits := filter.Apply(laws, model.FilterCriteria{SearchText: "cannabis"}, language.English)
	out := render(t, SearchResults(meta, hits))
	assert.Contains(t, out, "State-Specific Cannabis Laws")
	assert.Contains(t, out, "United States")

	miss := filter.Apply(laws, model.FilterCriteria{SearchText: "zzzz"}, language.English)
	assert.Contains(t, render(t, SearchResults(meta, miss)), "search.noResults")
}

func TestChatTranscriptPollsOnlyWhileTyping(t *testing.T) {
	msgs := []model.ChatMessage{{
		ID:        "1",
		Text:      "Hi <b>",
		Sender:    model.SenderBot,
		Timestamp: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		LawCard:   &model.LawCard{Title: "Alcohol Consumption Laws", RiskLevel: model.RiskHigh},
	}}

	idle := render(t, ChatTranscript(meta, AssistantChat, msgs, false, ""))
	assert.NotContains(t, idle, "hx-trigger")
	assert.Contains(t, idle, "Hi &lt;b&gt;")
	assert.Contains(t, idle, "Alcohol Consumption Laws")
	assert.Contains(t, idle, "risk-high")

	typing := render(t, ChatTranscript(meta, AssistantChat, msgs, true, ""))
	assert.Contains(t, typing, `hx-get="/chat/messages"`)
	assert.Contains(t, typing, "chat.typing")
}

func TestSuggestionsSendToTheirChat(t *testing.T) {
	msgs := []model.ChatMessage{{
		ID:          "1",
		Text:        "Ask me",
		Sender:      model.SenderBot,
		Suggestions: []string{"Alcohol laws in UAE"},
	}}

	out := render(t, ChatTranscript(meta, AssistantChat, msgs, false, ""))
	assert.Contains(t, out, `<button class="prompt" hx-post="/chat" hx-target="#transcript" hx-swap="innerHTML"`)
	assert.Contains(t, out, ">Alcohol laws in UAE</button>")
	assert.NotContains(t, out, `class="chip"`)

	widget := render(t, Widget(meta, msgs, false))
	assert.Contains(t, widget, `hx-post="/widget" hx-target="#widget-transcript" hx-swap="innerHTML"`)
	assert.NotContains(t, widget, `hx-post="/chat"`)
}

func TestOfflinePanel(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d := OfflineData{
		Online: false,
		Tasks: []model.DownloadTask{
			{CountryCode: "FR", Name: "France", IsDownloaded: true, Progress: 100, DownloadDate: &date},
			{CountryCode: "JP", Name: "Japan", IsDownloading: true, Progress: 40},
			{CountryCode: "IT", Name: "Italy"},
		},
	}
	out := render(t, OfflinePanel(meta, d))
	assert.Contains(t, out, "2024-01-15")
	assert.Contains(t, out, `<progress max="100" value="40">`)
	assert.Contains(t, out, `hx-trigger="every 250ms"`)
	assert.Contains(t, out, "offline.unavailable")
	assert.Contains(t, out, "offline.offline")
	assert.NotContains(t, out, `hx-post="/offline/network"`)
	assert.Contains(t, out, `<button hx-post="/offline/it/download" hx-target="#offline" disabled>`)
}

func TestLocationSuggestionHiddenWhenUnknown(t *testing.T) {
	assert.Empty(t, render(t, LocationSuggestion(meta, nil)))

	out := render(t, LocationSuggestion(meta, &model.Location{Country: "France", CountryCode: "FR", Flag: "🇫🇷"}))
	assert.Contains(t, out, `href="/countries/fr/laws"`)
}

func TestSignupFormShowsFieldErrors(t *testing.T) {
	out := render(t, SignupForm(meta, SignupData{
		Form:   model.SignupForm{Name: "Ann", Password: "secret"},
		Errors: map[string]string{"confirmPassword": "passwords do not match"},
	}))
	assert.Contains(t, out, "passwords do not match")
	assert.Contains(t, out, `value="Ann"`)
	assert.NotContains(t, out, "secret")

	assert.Contains(t, render(t, SignupForm(meta, SignupData{Created: true})), "auth.accountCreated")
}
