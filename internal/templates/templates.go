// Package templates renders the GlobeGuru pages as templ components.
//
// The *_templ.go files are generated from the .templ sources.
package templates

//go:generate templ generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jjenkins/globeguru/internal/filter"
	"github.com/jjenkins/globeguru/internal/model"
)

// Meta is the per-request context shared by every page
type Meta struct {
	Title  string
	Lang   string
	Active string
	T      func(key string) string
}

// t translates key, returning the key itself when no translator is set
func (m Meta) t(key string) string {
	if m.T == nil {
		return key
	}
	return m.T(key)
}

func (m Meta) lang() string {
	if m.Lang == "" {
		return "en"
	}
	return m.Lang
}

func (m Meta) pageTitle() string {
	if m.Title == "" {
		return m.t("app.name")
	}
	return m.Title + " | " + m.t("app.name")
}

var navItems = []struct {
	path string
	key  string
}{
	{"/", "nav.home"},
	{"/countries", "nav.countries"},
	{"/search", "nav.search"},
	{"/chat", "nav.chat"},
	{"/premium", "nav.premium"},
	{"/about", "nav.about"},
	{"/profile", "nav.profile"},
}

var features = []struct {
	icon string
	key  string
}{
	{"📶", "offline"},
	{"🌐", "multilingual"},
	{"🔄", "updated"},
	{"🛡️", "expert"},
}

// ChatSurface names the endpoints of one chat box
type ChatSurface struct {
	Send   string
	Poll   string
	Target string
}

var (
	AssistantChat = ChatSurface{Send: "/chat", Poll: "/chat/messages", Target: "#transcript"}
	WidgetChat    = ChatSurface{Send: "/widget", Poll: "/widget/messages", Target: "#widget-transcript"}
)

// HomeData is the content of the landing page
type HomeData struct {
	Featured    []model.Country
	LawOfTheDay model.FeaturedLaw
	Trending    []string
}

// CountriesData is the content of the country list
type CountriesData struct {
	Result   filter.Result[model.Country]
	Criteria model.FilterCriteria
	Regions  []model.Region
	Risks    []model.RiskLevel
}

// LawsData is the content of a country's law list
type LawsData struct {
	Country    model.Country
	Result     filter.Result[model.Law]
	Criteria   model.FilterCriteria
	Categories []string
	Risks      []model.RiskLevel
}

// SearchData is the content of the global law search
type SearchData struct {
	Result     filter.Result[model.LawWithCountry]
	Criteria   model.FilterCriteria
	Countries  []model.Country
	Categories []string
	Risks      []model.RiskLevel
}

// OfflineData is the state of the offline manager panel
type OfflineData struct {
	Tasks   []model.DownloadTask
	Online  bool
	Notices []model.Notice
	Error   string
}

func (d OfflineData) downloading() bool {
	for _, t := range d.Tasks {
		if t.IsDownloading {
			return true
		}
	}
	return false
}

func (d OfflineData) lastNotice() *model.Notice {
	if len(d.Notices) == 0 {
		return nil
	}
	return &d.Notices[len(d.Notices)-1]
}

// ChatData is the content of the assistant page
type ChatData struct {
	Messages       []model.ChatMessage
	Typing         bool
	QuickQuestions []model.QuickQuestionGroup
	QuickActions   []QuickAction
	Error          string
}

// QuickAction is a one-click prompt with its translated text
type QuickAction struct {
	Icon string
	Text string
}

// ProfileData is the content of the profile page
type ProfileData struct {
	Profile        model.Profile
	Favorites      []model.FavoriteCountry
	RecentSearches []string
	Activity       []model.Activity
	Countries      []model.Country
	Errors         map[string]string
	Saved          bool
}

// SignupData is the state of the signup form
type SignupData struct {
	Form    model.SignupForm
	Errors  map[string]string
	Created bool
}

// AboutData holds the figures shown on the about page
type AboutData struct {
	Countries     int
	PublishedLaws int
}

func lower(s string) string {
	return strings.ToLower(s)
}

func countryPath(code string) string {
	return "/countries/" + lower(code)
}

func lawsPath(code string) string {
	return countryPath(code) + "/laws"
}

func count(n int, label string) string {
	return fmt.Sprintf("%d %s", n, label)
}

func percent(n int) string {
	return fmt.Sprintf("%d%%", n)
}

func downloadDate(t model.DownloadTask) string {
	if t.DownloadDate == nil {
		return ""
	}
	return " " + t.DownloadDate.Format("2006-01-02")
}

func placeName(loc *model.Location) string {
	if loc.City == "" {
		return loc.Country
	}
	return loc.Country + " (" + loc.City + ")"
}

func withIcon(icon, text string) string {
	if icon == "" {
		return text
	}
	return icon + " " + text
}

// promptVals is the hx-vals payload posting text as a chat message
func promptVals(text string) string {
	b, _ := json.Marshal(map[string]string{"text": text})
	return string(b)
}
