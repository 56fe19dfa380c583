// Package catalog holds the process-wide, read-only reference data: countries,
// their laws, and the static content of the home, chat and premium screens.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jjenkins/globeguru/internal/model"
)

// DefaultCountry is shown when a laws page is requested for an unknown country
const DefaultCountry = "US"

// ErrUnknownCountry is returned when a country code is not in the catalog
var ErrUnknownCountry = errors.New("unknown country")

//go:embed data/catalog.yaml
var embedded []byte

// Catalog is an immutable snapshot of the reference data.
// All accessors return copies so callers cannot mutate shared state.
type Catalog struct {
	countries      []model.Country
	byCode         map[string]int
	laws           map[string][]model.Law
	lawOfTheDay    model.FeaturedLaw
	lotdCode       string
	lotdID         int
	regions        []model.Region
	categories     []string
	quickQuestions []model.QuickQuestionGroup
	trending       []string
	plans          model.PlanFeatures
}

// document mirrors the YAML layout of the embedded data file
type document struct {
	Countries []struct {
		Code        string  `yaml:"code"`
		Name        string  `yaml:"name"`
		Flag        string  `yaml:"flag"`
		Region      string  `yaml:"region"`
		RiskLevel   string  `yaml:"risk_level"`
		LawCount    int     `yaml:"law_count"`
		Latitude    float64 `yaml:"latitude"`
		Longitude   float64 `yaml:"longitude"`
		OfflineSize string  `yaml:"offline_size"`
		Complexity  string  `yaml:"complexity"`
		Emergency   struct {
			Police         string `yaml:"police"`
			Embassy        string `yaml:"embassy"`
			TouristHotline string `yaml:"tourist_hotline"`
		} `yaml:"emergency"`
		Categories []struct {
			Name        string `yaml:"name"`
			LawCount    int    `yaml:"law_count"`
			RiskLevel   string `yaml:"risk_level"`
			Description string `yaml:"description"`
		} `yaml:"categories"`
		Laws []struct {
			ID          int      `yaml:"id"`
			Title       string   `yaml:"title"`
			Category    string   `yaml:"category"`
			RiskLevel   string   `yaml:"risk_level"`
			Summary     string   `yaml:"summary"`
			Details     string   `yaml:"details"`
			Penalties   string   `yaml:"penalties"`
			Tips        string   `yaml:"tips"`
			Tags        []string `yaml:"tags"`
			LastUpdated string   `yaml:"last_updated"`
		} `yaml:"laws"`
	} `yaml:"countries"`
	LawOfTheDay struct {
		Country string `yaml:"country"`
		LawID   int    `yaml:"law_id"`
	} `yaml:"law_of_the_day"`
	Regions []struct {
		Value string `yaml:"value"`
		Label string `yaml:"label"`
	} `yaml:"regions"`
	Categories     []string `yaml:"categories"`
	QuickQuestions []struct {
		Category  string   `yaml:"category"`
		Questions []string `yaml:"questions"`
	} `yaml:"quick_questions"`
	TrendingTopics []string `yaml:"trending_topics"`
	Plans          struct {
		Free    []string `yaml:"free"`
		Premium []string `yaml:"premium"`
	} `yaml:"plans"`
}

// Default parses the reference data compiled into the binary
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// MustDefault is Default for package initialisation and tests
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data is invalid: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	countries := make([]model.Country, 0, len(doc.Countries))
	laws := make(map[string][]model.Law, len(doc.Countries))

	for _, dc := range doc.Countries {
		risk, err := model.ParseRiskLevel(dc.RiskLevel)
		if err != nil {
			return nil, fmt.Errorf("country %s: %w", dc.Code, err)
		}

		country := model.Country{
			Code:        strings.ToUpper(dc.Code),
			Name:        dc.Name,
			Flag:        dc.Flag,
			Region:      dc.Region,
			RiskLevel:   risk,
			LawCount:    dc.LawCount,
			Latitude:    dc.Latitude,
			Longitude:   dc.Longitude,
			OfflineSize: dc.OfflineSize,
			Complexity:  dc.Complexity,
			EmergencyInfo: model.EmergencyInfo{
				Police:         dc.Emergency.Police,
				Embassy:        dc.Emergency.Embassy,
				TouristHotline: dc.Emergency.TouristHotline,
			},
		}

		for _, cat := range dc.Categories {
			catRisk, err := model.ParseRiskLevel(cat.RiskLevel)
			if err != nil {
				return nil, fmt.Errorf("country %s category %q: %w", dc.Code, cat.Name, err)
			}
			country.Categories = append(country.Categories, model.CategorySummary{
				Name:        cat.Name,
				LawCount:    cat.LawCount,
				RiskLevel:   catRisk,
				Description: cat.Description,
			})
		}
		countries = append(countries, country)

		for _, dl := range dc.Laws {
			lawRisk, err := model.ParseRiskLevel(dl.RiskLevel)
			if err != nil {
				return nil, fmt.Errorf("country %s law %d: %w", dc.Code, dl.ID, err)
			}
			updated, err := time.Parse("2006-01-02", dl.LastUpdated)
			if err != nil {
				return nil, fmt.Errorf("country %s law %d: invalid last_updated: %w", dc.Code, dl.ID, err)
			}
			laws[country.Code] = append(laws[country.Code], model.Law{
				ID:          dl.ID,
				CountryCode: country.Code,
				Title:       dl.Title,
				Category:    dl.Category,
				RiskLevel:   lawRisk,
				Summary:     dl.Summary,
				Details:     dl.Details,
				Penalties:   dl.Penalties,
				Tips:        dl.Tips,
				Tags:        dl.Tags,
				LastUpdated: updated,
			})
		}
	}

	c, err := New(countries, laws)
	if err != nil {
		return nil, err
	}

	for _, r := range doc.Regions {
		c.regions = append(c.regions, model.Region{Value: r.Value, Label: r.Label})
	}
	c.categories = doc.Categories
	for _, q := range doc.QuickQuestions {
		c.quickQuestions = append(c.quickQuestions, model.QuickQuestionGroup{
			Category:  q.Category,
			Questions: q.Questions,
		})
	}
	c.trending = doc.TrendingTopics
	c.plans = model.PlanFeatures{Free: doc.Plans.Free, Premium: doc.Plans.Premium}

	if doc.LawOfTheDay.Country != "" {
		if err := c.setLawOfTheDay(doc.LawOfTheDay.Country, doc.LawOfTheDay.LawID); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// New builds a catalog from already-decoded countries and laws, enforcing the
// uniqueness invariants: country codes across the catalog, law IDs per country.
func New(countries []model.Country, laws map[string][]model.Law) (*Catalog, error) {
	c := &Catalog{
		byCode: make(map[string]int, len(countries)),
		laws:   make(map[string][]model.Law, len(laws)),
	}

	for _, country := range countries {
		code := strings.ToUpper(country.Code)
		if code == "" {
			return nil, fmt.Errorf("country %q has no code", country.Name)
		}
		if _, exists := c.byCode[code]; exists {
			return nil, fmt.Errorf("duplicate country code %s", code)
		}
		if !country.RiskLevel.Valid() {
			return nil, fmt.Errorf("country %s: invalid risk level %q", code, country.RiskLevel)
		}
		if country.LawCount < 0 {
			return nil, fmt.Errorf("country %s: negative law count", code)
		}
		country.Code = code
		c.byCode[code] = len(c.countries)
		c.countries = append(c.countries, country)
	}

	for code, list := range laws {
		code = strings.ToUpper(code)
		if _, ok := c.byCode[code]; !ok {
			return nil, fmt.Errorf("laws reference %w %s", ErrUnknownCountry, code)
		}
		seen := make(map[int]bool, len(list))
		for _, law := range list {
			if seen[law.ID] {
				return nil, fmt.Errorf("country %s: duplicate law id %d", code, law.ID)
			}
			if !law.RiskLevel.Valid() {
				return nil, fmt.Errorf("country %s law %d: invalid risk level %q", code, law.ID, law.RiskLevel)
			}
			seen[law.ID] = true
			law.CountryCode = code
			c.laws[code] = append(c.laws[code], law)
		}
	}

	return c, nil
}

func (c *Catalog) setLawOfTheDay(code string, lawID int) error {
	country, err := c.Country(code)
	if err != nil {
		return fmt.Errorf("law of the day: %w", err)
	}
	for _, law := range c.laws[country.Code] {
		if law.ID == lawID {
			c.lawOfTheDay = model.FeaturedLaw{
				CountryCode: country.Code,
				Country:     country.Name,
				Flag:        country.Flag,
				Title:       law.Title,
				Summary:     law.Summary,
				Category:    law.Category,
				Severity:    law.RiskLevel,
			}
			c.lotdCode, c.lotdID = country.Code, lawID
			return nil
		}
	}
	return fmt.Errorf("law of the day: country %s has no law %d", code, lawID)
}

// WithData returns a catalog holding the given countries and laws and the
// remaining reference lists of c. Used when the countries come from the database.
func (c *Catalog) WithData(countries []model.Country, laws map[string][]model.Law) (*Catalog, error) {
	out, err := New(countries, laws)
	if err != nil {
		return nil, err
	}
	out.regions = c.regions
	out.categories = c.categories
	out.quickQuestions = c.quickQuestions
	out.trending = c.trending
	out.plans = c.plans
	if c.lotdCode != "" {
		if err := out.setLawOfTheDay(c.lotdCode, c.lotdID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Countries returns every country in catalog order
func (c *Catalog) Countries() []model.Country {
	out := make([]model.Country, len(c.countries))
	copy(out, c.countries)
	return out
}

// Featured returns the first n countries for the home page grid
func (c *Catalog) Featured(n int) []model.Country {
	if n > len(c.countries) {
		n = len(c.countries)
	}
	out := make([]model.Country, n)
	copy(out, c.countries[:n])
	return out
}

// Country looks up a country by code, ignoring case
func (c *Catalog) Country(code string) (model.Country, error) {
	idx, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return model.Country{}, fmt.Errorf("%w: %s", ErrUnknownCountry, code)
	}
	return c.countries[idx], nil
}

// CountryOrDefault resolves code, falling back to DefaultCountry
func (c *Catalog) CountryOrDefault(code string) model.Country {
	if country, err := c.Country(code); err == nil {
		return country
	}
	country, _ := c.Country(DefaultCountry)
	return country
}

// Laws returns the laws of one country in catalog order
func (c *Catalog) Laws(code string) ([]model.Law, error) {
	country, err := c.Country(code)
	if err != nil {
		return nil, err
	}
	list := c.laws[country.Code]
	out := make([]model.Law, len(list))
	copy(out, list)
	return out, nil
}

// AllLaws returns every law of every country, annotated with the country
func (c *Catalog) AllLaws() []model.LawWithCountry {
	var out []model.LawWithCountry
	for _, country := range c.countries {
		for _, law := range c.laws[country.Code] {
			out = append(out, model.LawWithCountry{
				Law:         law,
				CountryName: country.Name,
				CountryFlag: country.Flag,
			})
		}
	}
	return out
}

// LawOfTheDay returns the fixed featured law
func (c *Catalog) LawOfTheDay() model.FeaturedLaw {
	return c.lawOfTheDay
}

// RiskLevels returns the risk filter options in ascending severity
func (c *Catalog) RiskLevels() []model.RiskLevel {
	return append([]model.RiskLevel(nil), model.RiskLevels...)
}

// Regions returns the region filter options
func (c *Catalog) Regions() []model.Region {
	return append([]model.Region(nil), c.regions...)
}

// Categories returns the closed set of law categories
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// QuickQuestions returns the canned chat prompts
func (c *Catalog) QuickQuestions() []model.QuickQuestionGroup {
	return append([]model.QuickQuestionGroup(nil), c.quickQuestions...)
}

// TrendingTopics returns the search suggestions of the home page
func (c *Catalog) TrendingTopics() []string {
	return append([]string(nil), c.trending...)
}

// PlanFeatures returns the free and premium feature lists
func (c *Catalog) PlanFeatures() model.PlanFeatures {
	return c.plans
}

// TotalLaws sums the published law counts of every country
func (c *Catalog) TotalLaws() int {
	total := 0
	for _, country := range c.countries {
		total += country.LawCount
	}
	return total
}
