package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/globeguru/internal/model"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	countries := c.Countries()
	require.Len(t, countries, 12)
	assert.Equal(t, "US", countries[0].Code)
	assert.Equal(t, "United States", countries[0].Name)

	for _, country := range countries {
		assert.True(t, country.RiskLevel.Valid(), country.Code)
		assert.GreaterOrEqual(t, country.LawCount, 0, country.Code)
		assert.NotEmpty(t, country.Flag, country.Code)
	}
}

func TestCountryLookupIgnoresCase(t *testing.T) {
	c := MustDefault()

	fr, err := c.Country("fr")
	require.NoError(t, err)
	assert.Equal(t, "France", fr.Name)

	_, err = c.Country("zz")
	assert.True(t, errors.Is(err, ErrUnknownCountry))
}

func TestCountryOrDefaultFallsBackToUS(t *testing.T) {
	c := MustDefault()
	assert.Equal(t, "JP", c.CountryOrDefault("jp").Code)
	assert.Equal(t, DefaultCountry, c.CountryOrDefault("atlantis").Code)
}

func TestLawsAreScopedToCountry(t *testing.T) {
	c := MustDefault()

	laws, err := c.Laws("US")
	require.NoError(t, err)
	require.NotEmpty(t, laws)
	for _, law := range laws {
		assert.Equal(t, "US", law.CountryCode)
		assert.False(t, law.LastUpdated.IsZero())
	}

	_, err = c.Laws("XX")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestAllLawsCarryCountryDisplayFields(t *testing.T) {
	c := MustDefault()
	all := c.AllLaws()
	require.NotEmpty(t, all)
	assert.Equal(t, "United States", all[0].CountryName)
	assert.Equal(t, "🇺🇸", all[0].CountryFlag)
}

func TestLawOfTheDay(t *testing.T) {
	lotd := MustDefault().LawOfTheDay()
	assert.Equal(t, "TH", lotd.CountryCode)
	assert.Equal(t, "Respect for Royal Family", lotd.Title)
	assert.Equal(t, model.RiskHigh, lotd.Severity)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := MustDefault()

	countries := c.Countries()
	countries[0].Name = "mutated"
	assert.Equal(t, "United States", c.Countries()[0].Name)

	cats := c.Categories()
	cats[0] = "mutated"
	assert.NotEqual(t, "mutated", c.Categories()[0])
}

func TestFeaturedIsBounded(t *testing.T) {
	c := MustDefault()
	assert.Len(t, c.Featured(6), 6)
	assert.Len(t, c.Featured(100), len(c.Countries()))
}

func TestStaticContent(t *testing.T) {
	c := MustDefault()
	assert.Len(t, c.QuickQuestions(), 3)
	assert.Equal(t, "Popular", c.QuickQuestions()[0].Category)
	assert.Contains(t, c.TrendingTopics(), "Alcohol laws")
	assert.NotEmpty(t, c.PlanFeatures().Premium)
	assert.Len(t, c.RiskLevels(), 3)
	assert.Len(t, c.Regions(), 6)
}

func TestParseRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate country code",
			doc: `
countries:
  - {code: FR, name: France, risk_level: Low, law_count: 1}
  - {code: fr, name: Again, risk_level: Low, law_count: 1}
`,
		},
		{
			name: "invalid risk level",
			doc: `
countries:
  - {code: FR, name: France, risk_level: Extreme, law_count: 1}
`,
		},
		{
			name: "negative law count",
			doc: `
countries:
  - {code: FR, name: France, risk_level: Low, law_count: -1}
`,
		},
		{
			name: "duplicate law id",
			doc: `
countries:
  - code: FR
    name: France
    risk_level: Low
    law_count: 2
    laws:
      - {id: 1, title: A, risk_level: Low, last_updated: "2024-01-01"}
      - {id: 1, title: B, risk_level: Low, last_updated: "2024-01-01"}
`,
		},
		{
			name: "law of the day missing",
			doc: `
countries:
  - {code: FR, name: France, risk_level: Low, law_count: 0}
law_of_the_day: {country: FR, law_id: 9}
`,
		},
		{
			name: "malformed yaml",
			doc:  "countries: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestTotalLaws(t *testing.T) {
	c, err := New([]model.Country{
		{Code: "aa", Name: "A", RiskLevel: model.RiskLow, LawCount: 3},
		{Code: "BB", Name: "B", RiskLevel: model.RiskHigh, LawCount: 4},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, c.TotalLaws())
	assert.Equal(t, "AA", c.Countries()[0].Code)
}

func TestWithDataKeepsReferenceLists(t *testing.T) {
	base := MustDefault()
	th, err := base.Country("TH")
	require.NoError(t, err)
	thLaws, err := base.Laws("TH")
	require.NoError(t, err)

	c, err := base.WithData([]model.Country{th}, map[string][]model.Law{"TH": thLaws})
	require.NoError(t, err)
	assert.Len(t, c.Countries(), 1)
	assert.Equal(t, base.Regions(), c.Regions())
	assert.Equal(t, base.LawOfTheDay(), c.LawOfTheDay())

	jp, err := base.Country("JP")
	require.NoError(t, err)
	_, err = base.WithData([]model.Country{jp}, nil)
	assert.Error(t, err, "law of the day must resolve")
}
