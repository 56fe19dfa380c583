package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
)

func names(countries []model.Country) []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = c.Name
	}
	return out
}

func sample() []model.Country {
	return []model.Country{
		{Code: "JP", Name: "Japan", Region: "asia", RiskLevel: model.RiskLow, LawCount: 134},
		{Code: "FR", Name: "France", Region: "europe", RiskLevel: model.RiskHigh, LawCount: 98},
		{Code: "AE", Name: "UAE", Region: "middle-east", RiskLevel: model.RiskHigh, LawCount: 203},
	}
}

func TestRiskSortIsDescendingAndStable(t *testing.T) {
	res := Apply(sample(), model.FilterCriteria{SortKey: SortRiskLevel}, language.English)
	assert.Equal(t, []string{"France", "UAE", "Japan"}, names(res.Items()))
}

func TestAlphabeticalSort(t *testing.T) {
	res := Apply(sample(), model.FilterCriteria{SortKey: SortAlphabetical}, language.English)
	assert.Equal(t, []string{"France", "Japan", "UAE"}, names(res.Items()))
}

func TestAlphabeticalSortIsLocaleAware(t *testing.T) {
	items := []model.Country{
		{Code: "ZZ", Name: "Zambia", RiskLevel: model.RiskLow},
		{Code: "EE", Name: "Égypte", RiskLevel: model.RiskLow},
		{Code: "AA", Name: "Allemagne", RiskLevel: model.RiskLow},
	}
	res := Apply(items, model.FilterCriteria{SortKey: SortAlphabetical}, language.French)
	assert.Equal(t, []string{"Allemagne", "Égypte", "Zambia"}, names(res.Items()))
}

func TestLawCountSortDescending(t *testing.T) {
	res := Apply(sample(), model.FilterCriteria{SortKey: SortLawCount}, language.English)
	assert.Equal(t, []string{"UAE", "Japan", "France"}, names(res.Items()))
}

func TestUnknownSortKeepsOrder(t *testing.T) {
	for _, key := range []string{"", SortRelevance, "bogus"} {
		res := Apply(sample(), model.FilterCriteria{SortKey: key}, language.English)
		assert.Equal(t, []string{"Japan", "France", "UAE"}, names(res.Items()), key)
	}
}

func TestSortIsIdempotent(t *testing.T) {
	c := catalog.MustDefault()
	for _, key := range []string{SortAlphabetical, SortRiskLevel, SortLawCount} {
		crit := model.FilterCriteria{SortKey: key}
		once := Apply(c.Countries(), crit, language.English).Items()
		twice := Apply(once, crit, language.English).Items()
		assert.Equal(t, once, twice, key)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Apply(in, model.FilterCriteria{SortKey: SortAlphabetical, SearchText: "a"}, language.English)
	assert.Equal(t, []string{"Japan", "France", "UAE"}, names(in))
}

func TestPredicatesAreAnded(t *testing.T) {
	c := catalog.MustDefault()
	crit := model.FilterCriteria{SearchText: "a", Category: "europe", RiskLevel: "Low"}
	res := Apply(c.Countries(), crit, language.English)
	require.True(t, res.Applied())

	for _, country := range c.Countries() {
		want := strings.Contains(strings.ToLower(country.Name), "a") &&
			country.Region == "europe" && country.RiskLevel == model.RiskLow
		assert.Equal(t, want, slicesContains(res.Items(), country.Code), country.Code)
	}
}

func slicesContains(items []model.Country, code string) bool {
	for _, c := range items {
		if c.Code == code {
			return true
		}
	}
	return false
}

func TestAnySentinels(t *testing.T) {
	for _, v := range []string{"", "all", "All Categories", "All Levels", "All Countries"} {
		res := Apply(sample(), model.FilterCriteria{Category: v, RiskLevel: v, Country: v}, language.English)
		assert.Equal(t, 3, res.Len(), v)
	}
}

func TestSearchTextIsCaseInsensitive(t *testing.T) {
	res := Apply(sample(), model.FilterCriteria{SearchText: "fRaN"}, language.English)
	assert.Equal(t, []string{"France"}, names(res.Items()))
}

func TestSearchTextIsNotTrimmed(t *testing.T) {
	res := Apply(sample(), model.FilterCriteria{SearchText: " "}, language.English)
	assert.True(t, res.Empty())

	res = Apply(sample(), model.FilterCriteria{SearchText: "japan "}, language.English)
	assert.True(t, res.Empty())
}

func TestZeroResultIsNotEmpty(t *testing.T) {
	var zero Result[model.Country]
	assert.False(t, zero.Applied())
	assert.False(t, zero.Empty())

	res := Apply(sample(), model.FilterCriteria{SearchText: "atlantis"}, language.English)
	assert.True(t, res.Applied())
	assert.True(t, res.Empty())
}

func TestSearchCannabis(t *testing.T) {
	res := Apply(catalog.MustDefault().AllLaws(), model.FilterCriteria{SearchText: "cannabis"}, language.English)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "State-Specific Cannabis Laws", res.Items()[0].Title)
	assert.Equal(t, "United States", res.Items()[0].CountryName)
}

func TestLawTextMatchesSummary(t *testing.T) {
	laws := []model.Law{
		{ID: 1, Title: "Tipping", Summary: "Expected at restaurants", RiskLevel: model.RiskLow},
		{ID: 2, Title: "Driving", Summary: "Carry a permit", RiskLevel: model.RiskMedium},
	}
	res := Apply(laws, model.FilterCriteria{SearchText: "restaurant"}, language.English)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, 1, res.Items()[0].ID)
}

func TestCountryCriterionMatchesCodeOrName(t *testing.T) {
	all := catalog.MustDefault().AllLaws()
	byCode := Apply(all, model.FilterCriteria{Country: "fr"}, language.English)
	byName := Apply(all, model.FilterCriteria{Country: "France"}, language.English)
	require.False(t, byCode.Empty())
	assert.Equal(t, byCode.Items(), byName.Items())
	for _, law := range byCode.Items() {
		assert.Equal(t, "FR", law.CountryCode)
	}
}

func TestCategoryAndCountrySorts(t *testing.T) {
	laws := []model.LawWithCountry{
		{Law: model.Law{ID: 1, Category: "Transportation"}, CountryName: "Japan"},
		{Law: model.Law{ID: 2, Category: "Cultural & Social"}, CountryName: "France"},
	}
	byCountry := Apply(laws, model.FilterCriteria{SortKey: SortCountry}, language.English).Items()
	assert.Equal(t, "France", byCountry[0].CountryName)

	byCategory := Apply(laws, model.FilterCriteria{SortKey: SortCategory}, language.English).Items()
	assert.Equal(t, "Cultural & Social", byCategory[0].Category)
}
