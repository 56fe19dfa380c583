// Package filter narrows and orders catalog entities for the list screens.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jjenkins/globeguru/internal/model"
)

// Sort keys accepted in FilterCriteria.SortKey
const (
	SortAlphabetical = "alphabetical"
	SortRiskLevel    = "riskLevel"
	SortLawCount     = "lawCount"
	SortRelevance    = "relevance"
	SortCountry      = "country"
	SortCategory     = "category"
)

// Filterable is implemented by every entity the engine can narrow
type Filterable interface {
	Facets() model.Facets
}

// Result is the output of Apply. The zero value means no filter has run yet,
// which the screens render differently from an applied filter with no matches.
type Result[T any] struct {
	items   []T
	applied bool
}

// Items returns the matching entities in display order
func (r Result[T]) Items() []T {
	return r.items
}

// Len returns the number of matches
func (r Result[T]) Len() int {
	return len(r.items)
}

// Applied reports whether the result came from Apply
func (r Result[T]) Applied() bool {
	return r.applied
}

// Empty reports an applied filter that matched nothing
func (r Result[T]) Empty() bool {
	return r.applied && len(r.items) == 0
}

type entry[T any] struct {
	item   T
	facets model.Facets
}

// Apply filters items by every predicate of c and then sorts them by c.SortKey.
// The input slice is never modified. tag selects the collation used by the
// alphabetical sorts.
func Apply[T Filterable](items []T, c model.FilterCriteria, tag language.Tag) Result[T] {
	text := strings.ToLower(c.SearchText)

	matched := make([]entry[T], 0, len(items))
	for _, item := range items {
		f := item.Facets()
		if !matchText(f, text) ||
			!matchCategory(f, c.Category) ||
			!matchRisk(f, c.RiskLevel) ||
			!matchCountry(f, c.Country) {
			continue
		}
		matched = append(matched, entry[T]{item: item, facets: f})
	}

	sortEntries(matched, c.SortKey, tag)

	out := make([]T, len(matched))
	for i, e := range matched {
		out[i] = e.item
	}
	return Result[T]{items: out, applied: true}
}

// IsAny reports whether a criterion value means "no constraint"
func IsAny(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "all", "All Categories", "All Levels", "All Countries", "All Regions":
		return true
	}
	return false
}

func matchText(f model.Facets, text string) bool {
	if text == "" {
		return true
	}
	for _, field := range f.Text {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

func matchCategory(f model.Facets, category string) bool {
	return IsAny(category) || f.Category == category
}

func matchRisk(f model.Facets, risk string) bool {
	return IsAny(risk) || string(f.Risk) == risk
}

func matchCountry(f model.Facets, country string) bool {
	if IsAny(country) {
		return true
	}
	return strings.EqualFold(f.CountryCode, country) || strings.EqualFold(f.CountryName, country)
}

func sortEntries[T any](entries []entry[T], key string, tag language.Tag) {
	switch key {
	case SortAlphabetical:
		col := collate.New(tag)
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			return col.CompareString(a.facets.Name, b.facets.Name)
		})
	case SortRiskLevel:
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			return cmp.Compare(b.facets.Risk.Severity(), a.facets.Risk.Severity())
		})
	case SortLawCount:
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			return cmp.Compare(b.facets.Count, a.facets.Count)
		})
	case SortCountry:
		col := collate.New(tag)
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			return col.CompareString(a.facets.CountryName, b.facets.CountryName)
		})
	case SortCategory:
		col := collate.New(tag)
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			return col.CompareString(a.facets.Category, b.facets.Category)
		})
	}
	// relevance and unknown keys keep the source order
}
