package model

// FilterCriteria is the user-selected search state of a list screen
type FilterCriteria struct {
	SearchText string `query:"q" json:"q"`
	Category   string `query:"category" json:"category"`
	RiskLevel  string `query:"risk" json:"risk"`
	Country    string `query:"country" json:"country"`
	SortKey    string `query:"sort" json:"sort"`
}

// Facets are the values of an entity the filter engine inspects.
// Text holds the fields matched by the free-text search.
type Facets struct {
	Text        []string
	Name        string
	Category    string
	Risk        RiskLevel
	CountryCode string
	CountryName string
	Count       int
}

// Facets exposes a country to the filter engine; its region is the category dimension
func (c Country) Facets() Facets {
	return Facets{
		Text:        []string{c.Name},
		Name:        c.Name,
		Category:    c.Region,
		Risk:        c.RiskLevel,
		CountryCode: c.Code,
		CountryName: c.Name,
		Count:       c.LawCount,
	}
}

// Facets exposes a law to the filter engine
func (l Law) Facets() Facets {
	return Facets{
		Text:        []string{l.Title, l.Summary},
		Name:        l.Title,
		Category:    l.Category,
		Risk:        l.RiskLevel,
		CountryCode: l.CountryCode,
	}
}

// Facets extends the law facets with the owning country's name
func (l LawWithCountry) Facets() Facets {
	f := l.Law.Facets()
	f.CountryName = l.CountryName
	return f
}
