package model

import "time"

// Law represents a single regulation belonging to a country
type Law struct {
	ID          int       `json:"id"`
	CountryCode string    `json:"countryCode"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details"`
	Penalties   string    `json:"penalties"`
	Tips        string    `json:"tips"`
	Tags        []string  `json:"tags,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// LawWithCountry pairs a law with the display fields of its owning country
type LawWithCountry struct {
	Law
	CountryName string `json:"countryName"`
	CountryFlag string `json:"countryFlag"`
}

// LawCard is the condensed law attachment shown in chat replies
type LawCard struct {
	Title     string    `json:"title"`
	Country   string    `json:"country"`
	Flag      string    `json:"flag"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Summary   string    `json:"summary"`
}

// FeaturedLaw is the law highlighted on the home page
type FeaturedLaw struct {
	CountryCode string    `json:"countryCode"`
	Country     string    `json:"country"`
	Flag        string    `json:"flag"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Category    string    `json:"category"`
	Severity    RiskLevel `json:"severity"`
}
