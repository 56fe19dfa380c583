package model

// LocationSource names the lookup that produced a Location
type LocationSource string

const (
	SourceDevice LocationSource = "device"
	SourceIP     LocationSource = "ip"
)

// Location is a detected visitor position, resolved to a country
type Location struct {
	Country     string         `json:"country"`
	CountryCode string         `json:"countryCode"`
	Flag        string         `json:"flag"`
	City        string         `json:"city,omitempty"`
	Region      string         `json:"region,omitempty"`
	Source      LocationSource `json:"source"`
}

// Position is a device-reported coordinate pair
type Position struct {
	Latitude  float64
	Longitude float64
}
