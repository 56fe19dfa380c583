package model

// Country represents a destination with its legal risk profile
type Country struct {
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Flag          string            `json:"flag"`
	Region        string            `json:"region"`
	RiskLevel     RiskLevel         `json:"riskLevel"`
	LawCount      int               `json:"lawCount"`
	Latitude      float64           `json:"latitude"`
	Longitude     float64           `json:"longitude"`
	OfflineSize   string            `json:"offlineSize"`
	Complexity    string            `json:"complexity"`
	Categories    []CategorySummary `json:"categories,omitempty"`
	EmergencyInfo EmergencyInfo     `json:"emergencyInfo"`
}

// CategorySummary describes one law category of a country overview
type CategorySummary struct {
	Name        string    `json:"name"`
	LawCount    int       `json:"lawCount"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Description string    `json:"description"`
}

// EmergencyInfo holds the contacts shown on the country emergency tab
type EmergencyInfo struct {
	Police         string `json:"police"`
	Embassy        string `json:"embassy"`
	TouristHotline string `json:"touristHotline"`
}

// Region is a geographic grouping used by the country filters
type Region struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
