package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the three-value severity classification attached to countries and laws
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists every risk level in ascending severity
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Severity returns the sort weight of the level: High(3) > Medium(2) > Low(1).
// Unknown levels weigh 0.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known levels
func (r RiskLevel) Valid() bool {
	return r.Severity() > 0
}

// ParseRiskLevel converts a case-insensitive label into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, r := range RiskLevels {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid risk level %q", s)
}
