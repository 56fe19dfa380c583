package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
)

// CatalogStats summarises the reference data shown on the about page and
// printed after a seed
type CatalogStats struct {
	TotalCountries     int
	TotalLaws          int
	PublishedLaws      int
	HighRiskCountries  int
	HighRiskLaws       int
	LargestCountry     string
	LargestCountryLaws int
}

// Summarize computes catalog statistics from memory
func Summarize(c *catalog.Catalog) CatalogStats {
	var stats CatalogStats
	for _, country := range c.Countries() {
		stats.TotalCountries++
		stats.PublishedLaws += country.LawCount
		if country.RiskLevel == model.RiskHigh {
			stats.HighRiskCountries++
		}
		if country.LawCount > stats.LargestCountryLaws {
			stats.LargestCountry = country.Name
			stats.LargestCountryLaws = country.LawCount
		}
	}
	for _, law := range c.AllLaws() {
		stats.TotalLaws++
		if law.RiskLevel == model.RiskHigh {
			stats.HighRiskLaws++
		}
	}
	return stats
}

// StatsService calculates and stores catalog metrics in the database
type StatsService struct {
	db *sql.DB
}

// NewStatsService creates a new StatsService
func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{db: db}
}

// CalculateAndStore calculates catalog metrics from the stored tables and records them
func (m *StatsService) CalculateAndStore(ctx context.Context) (*CatalogStats, error) {
	stats := &CatalogStats{}

	countryQuery := `
		SELECT
			COUNT(*) AS total_countries,
			COALESCE(SUM(law_count), 0) AS published_laws,
			COUNT(*) FILTER (WHERE risk_level = 'High') AS high_risk
		FROM countries
	`
	err := m.db.QueryRowContext(ctx, countryQuery).Scan(
		&stats.TotalCountries,
		&stats.PublishedLaws,
		&stats.HighRiskCountries,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate country metrics: %w", err)
	}

	lawQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE risk_level = 'High')
		FROM laws
	`
	if err := m.db.QueryRowContext(ctx, lawQuery).Scan(&stats.TotalLaws, &stats.HighRiskLaws); err != nil {
		return nil, fmt.Errorf("failed to calculate law metrics: %w", err)
	}

	largestQuery := `
		SELECT name, law_count
		FROM countries
		ORDER BY law_count DESC
		LIMIT 1
	`
	err = m.db.QueryRowContext(ctx, largestQuery).Scan(&stats.LargestCountry, &stats.LargestCountryLaws)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find largest country: %w", err)
	}

	values := []struct {
		name  string
		value string
	}{
		{"total_countries", fmt.Sprintf("%d", stats.TotalCountries)},
		{"total_laws", fmt.Sprintf("%d", stats.TotalLaws)},
		{"published_laws", fmt.Sprintf("%d", stats.PublishedLaws)},
		{"high_risk_countries", fmt.Sprintf("%d", stats.HighRiskCountries)},
		{"high_risk_laws", fmt.Sprintf("%d", stats.HighRiskLaws)},
		{"largest_country", stats.LargestCountry},
	}
	for _, v := range values {
		if err := m.storeMetric(ctx, v.name, v.value); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// storeMetric stores a single metric value
func (m *StatsService) storeMetric(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO catalog_metrics (metric_name, metric_value, calculated_at)
		VALUES ($1, $2, $3)
	`

	_, err := m.db.ExecContext(ctx, query, name, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store metric %s: %w", name, err)
	}

	return nil
}

// GetLatestMetrics retrieves the most recent value of every metric
func (m *StatsService) GetLatestMetrics(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT DISTINCT ON (metric_name) metric_name, metric_value
		FROM catalog_metrics
		ORDER BY metric_name, calculated_at DESC
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics[name] = value
	}

	return metrics, rows.Err()
}
