package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jjenkins/globeguru/internal/model"
)

// CountryStore handles database operations for countries and their category summaries
type CountryStore struct {
	db *sql.DB
}

// NewCountryStore creates a new CountryStore
func NewCountryStore(db *sql.DB) *CountryStore {
	return &CountryStore{db: db}
}

const countryColumns = `
	code, name, flag, region, risk_level, law_count, latitude, longitude,
	offline_size, complexity, police, embassy, tourist_hotline
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(row rowScanner) (model.Country, error) {
	var c model.Country
	var risk string
	err := row.Scan(
		&c.Code,
		&c.Name,
		&c.Flag,
		&c.Region,
		&risk,
		&c.LawCount,
		&c.Latitude,
		&c.Longitude,
		&c.OfflineSize,
		&c.Complexity,
		&c.EmergencyInfo.Police,
		&c.EmergencyInfo.Embassy,
		&c.EmergencyInfo.TouristHotline,
	)
	c.Code = strings.TrimSpace(c.Code)
	c.RiskLevel = model.RiskLevel(risk)
	return c, err
}

// GetByCode retrieves a country and its categories by code
func (s *CountryStore) GetByCode(ctx context.Context, code string) (*model.Country, error) {
	query := `SELECT` + countryColumns + `FROM countries WHERE code = $1`

	c, err := scanCountry(s.db.QueryRowContext(ctx, query, strings.ToUpper(code)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country %s: %w", code, err)
	}

	categories, err := s.getCategories(ctx, `WHERE country_code = $1`, c.Code)
	if err != nil {
		return nil, err
	}
	c.Categories = categories[c.Code]

	return &c, nil
}

// GetAll retrieves every country in catalog order with its categories
func (s *CountryStore) GetAll(ctx context.Context) ([]model.Country, error) {
	query := `SELECT` + countryColumns + `FROM countries ORDER BY position, code`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get countries: %w", err)
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categories, err := s.getCategories(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range countries {
		countries[i].Categories = categories[countries[i].Code]
	}

	return countries, nil
}

// getCategories loads category summaries grouped by country code
func (s *CountryStore) getCategories(ctx context.Context, where string, args ...any) (map[string][]model.CategorySummary, error) {
	query := `
		SELECT country_code, name, law_count, risk_level, description
		FROM country_categories
		` + where + `
		ORDER BY country_code, position
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.CategorySummary)
	for rows.Next() {
		var code, risk string
		var cat model.CategorySummary
		if err := rows.Scan(&code, &cat.Name, &cat.LawCount, &risk, &cat.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.RiskLevel = model.RiskLevel(risk)
		code = strings.TrimSpace(code)
		out[code] = append(out[code], cat)
	}

	return out, rows.Err()
}

// UpsertCountry inserts or updates a country and replaces its categories.
// position keeps the catalog order stable across reloads.
func (s *CountryStore) UpsertCountry(ctx context.Context, c *model.Country, position int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO countries (code, name, flag, region, risk_level, law_count, latitude, longitude,
		                       offline_size, complexity, police, embassy, tourist_hotline, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			flag = EXCLUDED.flag,
			region = EXCLUDED.region,
			risk_level = EXCLUDED.risk_level,
			law_count = EXCLUDED.law_count,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			offline_size = EXCLUDED.offline_size,
			complexity = EXCLUDED.complexity,
			police = EXCLUDED.police,
			embassy = EXCLUDED.embassy,
			tourist_hotline = EXCLUDED.tourist_hotline,
			position = EXCLUDED.position,
			updated_at = NOW()
	`

	_, err = tx.ExecContext(ctx, query,
		c.Code,
		c.Name,
		c.Flag,
		c.Region,
		string(c.RiskLevel),
		c.LawCount,
		c.Latitude,
		c.Longitude,
		c.OfflineSize,
		c.Complexity,
		c.EmergencyInfo.Police,
		c.EmergencyInfo.Embassy,
		c.EmergencyInfo.TouristHotline,
		position,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert country %s: %w", c.Code, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM country_categories WHERE country_code = $1`, c.Code); err != nil {
		return fmt.Errorf("failed to clear categories of %s: %w", c.Code, err)
	}

	categoryQuery := `
		INSERT INTO country_categories (country_code, name, law_count, risk_level, description, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, cat := range c.Categories {
		_, err := tx.ExecContext(ctx, categoryQuery, c.Code, cat.Name, cat.LawCount, string(cat.RiskLevel), cat.Description, i)
		if err != nil {
			return fmt.Errorf("failed to insert category %q of %s: %w", cat.Name, c.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountCountries returns the number of stored countries
func (s *CountryStore) CountCountries(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return count, nil
}
