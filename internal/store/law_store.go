package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jjenkins/globeguru/internal/model"
)

// LawStore handles database operations for laws
type LawStore struct {
	db *sql.DB
}

// NewLawStore creates a new LawStore
func NewLawStore(db *sql.DB) *LawStore {
	return &LawStore{db: db}
}

const lawColumns = `
	country_code, law_id, title, category, risk_level, summary, details,
	penalties, tips, tags, last_updated
`

func scanLaw(row rowScanner) (model.Law, error) {
	var l model.Law
	var risk string
	var tags pq.StringArray
	err := row.Scan(
		&l.CountryCode,
		&l.ID,
		&l.Title,
		&l.Category,
		&risk,
		&l.Summary,
		&l.Details,
		&l.Penalties,
		&l.Tips,
		&tags,
		&l.LastUpdated,
	)
	l.CountryCode = strings.TrimSpace(l.CountryCode)
	l.RiskLevel = model.RiskLevel(risk)
	l.Tags = []string(tags)
	return l, err
}

// GetByCountry retrieves the laws of one country ordered by law ID
func (s *LawStore) GetByCountry(ctx context.Context, code string) ([]model.Law, error) {
	query := `SELECT` + lawColumns + `FROM laws WHERE country_code = $1 ORDER BY law_id`
	return s.query(ctx, query, strings.ToUpper(code))
}

// GetAll retrieves every law grouped by country code
func (s *LawStore) GetAll(ctx context.Context) (map[string][]model.Law, error) {
	query := `SELECT` + lawColumns + `FROM laws ORDER BY country_code, law_id`
	laws, err := s.query(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]model.Law)
	for _, l := range laws {
		out[l.CountryCode] = append(out[l.CountryCode], l)
	}
	return out, nil
}

func (s *LawStore) query(ctx context.Context, query string, args ...any) ([]model.Law, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get laws: %w", err)
	}
	defer rows.Close()

	var laws []model.Law
	for rows.Next() {
		l, err := scanLaw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan law: %w", err)
		}
		laws = append(laws, l)
	}

	return laws, rows.Err()
}

// SaveLaw upserts a law and reports whether its content checksum changed.
// Re-saving identical content is a no-op for the changed flag.
func (s *LawStore) SaveLaw(ctx context.Context, l *model.Law, wordCount int, checksum string) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing sql.NullString
	checksumQuery := `SELECT checksum FROM laws WHERE country_code = $1 AND law_id = $2`
	err = tx.QueryRowContext(ctx, checksumQuery, l.CountryCode, l.ID).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to read checksum of law %s/%d: %w", l.CountryCode, l.ID, err)
	}

	changed = !existing.Valid || existing.String != checksum

	upsertQuery := `
		INSERT INTO laws (country_code, law_id, title, category, risk_level, summary, details,
		                  penalties, tips, tags, last_updated, word_count, checksum, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (country_code, law_id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			risk_level = EXCLUDED.risk_level,
			summary = EXCLUDED.summary,
			details = EXCLUDED.details,
			penalties = EXCLUDED.penalties,
			tips = EXCLUDED.tips,
			tags = EXCLUDED.tags,
			last_updated = EXCLUDED.last_updated,
			word_count = EXCLUDED.word_count,
			checksum = EXCLUDED.checksum,
			updated_at = NOW()
	`

	_, err = tx.ExecContext(ctx, upsertQuery,
		l.CountryCode,
		l.ID,
		l.Title,
		l.Category,
		string(l.RiskLevel),
		l.Summary,
		l.Details,
		l.Penalties,
		l.Tips,
		pq.Array(l.Tags),
		l.LastUpdated,
		wordCount,
		checksum,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert law %s/%d: %w", l.CountryCode, l.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changed, nil
}

// CountLaws returns the number of stored laws
func (s *LawStore) CountLaws(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM laws`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count laws: %w", err)
	}
	return count, nil
}
