package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjenkins/globeguru/internal/catalog"
)

// ErrEmptyCatalog is returned when the database holds no countries yet
var ErrEmptyCatalog = errors.New("catalog tables are empty")

// LoadCatalog reads countries and laws from the database and combines them
// with the reference lists of base (regions, quick questions, plans).
func LoadCatalog(ctx context.Context, db *sql.DB, base *catalog.Catalog) (*catalog.Catalog, error) {
	countries, err := NewCountryStore(db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, ErrEmptyCatalog
	}

	laws, err := NewLawStore(db).GetAll(ctx)
	if err != nil {
		return nil, err
	}

	c, err := base.WithData(countries, laws)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog in database: %w", err)
	}
	return c, nil
}
