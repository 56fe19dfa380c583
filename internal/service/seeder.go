package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/store"
)

// SeedStats tracks seed statistics
type SeedStats struct {
	Countries int
	Laws      int
	Imported  int
	Changed   int
	Unchanged int
	Failed    int
}

// Seeder copies the embedded catalog into the database
type Seeder struct {
	catalog   *catalog.Catalog
	digester  *Digester
	countries *store.CountryStore
	laws      *store.LawStore
	logger    *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(c *catalog.Catalog, digester *Digester, countries *store.CountryStore, laws *store.LawStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		catalog:   c,
		digester:  digester,
		countries: countries,
		laws:      laws,
		logger:    logger,
	}
}

// Seed upserts every country and law. A failing country is counted and
// skipped; cancellation stops the run and returns the partial stats.
func (s *Seeder) Seed(ctx context.Context) (*SeedStats, error) {
	stats := &SeedStats{}

	countries := s.catalog.Countries()
	s.logger.Info("seeding catalog", zap.Int("countries", len(countries)))

	for position, country := range countries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Countries++
		if err := s.seedCountry(ctx, position, country, stats); err != nil {
			s.logger.Error("failed to seed country", zap.String("code", country.Code), zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Imported++
	}

	return stats, nil
}

func (s *Seeder) seedCountry(ctx context.Context, position int, country model.Country, stats *SeedStats) error {
	if err := s.countries.UpsertCountry(ctx, &country, position); err != nil {
		return err
	}

	laws, err := s.catalog.Laws(country.Code)
	if err != nil {
		return err
	}

	for i := range laws {
		law := &laws[i]
		digest := s.digester.Digest(*law)
		changed, err := s.laws.SaveLaw(ctx, law, digest.WordCount, digest.Checksum)
		if err != nil {
			return fmt.Errorf("failed to save law: %w", err)
		}

		stats.Laws++
		if changed {
			s.logger.Debug("law changed", zap.String("country", country.Code), zap.Int("law", law.ID))
			stats.Changed++
		} else {
			stats.Unchanged++
		}
	}

	return nil
}

// PrintSummary prints the seed statistics
func (s *Seeder) PrintSummary(w io.Writer, stats *SeedStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Seed Summary ===")
	fmt.Fprintf(w, "Countries:       %d\n", stats.Countries)
	fmt.Fprintf(w, "Imported:        %d\n", stats.Imported)
	fmt.Fprintf(w, "Failed:          %d\n", stats.Failed)
	fmt.Fprintf(w, "Laws:            %d\n", stats.Laws)
	fmt.Fprintf(w, "Changed:         %d\n", stats.Changed)
	fmt.Fprintf(w, "Unchanged:       %d\n", stats.Unchanged)

	if stats.Countries > 0 {
		successRate := float64(stats.Imported) / float64(stats.Countries) * 100
		fmt.Fprintf(w, "Success rate:    %.1f%%\n", successRate)
	}
}

// PrintStats prints catalog statistics
func PrintStats(w io.Writer, stats *CatalogStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Catalog Metrics ===")
	fmt.Fprintf(w, "Countries:        %d\n", stats.TotalCountries)
	fmt.Fprintf(w, "Laws (detailed):  %d\n", stats.TotalLaws)
	fmt.Fprintf(w, "Laws (published): %d\n", stats.PublishedLaws)
	fmt.Fprintf(w, "High risk:        %d countries, %d laws\n", stats.HighRiskCountries, stats.HighRiskLaws)
	fmt.Fprintf(w, "Largest country:  %s (%d laws)\n", stats.LargestCountry, stats.LargestCountryLaws)
}
