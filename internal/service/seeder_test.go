package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/store"
)

func gumLaw() model.Law {
	return model.Law{
		ID:          1,
		Title:       "Chewing Gum Import",
		Category:    "Customs & Immigration",
		RiskLevel:   model.RiskMedium,
		Summary:     "Importing chewing gum is prohibited.",
		Tags:        []string{"customs"},
		LastUpdated: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestDigest(t *testing.T) {
	d := NewDigester()
	law := gumLaw()

	first := d.Digest(law)
	assert.Equal(t, 8, first.WordCount)
	assert.Len(t, first.Checksum, 32)
	assert.Equal(t, first, d.Digest(law), "digest is deterministic")

	law.RiskLevel = model.RiskHigh
	assert.NotEqual(t, first.Checksum, d.Digest(law).Checksum, "risk change alters checksum")

	law = gumLaw()
	law.Tags = append(law.Tags, "gum")
	assert.NotEqual(t, first.Checksum, d.Digest(law).Checksum, "tag change alters checksum")
	assert.Equal(t, first.WordCount, d.Digest(law).WordCount)
}

func TestSummarize(t *testing.T) {
	c := catalog.MustDefault()
	stats := Summarize(c)

	assert.Equal(t, 12, stats.TotalCountries)
	assert.Equal(t, len(c.AllLaws()), stats.TotalLaws)
	assert.Equal(t, c.TotalLaws(), stats.PublishedLaws)
	assert.Equal(t, 3, stats.HighRiskCountries)
	assert.Equal(t, "China", stats.LargestCountry)
	assert.Equal(t, 182, stats.LargestCountryLaws)
}

func singleCountryCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]model.Country{
			{Code: "SG", Name: "Singapore", RiskLevel: model.RiskMedium, LawCount: 1},
			{Code: "JP", Name: "Japan", RiskLevel: model.RiskLow},
		},
		map[string][]model.Law{"SG": {gumLaw()}},
	)
	require.NoError(t, err)
	return c
}

func newSeeder(t *testing.T) (*Seeder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSeeder(singleCountryCatalog(t), NewDigester(), store.NewCountryStore(db), store.NewLawStore(db), zap.NewNop()), mock
}

func expectCountry(mock sqlmock.Sqlmock, code string) {
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO countries`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM country_categories`).WithArgs(code).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func TestSeederSeed(t *testing.T) {
	seeder, mock := newSeeder(t)

	expectCountry(mock, "SG")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT checksum FROM laws`).
		WithArgs("SG", 1).
		WillReturnRows(sqlmock.NewRows([]string{"checksum"}))
	mock.ExpectExec(`INSERT INTO laws`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	expectCountry(mock, "JP")

	stats, err := seeder.Seed(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, &SeedStats{Countries: 2, Laws: 1, Imported: 2, Changed: 1}, stats)

	var out bytes.Buffer
	seeder.PrintSummary(&out, stats)
	assert.Contains(t, out.String(), "Success rate:    100.0%")
}

func TestSeederCountsFailuresAndContinues(t *testing.T) {
	seeder, mock := newSeeder(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO countries`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()
	expectCountry(mock, "JP")

	stats, err := seeder.Seed(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Imported)
}

func TestSeederStopsOnCancel(t *testing.T) {
	seeder, _ := newSeeder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := seeder.Seed(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Countries)
}

func TestStatsServiceCalculateAndStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`AS total_countries`).
		WillReturnRows(sqlmock.NewRows([]string{"total_countries", "published_laws", "high_risk"}).AddRow(12, 1757, 3))
	mock.ExpectQuery(`FROM laws`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "high"}).AddRow(21, 9))
	mock.ExpectQuery(`ORDER BY law_count DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "law_count"}).AddRow("China", 182))
	for _, name := range []string{
		"total_countries", "total_laws", "published_laws", "high_risk_countries", "high_risk_laws", "largest_country",
	} {
		mock.ExpectExec(`INSERT INTO catalog_metrics`).
			WithArgs(name, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	stats, err := NewStatsService(db).CalculateAndStore(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 21, stats.TotalLaws)
	assert.Equal(t, "China", stats.LargestCountry)

	var out bytes.Buffer
	PrintStats(&out, stats)
	assert.Contains(t, out.String(), "China (182 laws)")
}

func TestStatsServiceGetLatestMetrics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT ON \(metric_name\)`).
		WillReturnRows(sqlmock.NewRows([]string{"metric_name", "metric_value"}).
			AddRow("total_countries", "12").
			AddRow("largest_country", "China"))

	metrics, err := NewStatsService(db).GetLatestMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"total_countries": "12", "largest_country": "China"}, metrics)
}
