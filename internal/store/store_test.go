package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/model"
)

var (
	countryCols = []string{
		"code", "name", "flag", "region", "risk_level", "law_count", "latitude", "longitude",
		"offline_size", "complexity", "police", "embassy", "tourist_hotline",
	}
	categoryCols = []string{"country_code", "name", "law_count", "risk_level", "description"}
	lawCols      = []string{
		"country_code", "law_id", "title", "category", "risk_level", "summary", "details",
		"penalties", "tips", "tags", "last_updated",
	}
)

type StoreTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	ctx  context.Context
}

func (s *StoreTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func thailandRow() *sqlmock.Rows {
	return sqlmock.NewRows(countryCols).AddRow(
		"TH", "Thailand", "🇹🇭", "asia", "High", 167, 15.87, 100.99,
		"2.8 MB", "Strict", "191", "+66-2-205-4000", "1672",
	)
}

func (s *StoreTestSuite) TestGetByCodeFound() {
	s.mock.ExpectQuery(`FROM countries WHERE code = \$1`).
		WithArgs("TH").
		WillReturnRows(thailandRow())
	s.mock.ExpectQuery(`FROM country_categories\s+WHERE country_code = \$1`).
		WithArgs("TH").
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow("TH", "Cultural & Social", 40, "High", "Monarchy and temples").
			AddRow("TH", "Substance Laws", 35, "High", "Drugs and e-cigarettes"))

	c, err := NewCountryStore(s.db).GetByCode(s.ctx, "th")
	s.Require().NoError(err)
	s.Require().NotNil(c)
	s.Equal("Thailand", c.Name)
	s.Equal(model.RiskHigh, c.RiskLevel)
	s.Equal("191", c.EmergencyInfo.Police)
	s.Require().Len(c.Categories, 2)
	s.Equal("Substance Laws", c.Categories[1].Name)
}

func (s *StoreTestSuite) TestGetByCodeMissing() {
	s.mock.ExpectQuery(`FROM countries WHERE code = \$1`).
		WithArgs("ZZ").
		WillReturnRows(sqlmock.NewRows(countryCols))

	c, err := NewCountryStore(s.db).GetByCode(s.ctx, "zz")
	s.NoError(err)
	s.Nil(c)
}

func (s *StoreTestSuite) TestUpsertCountryReplacesCategories() {
	c := &model.Country{
		Code:      "JP",
		Name:      "Japan",
		Flag:      "🇯🇵",
		RiskLevel: model.RiskLow,
		LawCount:  98,
		Categories: []model.CategorySummary{
			{Name: "Customs & Immigration", LawCount: 30, RiskLevel: model.RiskMedium},
			{Name: "Cultural & Social", LawCount: 20, RiskLevel: model.RiskLow},
		},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO countries`).WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(`DELETE FROM country_categories WHERE country_code = \$1`).
		WithArgs("JP").
		WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectExec(`INSERT INTO country_categories`).
		WithArgs("JP", "Customs & Immigration", 30, "Medium", "", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(`INSERT INTO country_categories`).
		WithArgs("JP", "Cultural & Social", 20, "Low", "", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	s.mock.ExpectCommit()

	s.NoError(NewCountryStore(s.db).UpsertCountry(s.ctx, c, 2))
}

func (s *StoreTestSuite) TestUpsertCountryRollsBackOnError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO countries`).WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := NewCountryStore(s.db).UpsertCountry(s.ctx, &model.Country{Code: "JP", RiskLevel: model.RiskLow}, 0)
	s.ErrorIs(err, sql.ErrConnDone)
	s.Contains(err.Error(), "JP")
}

func (s *StoreTestSuite) TestSaveLawDetectsChange() {
	law := &model.Law{
		ID:          2,
		CountryCode: "US",
		Title:       "State-Specific Cannabis Laws",
		Category:    "Substance Laws",
		RiskLevel:   model.RiskHigh,
		Tags:        []string{"drugs", "state law"},
		LastUpdated: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	laws := NewLawStore(s.db)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT checksum FROM laws`).
		WithArgs("US", 2).
		WillReturnRows(sqlmock.NewRows([]string{"checksum"}))
	s.mock.ExpectExec(`INSERT INTO laws`).WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	changed, err := laws.SaveLaw(s.ctx, law, 42, "abc")
	s.Require().NoError(err)
	s.True(changed, "new law is a change")

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT checksum FROM laws`).
		WithArgs("US", 2).
		WillReturnRows(sqlmock.NewRows([]string{"checksum"}).AddRow("abc"))
	s.mock.ExpectExec(`INSERT INTO laws`).WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	changed, err = laws.SaveLaw(s.ctx, law, 42, "abc")
	s.Require().NoError(err)
	s.False(changed, "identical checksum")
}

func (s *StoreTestSuite) TestGetByCountryScansTags() {
	updated := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`FROM laws WHERE country_code = \$1 ORDER BY law_id`).
		WithArgs("TH").
		WillReturnRows(sqlmock.NewRows(lawCols).AddRow(
			"TH", 1, "Respect for Royal Family", "Cultural & Social", "High",
			"Criticism of the monarchy is a serious crime.", "", "", "", `{monarchy,"lese majeste"}`, updated,
		))

	laws, err := NewLawStore(s.db).GetByCountry(s.ctx, "th")
	s.Require().NoError(err)
	s.Require().Len(laws, 1)
	s.Equal([]string{"monarchy", "lese majeste"}, laws[0].Tags)
	s.Equal(model.RiskHigh, laws[0].RiskLevel)
	s.Equal(updated, laws[0].LastUpdated)
}

func (s *StoreTestSuite) TestLoadCatalog() {
	s.mock.ExpectQuery(`FROM countries ORDER BY position`).WillReturnRows(thailandRow())
	s.mock.ExpectQuery(`FROM country_categories`).WillReturnRows(sqlmock.NewRows(categoryCols))
	s.mock.ExpectQuery(`FROM laws ORDER BY country_code, law_id`).
		WillReturnRows(sqlmock.NewRows(lawCols).AddRow(
			"TH", 1, "Respect for Royal Family", "Cultural & Social", "High",
			"Criticism of the monarchy is a serious crime.", "", "", "", "{}", time.Now(),
		))

	c, err := LoadCatalog(s.ctx, s.db, catalog.MustDefault())
	s.Require().NoError(err)
	s.Len(c.Countries(), 1)
	s.Equal("Respect for Royal Family", c.LawOfTheDay().Title)
	s.NotEmpty(c.QuickQuestions())
}

func (s *StoreTestSuite) TestLoadCatalogEmpty() {
	s.mock.ExpectQuery(`FROM countries ORDER BY position`).WillReturnRows(sqlmock.NewRows(countryCols))

	_, err := LoadCatalog(s.ctx, s.db, catalog.MustDefault())
	s.ErrorIs(err, ErrEmptyCatalog)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
