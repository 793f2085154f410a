package csvimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

// newImportDB migrates the schema and seeds the location Springfield and
// the categories Food and Sport.
func newImportDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	ctx := context.Background()
	if err := repo.CreateLocation(ctx, db, &domain.Location{Country: "US", City: "Springfield"}); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	for _, title := range []string{"Food", "Sport"} {
		if err := repo.CreateCategory(ctx, db, &domain.Category{Title: title}); err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}
	return db
}

func file(lines ...string) string {
	return header + "\n" + strings.Join(lines, "\n") + "\n"
}

func load(t *testing.T, db *gorm.DB, content string) *Report {
	t.Helper()
	l := &Loader{DB: db, Now: fixedNow}
	rep, err := l.Load(context.Background(), strings.NewReader(content), ";")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return rep
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestLoad_ExampleRow_CreatesCompanyAndDiscount(t *testing.T) {
	db := newImportDB(t)

	rep := load(t, db, file(exampleRow))
	if got := rep.Lines(); !reflect.DeepEqual(got, []string{"1: OK"}) {
		t.Fatalf("outcomes = %v", got)
	}
	if count(t, db, &domain.Company{}) != 1 || count(t, db, &domain.Discount{}) != 1 {
		t.Fatalf("expected one company and one discount")
	}

	all, err := repo.AllDiscounts(context.Background(), db)
	if err != nil {
		t.Fatalf("AllDiscounts: %v", err)
	}
	d := all[0]
	if d.Company.Title != "Acme" || d.Kind != domain.KindDiscount || d.Size != "10%" ||
		len(d.Locations) != 1 || d.Locations[0].City != "Springfield" ||
		len(d.Categories) != 1 || d.Categories[0].Title != "Food" {
		t.Fatalf("unexpected discount: %+v", d)
	}
	if d.EndDate == nil || d.EndDate.Year() != 2024 || d.StartDate.Year() != 2024 {
		t.Fatalf("dates not parsed: start=%v end=%v", d.StartDate, d.EndDate)
	}
}

func TestLoad_RepeatedRow_SkipsSecond(t *testing.T) {
	db := newImportDB(t)

	rep := load(t, db, file(exampleRow, exampleRow))
	want := []string{"1: OK", "1: SKIP already exists"}
	if got := rep.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("outcomes = %v; want %v", got, want)
	}
	if rep.OK != 1 || rep.Skipped != 1 || rep.Total != 2 {
		t.Fatalf("unexpected counters: %+v", rep)
	}
	if count(t, db, &domain.Discount{}) != 1 {
		t.Fatalf("duplicate must not be persisted")
	}
}

func TestLoad_DuplicateIgnoresDatesLocationsCategories(t *testing.T) {
	db := newImportDB(t)
	if err := repo.CreateLocation(context.Background(), db, &domain.Location{Country: "US", City: "Shelbyville"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	variant := "2;Acme;Retail;Sport;img.png;Desc;Addr;555-0000;http://x;10%;GIFT;5% off;show ID;05.05.2025;;Shelbyville"

	rep := load(t, db, file(exampleRow, variant))
	want := []string{"1: OK", "2: SKIP already exists"}
	if got := rep.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("outcomes = %v; want %v", got, want)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	db := newImportDB(t)
	second := "2;Acme;Gym;Sport;gym.png;Desc;Addr;555-0000;http://x;2 months;BONUS;Free month;new members;01.02.2024;;Springfield"
	content := file(exampleRow, second)

	if got := load(t, db, content).Lines(); !reflect.DeepEqual(got, []string{"1: OK", "2: OK"}) {
		t.Fatalf("first run = %v", got)
	}
	if got := load(t, db, content).Lines(); !reflect.DeepEqual(got, []string{"1: SKIP already exists", "2: SKIP already exists"}) {
		t.Fatalf("second run = %v", got)
	}
	if count(t, db, &domain.Discount{}) != 2 || count(t, db, &domain.Company{}) != 1 {
		t.Fatalf("second run must not change storage")
	}
}

func TestLoad_MissingCity_NoMutation(t *testing.T) {
	db := newImportDB(t)
	row := "7;NewCo;Retail;Food;img.png;Desc;Addr;555;http://x;10%;DISCOUNT;5% off;show ID;01.01.2024;;Springfield|Atlantis"

	rep := load(t, db, file(row))
	if got := rep.Lines(); !reflect.DeepEqual(got, []string{"7: City Atlantis was not found in database"}) {
		t.Fatalf("outcomes = %v", got)
	}
	if count(t, db, &domain.Company{}) != 0 || count(t, db, &domain.Discount{}) != 0 {
		t.Fatalf("failed row must leave no company or discount behind")
	}
}

func TestLoad_RowFailures(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{
			"missing category",
			"3;Acme;Retail;Food|Travel;img.png;Desc;Addr;555;http://x;10%;DISCOUNT;d;c;01.01.2024;;Springfield",
			"3: Category Travel was not found in database",
		},
		{
			"unsupported kind",
			"4;Acme;Retail;Food;img.png;Desc;Addr;555;http://x;10%;COUPON;d;c;01.01.2024;;Springfield",
			"4: Discount type COUPON is not supported",
		},
		{
			"field count",
			"5;Acme;Retail",
			"5: Number of delimited fields does not match header",
		},
		{
			"company validation",
			"6;" + strings.Repeat("A", 51) + ";Retail;Food;img.png;Desc;Addr;555;http://x;10%;DISCOUNT;d;c;01.01.2024;;Springfield",
			"6: title length must be between 1 and 50",
		},
		{
			"company link blank",
			"6b;Acme;Retail;Food;img.png;Desc;Addr;555;;10%;DISCOUNT;d;c;01.01.2024;;Springfield",
			"6b: link must not be blank",
		},
		{
			"discount validation",
			"8;Acme;Retail;Food;img.png;Desc;Addr;555;http://x;" + strings.Repeat("9", 101) + ";DISCOUNT;d;c;01.01.2024;;Springfield",
			"8: size length must be between 1 and 100",
		},
		{
			"no locations",
			"9;Acme;Retail;Food;img.png;Desc;Addr;555;http://x;10%;DISCOUNT;d;c;01.01.2024;;",
			"9: locations must not be empty",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newImportDB(t)
			rep := load(t, db, file(tc.row))
			if got := rep.Lines(); len(got) != 1 || got[0] != tc.want {
				t.Fatalf("outcomes = %v; want [%s]", got, tc.want)
			}
			if rep.Failed != 1 {
				t.Fatalf("expected one failure, got %+v", rep)
			}
			if count(t, db, &domain.Company{}) != 0 {
				t.Fatalf("failed row must roll back its company")
			}
		})
	}
}

func TestLoad_RowsAreIndependent(t *testing.T) {
	db := newImportDB(t)
	bad := "2;Other;Retail;Food;img.png;Desc;Addr;555;http://x;10%;DISCOUNT;d;c;01.01.2024;;Nowhere"
	third := "3;Acme;Gym;Sport;gym.png;Desc;Addr;555-0000;http://x;5%;GIFT;d;c;01.01.2024;;Springfield"

	rep := load(t, db, file(exampleRow, bad, "", third))
	want := []string{"1: OK", "2: City Nowhere was not found in database", "3: OK"}
	if got := rep.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("outcomes = %v; want %v", got, want)
	}
	// Row 3 reuses the company created by row 1.
	if count(t, db, &domain.Company{}) != 1 || count(t, db, &domain.Discount{}) != 2 {
		t.Fatalf("unexpected storage state")
	}
}

func TestLoad_ExistingCompanyFieldsWin(t *testing.T) {
	db := newImportDB(t)
	ctx := context.Background()
	if err := repo.CreateCompany(ctx, db, &domain.Company{Title: "Acme", Description: "Stored", Address: "Addr", Phone: "555-0000", Link: "http://x"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rep := load(t, db, file(exampleRow))
	if got := rep.Lines(); !reflect.DeepEqual(got, []string{"1: OK"}) {
		t.Fatalf("outcomes = %v", got)
	}
	if count(t, db, &domain.Company{}) != 1 {
		t.Fatalf("existing company must be reused")
	}
}

func TestLoad_HeaderErrors(t *testing.T) {
	db := newImportDB(t)
	l := &Loader{DB: db, Now: fixedNow}
	swapped := append([]string(nil), Columns...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	cases := map[string]struct {
		content string
		want    error
	}{
		"empty":       {"", ErrEmptyFile},
		"blank":       {"  \n", ErrHeadersNotSuitable},
		"wrong order": {strings.Join(swapped, ";") + "\n" + exampleRow + "\n", ErrHeadersNotSuitable},
	}
	for name, tc := range cases {
		rep, err := l.Load(context.Background(), strings.NewReader(tc.content), ";")
		if !errors.Is(err, tc.want) || rep != nil {
			t.Fatalf("%s: want %v, got rep=%v err=%v", name, tc.want, rep, err)
		}
	}
	if count(t, db, &domain.Discount{}) != 0 {
		t.Fatalf("rejected header must not import rows")
	}
	if _, err := l.Load(context.Background(), strings.NewReader(file(exampleRow)), ""); !errors.Is(err, ErrEmptyDelimiter) {
		t.Fatalf("expected ErrEmptyDelimiter, got %v", err)
	}
}

func TestLoad_BOMAndCRLF(t *testing.T) {
	db := newImportDB(t)
	content := "\ufeff" + header + "\r\n" + exampleRow + "\r\n"
	if got := load(t, db, content).Lines(); !reflect.DeepEqual(got, []string{"1: OK"}) {
		t.Fatalf("outcomes = %v", got)
	}
}

func TestLoad_HeaderOnly_NoTrailingNewline(t *testing.T) {
	db := newImportDB(t)
	rep := load(t, db, header)
	if rep.Total != 0 || len(rep.Outcomes) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	db := newImportDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &Loader{DB: db, Now: fixedNow}
	if _, err := l.Load(ctx, strings.NewReader(file(exampleRow)), ";"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExport_RoundTripSkipsEverything(t *testing.T) {
	db := newImportDB(t)
	second := "2;Beta;Gym;Sport|Food;gym.png;Gyms;Main st;123;http://b;1 month;BONUS;Free;members;01.02.2024;;Springfield"
	load(t, db, file(exampleRow, second))

	all, err := repo.AllDiscounts(context.Background(), db)
	if err != nil {
		t.Fatalf("AllDiscounts: %v", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, all, ";"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), header+"\n") {
		t.Fatalf("export must start with header, got %q", buf.String())
	}

	before := count(t, db, &domain.Discount{})
	rep := load(t, db, buf.String())
	if rep.Total != 2 || rep.Skipped != 2 {
		t.Fatalf("re-import should skip all rows: %v", rep.Lines())
	}
	if count(t, db, &domain.Discount{}) != before {
		t.Fatalf("re-import changed row count")
	}
}

func TestExport_EmptyDelimiter(t *testing.T) {
	if err := Export(&bytes.Buffer{}, nil, ""); !errors.Is(err, ErrEmptyDelimiter) {
		t.Fatalf("expected ErrEmptyDelimiter, got %v", err)
	}
}
