package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
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
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// newCatalogDB migrates the full schema and seeds one company, location and
// category.
func newCatalogDB(t *testing.T) (*gorm.DB, *domain.Company, *domain.Location, *domain.Category) {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	ctx := context.Background()
	co := &domain.Company{Title: "Acme", Description: "Desc", Address: "Addr", Phone: "555", Link: "http://x"}
	if err := CreateCompany(ctx, db, co); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	loc := &domain.Location{Country: "US", City: "Springfield"}
	if err := CreateLocation(ctx, db, loc); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	cat := &domain.Category{Title: "Food"}
	if err := CreateCategory(ctx, db, cat); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return db, co, loc, cat
}

func newDiscount(co *domain.Company, loc *domain.Location, cat *domain.Category, typ string) *domain.Discount {
	return &domain.Discount{
		Type: typ, Description: "5% off", Condition: "show ID", Size: "10%",
		Kind: domain.KindDiscount, StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Image: "img.png", Company: *co,
		Locations:  []domain.Location{*loc},
		Categories: []domain.Category{*cat},
	}
}
