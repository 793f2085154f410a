package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-benefits-backend/internal/auth"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.EnsureRoles(context.Background(), db, domain.RoleAdmin, domain.RoleModerator, domain.RoleEmployee); err != nil {
		t.Fatalf("roles: %v", err)
	}
	return db
}

// cheapHash keeps argon2 fast in tests.
func cheapHash(pw string) (string, error) {
	return auth.HashPasswordWith(pw, auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16})
}

type catalogFixture struct {
	company  *domain.Company
	location *domain.Location
	category *domain.Category
}

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	ctx := context.Background()
	f := catalogFixture{
		company:  &domain.Company{Title: "Acme", Description: "Desc", Address: "Addr", Phone: "555-0000", Link: "http://x"},
		location: &domain.Location{Country: "US", City: "Springfield"},
		category: &domain.Category{Title: "Food"},
	}
	if err := repo.CreateCompany(ctx, db, f.company); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if err := repo.CreateLocation(ctx, db, f.location); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	if err := repo.CreateCategory(ctx, db, f.category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return f
}
