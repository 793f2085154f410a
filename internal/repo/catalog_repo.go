// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the reference
// catalog: companies, locations and categories.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - Missing rows yield ErrNotFound (gorm.ErrRecordNotFound).
//   - Unique and foreign key failures are wrapped with ErrDuplicate and
//     ErrReferenced; the driver message is preserved.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// CreateCompany inserts c, assigning a UUID when c.ID is empty.
func CreateCompany(ctx context.Context, db *gorm.DB, c *domain.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return classify(db.WithContext(ctx).Create(c).Error)
}

// GetCompany fetches a company by id.
func GetCompany(ctx context.Context, db *gorm.DB, id string) (*domain.Company, error) {
	var c domain.Company
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompaniesPage returns a page of companies and the total count.
func ListCompaniesPage(ctx context.Context, db *gorm.DB, p Page) ([]domain.Company, int64, error) {
	return listPage[domain.Company](ctx, db, p, "title asc", nil)
}

// AllCompanies loads every company. Used to build per-run lookup indexes.
func AllCompanies(ctx context.Context, db *gorm.DB) ([]domain.Company, error) {
	var out []domain.Company
	err := db.WithContext(ctx).Order("title asc").Find(&out).Error
	return out, err
}

// UpdateCompany overwrites the business fields of an existing company.
func UpdateCompany(ctx context.Context, db *gorm.DB, c *domain.Company) error {
	res := db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"title":       c.Title,
			"description": c.Description,
			"address":     c.Address,
			"phone":       c.Phone,
			"link":        c.Link,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompany removes a company. Companies that still own discounts are
// protected by ON DELETE RESTRICT and yield ErrReferenced.
func DeleteCompany(ctx context.Context, db *gorm.DB, id string) error {
	return deleteByID[domain.Company](ctx, db, id)
}

// CreateLocation inserts l, assigning a UUID when l.ID is empty.
func CreateLocation(ctx context.Context, db *gorm.DB, l *domain.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	return classify(db.WithContext(ctx).Create(l).Error)
}

// GetLocation fetches a location by id.
func GetLocation(ctx context.Context, db *gorm.DB, id string) (*domain.Location, error) {
	var l domain.Location
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLocationsPage returns a page of locations and the total count.
func ListLocationsPage(ctx context.Context, db *gorm.DB, p Page) ([]domain.Location, int64, error) {
	return listPage[domain.Location](ctx, db, p, "country asc, city asc", nil)
}

// AllLocations loads every location ordered by country then city.
func AllLocations(ctx context.Context, db *gorm.DB) ([]domain.Location, error) {
	var out []domain.Location
	err := db.WithContext(ctx).Order("country asc, city asc").Find(&out).Error
	return out, err
}

// UpdateLocation overwrites country and city of an existing location.
func UpdateLocation(ctx context.Context, db *gorm.DB, l *domain.Location) error {
	res := db.WithContext(ctx).
		Model(&domain.Location{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{"country": l.Country, "city": l.City, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLocation removes a location and, by cascade, its discount links.
func DeleteLocation(ctx context.Context, db *gorm.DB, id string) error {
	return deleteByID[domain.Location](ctx, db, id)
}

// CreateCategory inserts c, assigning a UUID when c.ID is empty.
func CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return classify(db.WithContext(ctx).Create(c).Error)
}

// GetCategory fetches a category by id.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategoriesPage returns a page of categories and the total count.
func ListCategoriesPage(ctx context.Context, db *gorm.DB, p Page) ([]domain.Category, int64, error) {
	return listPage[domain.Category](ctx, db, p, "title asc", nil)
}

// AllCategories loads every category ordered by title.
func AllCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).Order("title asc").Find(&out).Error
	return out, err
}

// UpdateCategory renames an existing category.
func UpdateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	res := db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{"title": c.Title, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category and, by cascade, its discount links.
func DeleteCategory(ctx context.Context, db *gorm.DB, id string) error {
	return deleteByID[domain.Category](ctx, db, id)
}
