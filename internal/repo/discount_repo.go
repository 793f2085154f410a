// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Discount
// aggregate and its many-to-many links to locations and categories.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// DiscountFilter narrows discount listings. Empty fields are ignored.
type DiscountFilter struct {
	CompanyID  string
	CategoryID string
	LocationID string
	Kind       domain.DiscountKind
}

func (f DiscountFilter) scope(q *gorm.DB) *gorm.DB {
	if f.CompanyID != "" {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.CategoryID != "" {
		q = q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Table("discount_categories").Select("discount_id").Where("category_id = ?", f.CategoryID))
	}
	if f.LocationID != "" {
		q = q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Table("discount_locations").Select("discount_id").Where("location_id = ?", f.LocationID))
	}
	return q
}

// discountRelations are preloaded whenever a full Discount is returned.
var discountRelations = []string{"Company", "Locations", "Categories"}

// CreateDiscount inserts d and its join rows. Company, locations and
// categories must already exist; they are linked, never upserted.
func CreateDiscount(ctx context.Context, db *gorm.DB, d *domain.Discount) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CompanyID == "" {
		d.CompanyID = d.Company.ID
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	err := db.WithContext(ctx).
		Omit("Company", "Locations.*", "Categories.*").
		Create(d).Error
	return classify(err)
}

// GetDiscount fetches a discount by id with its company, locations and
// categories preloaded.
func GetDiscount(ctx context.Context, db *gorm.DB, id string) (*domain.Discount, error) {
	var d domain.Discount
	q := db.WithContext(ctx)
	for _, rel := range discountRelations {
		q = q.Preload(rel)
	}
	if err := q.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDiscountsPage returns a filtered page of discounts (fully preloaded)
// and the total number of matches.
func ListDiscountsPage(ctx context.Context, db *gorm.DB, f DiscountFilter, p Page) ([]domain.Discount, int64, error) {
	return listPage[domain.Discount](ctx, db, p, "created_at desc", f.scope, discountRelations...)
}

// AllDiscounts loads every discount with relations, oldest first.
func AllDiscounts(ctx context.Context, db *gorm.DB) ([]domain.Discount, error) {
	var out []domain.Discount
	q := db.WithContext(ctx)
	for _, rel := range discountRelations {
		q = q.Preload(rel)
	}
	err := q.Order("created_at asc").Find(&out).Error
	return out, err
}

// ListDiscountsByCompany returns the discounts owned by companyID with the
// company preloaded, as needed by the duplicate rule.
func ListDiscountsByCompany(ctx context.Context, db *gorm.DB, companyID string) ([]domain.Discount, error) {
	var out []domain.Discount
	err := db.WithContext(ctx).
		Preload("Company").
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// UpdateDiscount overwrites scalar fields and replaces the location and
// category sets inside one transaction. Locations and categories must be
// loaded records.
func UpdateDiscount(ctx context.Context, db *gorm.DB, d *domain.Discount) error {
	if d.CompanyID == "" {
		d.CompanyID = d.Company.ID
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Discount{}).
			Where("id = ?", d.ID).
			Updates(map[string]any{
				"type":               d.Type,
				"description":        d.Description,
				"discount_condition": d.Condition,
				"size":               d.Size,
				"kind":               d.Kind,
				"start_date":         d.StartDate,
				"end_date":           d.EndDate,
				"image":              d.Image,
				"company_id":         d.CompanyID,
				"updated_at":         time.Now().UTC(),
			})
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		target := &domain.Discount{ID: d.ID}
		if err := tx.Model(target).Association("Locations").Replace(d.Locations); err != nil {
			return classify(err)
		}
		if err := tx.Model(target).Association("Categories").Replace(d.Categories); err != nil {
			return classify(err)
		}
		return nil
	})
}

// DeleteDiscount removes a discount together with its join rows.
func DeleteDiscount(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Select("Locations", "Categories").
		Delete(&domain.Discount{ID: id})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AllDiscountsWithCompany loads every discount with only its company
// preloaded. It is the cheap form used to seed duplicate detection.
func AllDiscountsWithCompany(ctx context.Context, db *gorm.DB) ([]domain.Discount, error) {
	var out []domain.Discount
	err := db.WithContext(ctx).
		Preload("Company").
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
