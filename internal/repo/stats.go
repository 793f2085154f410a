// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// DiscountsStats returns aggregate metadata for the discounts matched by f:
// the number of rows and the greatest UpdatedAt among them.
//
// When nothing matches, the returned count is 0 and maxUpdatedAt is nil.
func DiscountsStats(ctx context.Context, db *gorm.DB, f DiscountFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := f.scope(db.WithContext(ctx).Model(&domain.Discount{}))

	// Count
	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
