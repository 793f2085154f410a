// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for ImportRun, the
// stored report of a CSV upload that also backs safe-retry semantics for the
// upload endpoint.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// GetImportRunByKey returns a non-expired run recorded for (userID, key) or
// ErrNotFound.
func GetImportRunByKey(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (*domain.ImportRun, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.ImportRun
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetImportRun fetches a run by id regardless of expiry.
func GetImportRun(ctx context.Context, db *gorm.DB, id string) (*domain.ImportRun, error) {
	var rec domain.ImportRun
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateImportRun inserts rec with ExpiresAt = now + ttl and returns
// ErrDuplicate when (user_id, key) already exists.
func CreateImportRun(ctx context.Context, db *gorm.DB, rec *domain.ImportRun, ttl time.Duration) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(ttl)
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteExpiredImportRuns purges runs whose ExpiresAt is not after now and
// reports how many were removed.
func DeleteExpiredImportRuns(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.ImportRun{})
	return res.RowsAffected, res.Error
}
