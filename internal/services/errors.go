// Package services defines the business logic for the discount catalog:
// categories, companies, locations, discounts, users and the CSV bulk import.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// Lookup errors.
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrDiscountNotFound  = errors.New("discount not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRoleNotFound      = errors.New("role not found")
	ErrImportRunNotFound = errors.New("import run not found")
)

// Write errors.
var (
	// ErrValidation wraps a *domain.FieldError describing the first violated
	// constraint. Use errors.As to reach the field.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a unique attribute (title, email, city in
	// a country) is already taken.
	ErrConflict = errors.New("already exists")

	// ErrInUse is returned when deleting a record that others still reference.
	ErrInUse = errors.New("still referenced")

	// ErrDuplicateDiscount is returned when a discount with the same offer
	// texts, image and company already exists.
	ErrDuplicateDiscount = errors.New("discount already exists")

	// ErrWeakPassword is returned when a password is shorter than the minimum.
	ErrWeakPassword = errors.New("password too short")
)

// Auth errors.
var (
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Import errors.
var (
	// ErrImportInProgress is returned while another upload is being processed.
	ErrImportInProgress = errors.New("an import is already running")

	// ErrInvalidFileType is returned for uploads whose name does not end in .csv.
	ErrInvalidFileType = errors.New("file must have .csv extension")

	// ErrEmptyUpload is returned for zero-byte uploads.
	ErrEmptyUpload = errors.New("file is empty")

	// ErrFileTooLarge is returned for uploads above the configured size cap.
	ErrFileTooLarge = errors.New("file too large")
)

// invalid wraps a domain validation error with ErrValidation.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// mapStoreErr translates repo sentinels into service sentinels. notFound is
// the entity-specific error to use for a missing row.
func mapStoreErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return notFound
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repo.ErrReferenced):
		return fmt.Errorf("%w: %v", ErrInUse, err)
	default:
		return err
	}
}

// pageWindow converts a 1-based page and size into a repo.Page, applying the
// same defaults the handlers advertise.
func pageWindow(page, pageSize int, order string) repo.Page {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return repo.Page{Offset: (page - 1) * pageSize, Limit: pageSize, Order: order}
}
