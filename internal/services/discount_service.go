// Package services – DiscountService
//
// This file implements the DiscountService, which manages discounts created
// through the API. References (company, locations, categories) are resolved
// by id before validation, and the same duplicate rule the CSV importer uses
// is enforced: two discounts of one company with equal offer texts and image
// cannot coexist.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// DiscountInput carries the writable fields of a discount. Reference fields
// are ids of existing records.
type DiscountInput struct {
	Type        string
	Description string
	Condition   string
	Size        string
	Kind        string
	StartDate   time.Time
	EndDate     *time.Time
	Image       string
	CompanyID   string
	LocationIDs []string
	CategoryIDs []string
}

// DiscountService provides CRUD over discounts.
type DiscountService struct {
	DB *gorm.DB
}

// List returns a filtered page of discounts with relations loaded.
func (s *DiscountService) List(ctx context.Context, f repo.DiscountFilter, page, pageSize int, order string) ([]domain.Discount, int64, error) {
	return repo.ListDiscountsPage(ctx, s.DB, f, pageWindow(page, pageSize, order))
}

// Stats returns the number of discounts matching f and their latest update
// time. Handlers derive a weak ETag from it.
func (s *DiscountService) Stats(ctx context.Context, f repo.DiscountFilter) (int64, *time.Time, error) {
	return repo.DiscountsStats(ctx, s.DB, f)
}

// Get returns one discount with relations or ErrDiscountNotFound.
func (s *DiscountService) Get(ctx context.Context, id string) (*domain.Discount, error) {
	d, err := repo.GetDiscount(ctx, s.DB, id)
	return d, mapStoreErr(err, ErrDiscountNotFound)
}

// Create resolves references, validates, checks for duplicates and inserts.
func (s *DiscountService) Create(ctx context.Context, in DiscountInput) (*domain.Discount, error) {
	d, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, d); err != nil {
		return nil, err
	}
	if err := repo.CreateDiscount(ctx, s.DB, d); err != nil {
		return nil, mapStoreErr(err, ErrDiscountNotFound)
	}
	return s.Get(ctx, d.ID)
}

// Update replaces every writable field of discount id, including its
// location and category sets.
func (s *DiscountService) Update(ctx context.Context, id string, in DiscountInput) (*domain.Discount, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	d, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	d.ID = id
	if err := s.checkDuplicate(ctx, d); err != nil {
		return nil, err
	}
	if err := repo.UpdateDiscount(ctx, s.DB, d); err != nil {
		return nil, mapStoreErr(err, ErrDiscountNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes a discount and its join rows.
func (s *DiscountService) Delete(ctx context.Context, id string) error {
	return mapStoreErr(repo.DeleteDiscount(ctx, s.DB, id), ErrDiscountNotFound)
}

// build turns in into a validated Discount with loaded references.
func (s *DiscountService) build(ctx context.Context, in DiscountInput) (*domain.Discount, error) {
	kind, _ := domain.ParseDiscountKind(in.Kind)
	d := &domain.Discount{
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Condition:   strings.TrimSpace(in.Condition),
		Size:        strings.TrimSpace(in.Size),
		Kind:        kind,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Image:       strings.TrimSpace(in.Image),
	}

	if id := strings.TrimSpace(in.CompanyID); id != "" {
		co, err := repo.GetCompany(ctx, s.DB, id)
		if err != nil {
			return nil, mapStoreErr(err, ErrCompanyNotFound)
		}
		d.Company, d.CompanyID = *co, co.ID
	}
	for _, id := range uniqueIDs(in.LocationIDs) {
		l, err := repo.GetLocation(ctx, s.DB, id)
		if err != nil {
			return nil, mapStoreErr(err, ErrLocationNotFound)
		}
		d.Locations = append(d.Locations, *l)
	}
	for _, id := range uniqueIDs(in.CategoryIDs) {
		c, err := repo.GetCategory(ctx, s.DB, id)
		if err != nil {
			return nil, mapStoreErr(err, ErrCategoryNotFound)
		}
		d.Categories = append(d.Categories, *c)
	}

	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return nil, invalid(&domain.FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	if err := d.Validate(); err != nil {
		return nil, invalid(err)
	}
	return d, nil
}

// checkDuplicate fails with ErrDuplicateDiscount when another discount of
// the same company matches d.
func (s *DiscountService) checkDuplicate(ctx context.Context, d *domain.Discount) error {
	existing, err := repo.ListDiscountsByCompany(ctx, s.DB, d.CompanyID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	for i := range existing {
		if existing[i].ID != d.ID && d.DuplicateOf(&existing[i]) {
			return ErrDuplicateDiscount
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
