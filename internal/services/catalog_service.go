// Package services – catalog services
//
// This file implements CategoryService, CompanyService and LocationService,
// the reference data that discounts point at. Each service validates the
// entity, delegates persistence to the repo package and maps storage errors
// to the sentinels in errors.go.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// CategoryService manages discount categories.
type CategoryService struct {
	DB *gorm.DB
}

// List returns a page of categories and the total count.
func (s *CategoryService) List(ctx context.Context, page, pageSize int, order string) ([]domain.Category, int64, error) {
	return repo.ListCategoriesPage(ctx, s.DB, pageWindow(page, pageSize, order))
}

// Get returns one category or ErrCategoryNotFound.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := repo.GetCategory(ctx, s.DB, id)
	return c, mapStoreErr(err, ErrCategoryNotFound)
}

// Create validates and inserts c. A taken title yields ErrConflict.
func (s *CategoryService) Create(ctx context.Context, c *domain.Category) error {
	c.Title = strings.TrimSpace(c.Title)
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	return mapStoreErr(repo.CreateCategory(ctx, s.DB, c), ErrCategoryNotFound)
}

// Update validates and overwrites the category identified by c.ID.
func (s *CategoryService) Update(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Title = strings.TrimSpace(c.Title)
	if err := c.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := repo.UpdateCategory(ctx, s.DB, c); err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return s.Get(ctx, c.ID)
}

// Delete removes a category. Join rows to discounts cascade.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return mapStoreErr(repo.DeleteCategory(ctx, s.DB, id), ErrCategoryNotFound)
}

// CompanyService manages partner companies.
type CompanyService struct {
	DB *gorm.DB
}

// List returns a page of companies and the total count.
func (s *CompanyService) List(ctx context.Context, page, pageSize int, order string) ([]domain.Company, int64, error) {
	return repo.ListCompaniesPage(ctx, s.DB, pageWindow(page, pageSize, order))
}

// Get returns one company or ErrCompanyNotFound.
func (s *CompanyService) Get(ctx context.Context, id string) (*domain.Company, error) {
	c, err := repo.GetCompany(ctx, s.DB, id)
	return c, mapStoreErr(err, ErrCompanyNotFound)
}

// Create validates and inserts c. Titles are unique.
func (s *CompanyService) Create(ctx context.Context, c *domain.Company) error {
	trimCompany(c)
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	return mapStoreErr(repo.CreateCompany(ctx, s.DB, c), ErrCompanyNotFound)
}

// Update validates and overwrites the company identified by c.ID.
func (s *CompanyService) Update(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	trimCompany(c)
	if err := c.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := repo.UpdateCompany(ctx, s.DB, c); err != nil {
		return nil, mapStoreErr(err, ErrCompanyNotFound)
	}
	return s.Get(ctx, c.ID)
}

// Delete removes a company. Companies that still own discounts yield ErrInUse.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return mapStoreErr(repo.DeleteCompany(ctx, s.DB, id), ErrCompanyNotFound)
}

func trimCompany(c *domain.Company) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Link = strings.TrimSpace(c.Link)
}

// LocationService manages the cities discounts apply in.
type LocationService struct {
	DB *gorm.DB
}

// List returns a page of locations and the total count.
func (s *LocationService) List(ctx context.Context, page, pageSize int, order string) ([]domain.Location, int64, error) {
	return repo.ListLocationsPage(ctx, s.DB, pageWindow(page, pageSize, order))
}

// Get returns one location or ErrLocationNotFound.
func (s *LocationService) Get(ctx context.Context, id string) (*domain.Location, error) {
	l, err := repo.GetLocation(ctx, s.DB, id)
	return l, mapStoreErr(err, ErrLocationNotFound)
}

// Create validates and inserts l. (country, city) is unique.
func (s *LocationService) Create(ctx context.Context, l *domain.Location) error {
	l.Country, l.City = strings.TrimSpace(l.Country), strings.TrimSpace(l.City)
	if err := l.Validate(); err != nil {
		return invalid(err)
	}
	return mapStoreErr(repo.CreateLocation(ctx, s.DB, l), ErrLocationNotFound)
}

// Update validates and overwrites the location identified by l.ID.
func (s *LocationService) Update(ctx context.Context, l *domain.Location) (*domain.Location, error) {
	l.Country, l.City = strings.TrimSpace(l.Country), strings.TrimSpace(l.City)
	if err := l.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := repo.UpdateLocation(ctx, s.DB, l); err != nil {
		return nil, mapStoreErr(err, ErrLocationNotFound)
	}
	return s.Get(ctx, l.ID)
}

// Delete removes a location. Users pointing at it are detached.
func (s *LocationService) Delete(ctx context.Context, id string) error {
	return mapStoreErr(repo.DeleteLocation(ctx, s.DB, id), ErrLocationNotFound)
}
