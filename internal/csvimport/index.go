package csvimport

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// Index holds the reference data of one run keyed the way rows refer to it.
// It is loaded once and then kept in step with what the run commits.
type Index struct {
	companies  map[string]*domain.Company
	locations  map[string]*domain.Location
	categories map[string]*domain.Category
	discounts  map[string][]*domain.Discount // by company id
}

// LoadIndex reads companies, locations, categories and discounts once.
// When two countries share a city name, the first location in
// (country, city) order wins.
func LoadIndex(ctx context.Context, db *gorm.DB) (*Index, error) {
	companies, err := repo.AllCompanies(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	locations, err := repo.AllLocations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	categories, err := repo.AllCategories(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	discounts, err := repo.AllDiscountsWithCompany(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load discounts: %w", err)
	}

	idx := &Index{
		companies:  make(map[string]*domain.Company, len(companies)),
		locations:  make(map[string]*domain.Location, len(locations)),
		categories: make(map[string]*domain.Category, len(categories)),
		discounts:  make(map[string][]*domain.Discount),
	}
	for i := range companies {
		idx.companies[companies[i].Title] = &companies[i]
	}
	for i := range locations {
		if _, seen := idx.locations[locations[i].City]; !seen {
			idx.locations[locations[i].City] = &locations[i]
		}
	}
	for i := range categories {
		idx.categories[categories[i].Title] = &categories[i]
	}
	for i := range discounts {
		idx.addDiscount(&discounts[i])
	}
	return idx, nil
}

func (x *Index) company(title string) *domain.Company { return x.companies[title] }

func (x *Index) location(city string) *domain.Location { return x.locations[city] }

func (x *Index) category(title string) *domain.Category { return x.categories[title] }

func (x *Index) addCompany(c *domain.Company) { x.companies[c.Title] = c }

func (x *Index) addDiscount(d *domain.Discount) {
	x.discounts[d.CompanyID] = append(x.discounts[d.CompanyID], d)
}

// duplicateOf returns a committed discount of the same company that d
// duplicates, or nil.
func (x *Index) duplicateOf(d *domain.Discount) *domain.Discount {
	for _, e := range x.discounts[d.CompanyID] {
		if e.DuplicateOf(d) {
			return e
		}
	}
	return nil
}
