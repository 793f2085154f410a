package csvimport

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// rowRejected aborts the row transaction and carries the outcome detail out
// of it.
type rowRejected struct {
	status Status
	detail string
}

func (e *rowRejected) Error() string { return e.detail }

func reject(detail string) error { return &rowRejected{status: StatusFailed, detail: detail} }

// Reconciler turns parsed rows into persisted discounts. Each row runs in its
// own transaction; a rejected row rolls back everything it wrote, including a
// company it created. The index only learns about committed rows.
type Reconciler struct {
	DB    *gorm.DB
	Index *Index
	Now   func() time.Time
}

// Reconcile processes one row and always returns an outcome.
func (r *Reconciler) Reconcile(ctx context.Context, row Row) Outcome {
	id := row.ID()
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	var (
		newCompany *domain.Company
		created    *domain.Discount
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := r.Index.company(row.Get(ColCompanyTitle))
		if company == nil {
			c := companyFromRow(row)
			if err := c.Validate(); err != nil {
				return reject(err.Error())
			}
			if err := repo.CreateCompany(ctx, tx, c); err != nil {
				return reject(repo.DriverMessage(err))
			}
			company, newCompany = c, c
		}

		locations := make([]domain.Location, 0, 1)
		for _, city := range row.List(ColLocation) {
			l := r.Index.location(city)
			if l == nil {
				return reject("City " + city + " was not found in database")
			}
			locations = append(locations, *l)
		}

		categories := make([]domain.Category, 0, 1)
		for _, title := range row.List(ColCategory) {
			c := r.Index.category(title)
			if c == nil {
				return reject("Category " + title + " was not found in database")
			}
			categories = append(categories, *c)
		}

		kind, err := domain.ParseDiscountKind(row.Get(ColDiscountType))
		if err != nil {
			return reject("Discount type " + row.Get(ColDiscountType) + " is not supported")
		}

		end := row.EndDate(now)
		d := &domain.Discount{
			Type:        row.Get(ColType),
			Description: row.Get(ColDiscountDescription),
			Condition:   row.Get(ColDiscountCondition),
			Size:        row.Get(ColSize),
			Kind:        kind,
			StartDate:   row.StartDate(now),
			EndDate:     &end,
			Image:       row.Get(ColImage),
			CompanyID:   company.ID,
			Company:     *company,
			Locations:   locations,
			Categories:  categories,
		}

		if r.Index.duplicateOf(d) != nil {
			return &rowRejected{status: StatusSkipped, detail: skipDetail}
		}
		if err := d.Validate(); err != nil {
			return reject(err.Error())
		}
		if err := repo.CreateDiscount(ctx, tx, d); err != nil {
			return reject(repo.DriverMessage(err))
		}
		created = d
		return nil
	})

	var rj *rowRejected
	switch {
	case errors.As(err, &rj):
		if rj.status == StatusSkipped {
			return skipped(id)
		}
		return failed(id, rj.detail)
	case err != nil:
		// Commit or begin failed.
		return failed(id, err.Error())
	}

	if newCompany != nil {
		r.Index.addCompany(newCompany)
	}
	r.Index.addDiscount(created)
	return ok(id)
}

func companyFromRow(row Row) *domain.Company {
	return &domain.Company{
		Title:       row.Get(ColCompanyTitle),
		Description: row.Get(ColCompanyDescription),
		Address:     row.Get(ColCompanyAddress),
		Phone:       row.Get(ColCompanyPhone),
		Link:        row.Get(ColLinks),
	}
}
